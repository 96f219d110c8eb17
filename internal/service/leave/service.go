package leave

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

const dateLayout = "2006-01-02"

type LeaveServiceImpl struct {
	leaves    leave.LeaveRepository
	employees employee.EmployeeRepository
	email     email.EmailService
	clock     clock.Clock
}

func NewLeaveService(
	leaves leave.LeaveRepository,
	employees employee.EmployeeRepository,
	emailService email.EmailService,
	clk clock.Clock,
) leave.LeaveService {
	return &LeaveServiceImpl{
		leaves:    leaves,
		employees: employees,
		email:     emailService,
		clock:     clk,
	}
}

// Submit files a pending request. Employees file for themselves; managers
// may file on behalf of anyone.
func (s *LeaveServiceImpl) Submit(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveRequest, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	employeeID := req.EmployeeID
	if !actor.Can(user.PermissionLeaveApprove) {
		if employeeID != "" && employeeID != actor.EmployeeID {
			return leave.LeaveRequest{}, leave.ErrLeaveForbidden
		}
		employeeID = actor.EmployeeID
	} else if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if _, ok := s.employees.Get(employeeID); !ok || employeeID == "" {
		return leave.LeaveRequest{}, employee.ErrEmployeeNotFound
	}

	now := s.clock.Now()
	request := leave.LeaveRequest{
		ID:          uuid.Must(uuid.NewV7()).String(),
		EmployeeID:  employeeID,
		Type:        req.Type,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Reason:      req.Reason,
		Status:      leave.StatusPending,
		AppliedDate: now.Format(dateLayout),
		CreatedAt:   now,
	}
	if err := s.leaves.Add(ctx, request); err != nil {
		return leave.LeaveRequest{}, err
	}

	slog.Info("Leave request submitted", "leave_id", request.ID, "employee_id", employeeID, "days", request.Days())
	return request, nil
}

func (s *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return s.decide(ctx, id, leave.StatusApproved)
}

func (s *LeaveServiceImpl) Reject(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return s.decide(ctx, id, leave.StatusRejected)
}

// decide moves a pending request to a terminal status. Approved and rejected
// requests never change again.
func (s *LeaveServiceImpl) decide(ctx context.Context, id string, status leave.Status) (leave.LeaveRequest, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if !actor.Can(user.PermissionLeaveApprove) {
		return leave.LeaveRequest{}, user.ErrInsufficientPermissions
	}

	var decided leave.LeaveRequest
	err = s.leaves.Apply(ctx, func(items []leave.LeaveRequest) ([]leave.LeaveRequest, error) {
		current, ok := collection.Find(items, id)
		if !ok {
			return nil, leave.ErrLeaveRequestNotFound
		}
		if !current.IsPending() {
			return nil, leave.ErrLeaveRequestAlreadyProcessed
		}
		current.Status = status
		if status == leave.StatusApproved {
			current.ApprovedBy = actor.Name
			current.ApprovedDate = s.clock.Now().Format(dateLayout)
		}
		decided = current
		next, _ := collection.Replace(items, current)
		return next, nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	slog.Info("Leave request decided", "leave_id", id, "status", status, "by", actor.UserID)
	s.notify(decided)
	return decided, nil
}

func (s *LeaveServiceImpl) notify(request leave.LeaveRequest) {
	emp, ok := s.employees.Get(request.EmployeeID)
	if !ok || emp.Email == "" {
		return
	}
	err := s.email.SendLeaveDecision(emp.Email, email.LeaveDecision{
		EmployeeName: emp.Name,
		LeaveType:    string(request.Type),
		StartDate:    request.StartDate,
		EndDate:      request.EndDate,
		Status:       string(request.Status),
		DecidedBy:    request.ApprovedBy,
	})
	if err != nil {
		slog.Warn("Failed to send leave decision email", "leave_id", request.ID, "error", err)
	}
}

func (s *LeaveServiceImpl) Get(ctx context.Context, id string) (leave.LeaveRequest, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	request, ok := s.leaves.Get(id)
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if !actor.Can(user.PermissionLeaveApprove) && request.EmployeeID != actor.EmployeeID {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return request, nil
}

// List returns requests matching filter. Employees only see their own.
func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Can(user.PermissionLeaveApprove) {
		if actor.EmployeeID == "" {
			return []leave.LeaveRequest{}, nil
		}
		filter.EmployeeID = actor.EmployeeID
	}

	return collection.Filter(s.leaves.List(), func(l leave.LeaveRequest) bool {
		if filter.EmployeeID != "" && l.EmployeeID != filter.EmployeeID {
			return false
		}
		if filter.Status != "" && l.Status != filter.Status {
			return false
		}
		return filter.Type == "" || l.Type == filter.Type
	}), nil
}

func (s *LeaveServiceImpl) ListByEmployee(employeeID string) []leave.LeaveRequest {
	return collection.Filter(s.leaves.List(), func(l leave.LeaveRequest) bool {
		return l.EmployeeID == employeeID
	})
}

func (s *LeaveServiceImpl) byStatus(status leave.Status) []leave.LeaveRequest {
	return collection.Filter(s.leaves.List(), func(l leave.LeaveRequest) bool {
		return l.Status == status
	})
}

func (s *LeaveServiceImpl) ListPending() []leave.LeaveRequest {
	return s.byStatus(leave.StatusPending)
}

func (s *LeaveServiceImpl) ListApproved() []leave.LeaveRequest {
	return s.byStatus(leave.StatusApproved)
}

func (s *LeaveServiceImpl) ListRejected() []leave.LeaveRequest {
	return s.byStatus(leave.StatusRejected)
}

func (s *LeaveServiceImpl) StatusCounts() leave.StatusCounts {
	var counts leave.StatusCounts
	for _, l := range s.leaves.List() {
		switch l.Status {
		case leave.StatusPending:
			counts.Pending++
		case leave.StatusApproved:
			counts.Approved++
		case leave.StatusRejected:
			counts.Rejected++
		}
	}
	return counts
}
