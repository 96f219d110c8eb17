package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/juju/clock"
)

type PayrollServiceImpl struct {
	payroll   payroll.PayrollRepository
	employees employee.EmployeeRepository
	clock     clock.Clock
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employees employee.EmployeeRepository,
	clk clock.Clock,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		payroll:   payrollRepo,
		employees: employees,
		clock:     clk,
	}
}

func (s *PayrollServiceImpl) currentPeriod() (string, int) {
	now := s.clock.Now()
	return now.Month().String(), now.Year()
}

// Generate creates one processed record per active employee for the period.
// The period check and the batch insert happen in a single transform, so a
// period is generated at most once even under concurrent calls.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GenerateRequest) (payroll.GenerateResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return payroll.GenerateResponse{}, err
	}
	if !actor.Can(user.PermissionPayrollGenerate) {
		return payroll.GenerateResponse{}, payroll.ErrPayrollGenerateForbidden
	}

	month, year := s.currentPeriod()
	if req.Month != "" {
		if _, ok := payroll.ParseMonth(req.Month); !ok {
			return payroll.GenerateResponse{}, payroll.ErrInvalidPeriod
		}
		month = req.Month
	}
	if req.Year != 0 {
		year = req.Year
	}

	active := collection.Filter(s.employees.List(), employee.Employee.IsActive)
	now := s.clock.Now()

	var created []payroll.PayrollRecord
	err = s.payroll.Apply(ctx, func(items []payroll.PayrollRecord) ([]payroll.PayrollRecord, error) {
		inPeriod := func(p payroll.PayrollRecord) bool { return p.InPeriod(month, year) }
		if collection.Any(items, inPeriod) {
			return nil, payroll.ErrPayrollAlreadyGenerated
		}
		if len(active) == 0 {
			return nil, payroll.ErrNoActiveEmployees
		}

		created = make([]payroll.PayrollRecord, 0, len(active))
		next := collection.Clone(items)
		for _, emp := range active {
			allowances, deductions, net := payroll.Compute(emp.Salary)
			record := payroll.PayrollRecord{
				ID:          payroll.RecordID(emp.ID, month, year),
				EmployeeID:  emp.ID,
				Month:       month,
				Year:        year,
				BasicSalary: emp.Salary,
				Allowances:  allowances,
				Deductions:  deductions,
				NetSalary:   net,
				Status:      payroll.StatusProcessed,
				CreatedAt:   now,
			}
			created = append(created, record)
			next = append(next, record)
		}
		return next, nil
	})
	if err != nil {
		if !errors.Is(err, payroll.ErrPayrollAlreadyGenerated) && !errors.Is(err, payroll.ErrNoActiveEmployees) {
			return payroll.GenerateResponse{}, fmt.Errorf("failed to generate payroll: %w", err)
		}
		return payroll.GenerateResponse{}, err
	}

	slog.Info("Payroll generated", "month", month, "year", year, "count", len(created), "by", actor.UserID)
	return payroll.GenerateResponse{
		Month:   month,
		Year:    year,
		Count:   len(created),
		Records: created,
	}, nil
}

// UpdateStatus moves a record forward along draft, processed, paid.
func (s *PayrollServiceImpl) UpdateStatus(ctx context.Context, req payroll.UpdateStatusRequest) (payroll.PayrollRecord, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if !actor.Can(user.PermissionPayrollGenerate) {
		return payroll.PayrollRecord{}, user.ErrInsufficientPermissions
	}

	var updated payroll.PayrollRecord
	err = s.payroll.Apply(ctx, func(items []payroll.PayrollRecord) ([]payroll.PayrollRecord, error) {
		current, ok := collection.Find(items, req.ID)
		if !ok {
			return nil, payroll.ErrPayrollNotFound
		}
		if !current.Status.CanTransitionTo(req.Status) {
			return nil, payroll.ErrInvalidStatusTransition
		}
		current.Status = req.Status
		updated = current
		next, _ := collection.Replace(items, current)
		return next, nil
	})
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	slog.Info("Payroll status updated", "payroll_id", req.ID, "status", req.Status)
	return updated, nil
}

func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	record, ok := s.payroll.Get(id)
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollNotFound
	}
	if !actor.Can(user.PermissionPayrollView) && record.EmployeeID != actor.EmployeeID {
		return payroll.PayrollRecord{}, payroll.ErrPayrollNotFound
	}
	return record, nil
}

// List returns records matching filter. Employees only see their own payslips.
func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Can(user.PermissionPayrollView) {
		if actor.EmployeeID == "" {
			return []payroll.PayrollRecord{}, nil
		}
		filter.EmployeeID = actor.EmployeeID
	}

	return collection.Filter(s.payroll.List(), func(p payroll.PayrollRecord) bool {
		if filter.EmployeeID != "" && p.EmployeeID != filter.EmployeeID {
			return false
		}
		if filter.Month != "" && p.Month != filter.Month {
			return false
		}
		if filter.Year != 0 && p.Year != filter.Year {
			return false
		}
		return filter.Status == "" || p.Status == filter.Status
	}), nil
}

func (s *PayrollServiceImpl) ListByEmployee(employeeID string) []payroll.PayrollRecord {
	return collection.Filter(s.payroll.List(), func(p payroll.PayrollRecord) bool {
		return p.EmployeeID == employeeID
	})
}

func (s *PayrollServiceImpl) ListByStatus(status payroll.Status) []payroll.PayrollRecord {
	return collection.Filter(s.payroll.List(), func(p payroll.PayrollRecord) bool {
		return p.Status == status
	})
}

func (s *PayrollServiceImpl) ListCurrentMonth() []payroll.PayrollRecord {
	month, year := s.currentPeriod()
	return s.ListByPeriod(month, year)
}

func (s *PayrollServiceImpl) ListByPeriod(month string, year int) []payroll.PayrollRecord {
	return collection.Filter(s.payroll.List(), func(p payroll.PayrollRecord) bool {
		return p.InPeriod(month, year)
	})
}
