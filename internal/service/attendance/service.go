package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/juju/clock"
)

type AttendanceServiceImpl struct {
	attendance    attendance.AttendanceRepository
	employees     employee.EmployeeRepository
	clock         clock.Clock
	standardHours float64
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employees employee.EmployeeRepository,
	clk clock.Clock,
	standardHours float64,
) attendance.AttendanceService {
	if standardHours <= 0 {
		standardHours = attendance.StandardWorkHours
	}
	return &AttendanceServiceImpl{
		attendance:    attendanceRepo,
		employees:     employees,
		clock:         clk,
		standardHours: standardHours,
	}
}

func (s *AttendanceServiceImpl) today() string {
	return s.clock.Now().Format(attendance.DateLayout)
}

// authorize checks that the caller may act for employeeID and that the
// employee is active.
func (s *AttendanceServiceImpl) authorize(ctx context.Context, employeeID string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if !actor.Can(user.PermissionAttendanceManage) && actor.EmployeeID != employeeID {
		return attendance.ErrUnauthorized
	}
	emp, ok := s.employees.Get(employeeID)
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	if !emp.IsActive() {
		return employee.ErrEmployeeNotActive
	}
	return nil
}

// CheckIn opens today's record. The existence check runs inside the
// collection transform, so a double submit records exactly one check-in.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	if err := s.authorize(ctx, employeeID); err != nil {
		return attendance.Attendance{}, err
	}

	now := s.clock.Now()
	date := now.Format(attendance.DateLayout)
	var record attendance.Attendance
	err := s.attendance.Apply(ctx, func(items []attendance.Attendance) ([]attendance.Attendance, error) {
		existing, found := collection.Find(items, attendance.IDFor(employeeID, date))
		if found && existing.CheckIn != nil {
			return nil, attendance.ErrAlreadyCheckedIn
		}
		record = attendance.Attendance{
			ID:         attendance.IDFor(employeeID, date),
			EmployeeID: employeeID,
			Date:       date,
			CheckIn:    &now,
			Status:     attendance.StatusPresent,
		}
		if found {
			next, _ := collection.Replace(items, record)
			return next, nil
		}
		return collection.Append(items, record), nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}

	slog.Info("Checked in", "employee_id", employeeID, "date", date)
	return record, nil
}

// CheckOut closes today's open record and computes worked hours.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	if err := s.authorize(ctx, employeeID); err != nil {
		return attendance.Attendance{}, err
	}

	now := s.clock.Now()
	date := now.Format(attendance.DateLayout)
	var record attendance.Attendance
	err := s.attendance.Apply(ctx, func(items []attendance.Attendance) ([]attendance.Attendance, error) {
		existing, found := collection.Find(items, attendance.IDFor(employeeID, date))
		if !found || !existing.IsOpen() {
			return nil, attendance.ErrNoActiveCheckIn
		}
		existing.CheckOut = &now
		existing.TotalHours, existing.Overtime = attendance.WorkedHours(*existing.CheckIn, now, s.standardHours)
		record = existing
		next, _ := collection.Replace(items, existing)
		return next, nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}

	slog.Info("Checked out", "employee_id", employeeID, "date", date, "total_hours", record.TotalHours)
	return record, nil
}

// Perform implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Perform(ctx context.Context, req attendance.ActionRequest) (attendance.Attendance, error) {
	switch req.Action {
	case attendance.ActionCheckIn:
		return s.CheckIn(ctx, req.EmployeeID)
	case attendance.ActionCheckOut:
		return s.CheckOut(ctx, req.EmployeeID)
	}
	return attendance.Attendance{}, attendance.ErrInvalidAction
}

// Create records attendance manually for any employee and date.
func (s *AttendanceServiceImpl) Create(ctx context.Context, req attendance.CreateAttendanceRequest) (attendance.Attendance, error) {
	if err := s.requireManager(ctx); err != nil {
		return attendance.Attendance{}, err
	}
	if _, ok := s.employees.Get(req.EmployeeID); !ok {
		return attendance.Attendance{}, employee.ErrEmployeeNotFound
	}

	record := attendance.Attendance{
		ID:         attendance.IDFor(req.EmployeeID, req.Date),
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Status:     req.Status,
	}
	in, err := s.at(record.Date, req.CheckIn)
	if err != nil {
		return attendance.Attendance{}, err
	}
	out, err := s.at(record.Date, req.CheckOut)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if err := s.setTimes(&record, in, out); err != nil {
		return attendance.Attendance{}, err
	}

	err = s.attendance.Apply(ctx, func(items []attendance.Attendance) ([]attendance.Attendance, error) {
		if _, exists := collection.Find(items, record.ID); exists {
			return nil, attendance.ErrAttendanceExists
		}
		return collection.Append(items, record), nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return record, nil
}

// Update edits a record's times or status. Worked hours are recomputed only
// when a time is supplied; stored timestamps are otherwise kept as they are.
func (s *AttendanceServiceImpl) Update(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.Attendance, error) {
	if err := s.requireManager(ctx); err != nil {
		return attendance.Attendance{}, err
	}
	record, ok := s.attendance.Get(req.ID)
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	if req.CheckIn != nil || req.CheckOut != nil {
		in, out := record.CheckIn, record.CheckOut
		var err error
		if req.CheckIn != nil {
			if in, err = s.at(record.Date, *req.CheckIn); err != nil {
				return attendance.Attendance{}, err
			}
		}
		if req.CheckOut != nil {
			if out, err = s.at(record.Date, *req.CheckOut); err != nil {
				return attendance.Attendance{}, err
			}
		}
		if err := s.setTimes(&record, in, out); err != nil {
			return attendance.Attendance{}, err
		}
	}
	if req.Status != nil {
		record.Status = *req.Status
	}

	if err := s.attendance.Update(ctx, record); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}
	return record, nil
}

// List returns records matching filter. Employees only see their own.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Can(user.PermissionAttendanceManage) {
		if actor.EmployeeID == "" {
			return []attendance.Attendance{}, nil
		}
		filter.EmployeeID = actor.EmployeeID
	}

	return collection.Filter(s.attendance.List(), func(a attendance.Attendance) bool {
		if filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID {
			return false
		}
		if filter.Date != "" && a.Date != filter.Date {
			return false
		}
		if filter.StartDate != "" && a.Date < filter.StartDate {
			return false
		}
		if filter.EndDate != "" && a.Date > filter.EndDate {
			return false
		}
		return true
	}), nil
}

func (s *AttendanceServiceImpl) ListByEmployee(employeeID string) []attendance.Attendance {
	return collection.Filter(s.attendance.List(), func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID
	})
}

func (s *AttendanceServiceImpl) ListByDate(date string) []attendance.Attendance {
	return collection.Filter(s.attendance.List(), func(a attendance.Attendance) bool {
		return a.Date == date
	})
}

func (s *AttendanceServiceImpl) ListToday() []attendance.Attendance {
	return s.ListByDate(s.today())
}

// TodaySummary counts today's records by status.
func (s *AttendanceServiceImpl) TodaySummary() attendance.DailySummary {
	return Summarize(s.today(), s.ListToday())
}

// Summarize counts records by status.
func Summarize(date string, records []attendance.Attendance) attendance.DailySummary {
	summary := attendance.DailySummary{Date: date, Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			summary.Present++
		case attendance.StatusAbsent:
			summary.Absent++
		case attendance.StatusLate:
			summary.Late++
		case attendance.StatusHalfDay:
			summary.HalfDay++
		}
	}
	return summary
}

func (s *AttendanceServiceImpl) requireManager(ctx context.Context) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if !actor.Can(user.PermissionAttendanceManage) {
		return user.ErrInsufficientPermissions
	}
	return nil
}

// at parses an HH:MM clock time on the record's date. Empty means unset.
func (s *AttendanceServiceImpl) at(date, hhmm string) (*time.Time, error) {
	if hhmm == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(attendance.DateLayout+" 15:04", date+" "+hhmm, s.clock.Now().Location())
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return &t, nil
}

// setTimes stores in and out and derives worked hours from them.
func (s *AttendanceServiceImpl) setTimes(record *attendance.Attendance, in, out *time.Time) error {
	if out != nil && (in == nil || out.Before(*in)) {
		return attendance.ErrCheckOutBeforeIn
	}
	record.CheckIn, record.CheckOut = in, out
	record.TotalHours, record.Overtime = 0, 0
	if in != nil && out != nil {
		record.TotalHours, record.Overtime = attendance.WorkedHours(*in, *out, s.standardHours)
	}
	return nil
}
