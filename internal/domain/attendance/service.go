package attendance

import "context"

type AttendanceService interface {
	CheckIn(ctx context.Context, employeeID string) (Attendance, error)
	CheckOut(ctx context.Context, employeeID string) (Attendance, error)
	// Perform dispatches a check-in or check-out action.
	Perform(ctx context.Context, req ActionRequest) (Attendance, error)

	Create(ctx context.Context, req CreateAttendanceRequest) (Attendance, error)
	Update(ctx context.Context, req UpdateAttendanceRequest) (Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)

	// Read models
	ListByEmployee(employeeID string) []Attendance
	ListByDate(date string) []Attendance
	ListToday() []Attendance
	TodaySummary() DailySummary
}
