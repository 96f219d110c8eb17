package attendance

import (
	"regexp"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

const (
	ActionCheckIn  = "checkin"
	ActionCheckOut = "checkout"
)

type ActionRequest struct {
	Action     string `json:"action"`
	EmployeeID string `json:"employeeId"`
}

func (r *ActionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.OneOf(r.Action, ActionCheckIn, ActionCheckOut) {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of: checkin, checkout",
		})
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeId",
			Message: "employeeId is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// CreateAttendanceRequest records attendance manually. Times are HH:MM in
// server local time on the given date.
type CreateAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	CheckIn    string `json:"check_in,omitempty"`
	CheckOut   string `json:"check_out,omitempty"`
	Status     Status `json:"status"`
}

func (r *CreateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	errs = append(errs, validateClock("check_in", r.CheckIn)...)
	errs = append(errs, validateClock("check_out", r.CheckOut)...)
	if r.CheckOut != "" && r.CheckIn == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in",
			Message: "check_in is required when check_out is set",
		})
	}
	if r.CheckIn != "" && r.CheckOut != "" && r.CheckOut < r.CheckIn {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out",
			Message: "check_out must not be before check_in",
		})
	}
	if !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, absent, late, half-day",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateAttendanceRequest struct {
	ID       string  `json:"-"`
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
	Status   *Status `json:"status,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.CheckIn != nil {
		errs = append(errs, validateClock("check_in", *r.CheckIn)...)
	}
	if r.CheckOut != nil {
		errs = append(errs, validateClock("check_out", *r.CheckOut)...)
	}
	if r.Status != nil && !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, absent, late, half-day",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceFilter struct {
	EmployeeID string
	Date       string
	StartDate  string
	EndDate    string
}

// DailySummary counts one day's records by status.
type DailySummary struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
	HalfDay int    `json:"half_day"`
}

func validateClock(field, value string) validator.ValidationErrors {
	if value == "" || clockRegex.MatchString(value) {
		return nil
	}
	return validator.ValidationErrors{{
		Field:   field,
		Message: field + " must be in HH:MM format",
	}}
}
