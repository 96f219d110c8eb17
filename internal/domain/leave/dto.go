package leave

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id"`
	Type       Type   `json:"type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Type.IsValid() {
		errs.Add("type", "type must be one of: sick, vacation, personal, emergency")
	}
	validator.DateRange(&errs, "start_date", r.StartDate, "end_date", r.EndDate)
	switch {
	case validator.IsEmpty(r.Reason):
		errs.Add("reason", "reason is required")
	case len(r.Reason) > 1000:
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

type LeaveFilter struct {
	EmployeeID string
	Status     Status
	Type       Type
}

type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
