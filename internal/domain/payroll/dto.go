package payroll

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// GenerateRequest selects the period; zero values mean the current month.
type GenerateRequest struct {
	Month string `json:"month,omitempty"`
	Year  int    `json:"year,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month != "" {
		if _, ok := ParseMonth(r.Month); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be a full English month name, e.g. January",
			})
		}
	}
	if r.Year != 0 && (r.Year < 2000 || r.Year > 2100) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status Status `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: draft, processed, paid",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PayrollFilter struct {
	EmployeeID string
	Month      string
	Year       int
	Status     Status
}

type GenerateResponse struct {
	Month   string          `json:"month"`
	Year    int             `json:"year"`
	Count   int             `json:"count"`
	Records []PayrollRecord `json:"records"`
}

// ParseMonth accepts full English month names.
func ParseMonth(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}
