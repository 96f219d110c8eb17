package performance

import (
	"fmt"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type GoalRequest struct {
	Description          string     `json:"description"`
	CompletionPercentage int        `json:"completion_percentage"`
	Status               GoalStatus `json:"status"`
}

type ReviewRequest struct {
	ID                string        `json:"-"`
	EmployeeID        string        `json:"employee_id"`
	ReviewPeriodStart string        `json:"review_period_start"`
	ReviewPeriodEnd   string        `json:"review_period_end"`
	Rating            int           `json:"rating"`
	Goals             []GoalRequest `json:"goals"`
	Feedback          string        `json:"feedback"`
}

// Validate skips goals with a blank description; they are dropped on save.
func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	validator.DateRange(&errs, "review_period_start", r.ReviewPeriodStart, "review_period_end", r.ReviewPeriodEnd)
	if !validator.InRange(r.Rating, MinRating, MaxRating) {
		errs.Add("rating", "rating must be between 1 and 5")
	}
	for i, g := range r.Goals {
		if validator.IsEmpty(g.Description) {
			continue
		}
		if !validator.InRange(g.CompletionPercentage, 0, 100) {
			errs.Add(fmt.Sprintf("goals[%d].completion_percentage", i), "completion_percentage must be between 0 and 100")
		}
		if !g.Status.IsValid() {
			errs.Add(fmt.Sprintf("goals[%d].status", i), "status must be one of: not-started, in-progress, completed")
		}
	}

	return errs.Err()
}

type ReviewFilter struct {
	EmployeeID string
}
