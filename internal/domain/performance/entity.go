package performance

import "time"

type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not-started"
	GoalInProgress GoalStatus = "in-progress"
	GoalCompleted  GoalStatus = "completed"
)

func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalNotStarted, GoalInProgress, GoalCompleted:
		return true
	}
	return false
}

type Goal struct {
	ID                   string     `json:"id"`
	Description          string     `json:"description"`
	CompletionPercentage int        `json:"completionPercentage"`
	Status               GoalStatus `json:"status"`
}

type Review struct {
	ID                string    `json:"id"`
	EmployeeID        string    `json:"employeeId"`
	ReviewPeriodStart string    `json:"reviewPeriodStart"`
	ReviewPeriodEnd   string    `json:"reviewPeriodEnd"`
	Rating            int       `json:"rating"`
	Goals             []Goal    `json:"goals"`
	Feedback          string    `json:"feedback"`
	ReviewedBy        string    `json:"reviewedBy"`
	ReviewDate        string    `json:"reviewDate"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (r Review) RecordID() string { return r.ID }

const (
	MinRating = 1
	MaxRating = 5
)
