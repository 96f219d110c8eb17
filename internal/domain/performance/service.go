package performance

import "context"

type PerformanceService interface {
	Create(ctx context.Context, req ReviewRequest) (Review, error)
	Update(ctx context.Context, req ReviewRequest) (Review, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Review, error)
	List(ctx context.Context, filter ReviewFilter) ([]Review, error)

	// Read models
	ListByEmployee(employeeID string) []Review
	LatestForEmployee(employeeID string) (Review, bool)
	AverageRating() float64
	GoalCompletionRate() float64
}
