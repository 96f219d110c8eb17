package performance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/performance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type PerformanceServiceImpl struct {
	reviews   performance.ReviewRepository
	employees employee.EmployeeRepository
	clock     clock.Clock
}

func NewPerformanceService(
	reviews performance.ReviewRepository,
	employees employee.EmployeeRepository,
	clk clock.Clock,
) performance.PerformanceService {
	return &PerformanceServiceImpl{
		reviews:   reviews,
		employees: employees,
		clock:     clk,
	}
}

func (s *PerformanceServiceImpl) requireManage(ctx context.Context) (user.Actor, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	if !actor.Can(user.PermissionPerformanceManage) {
		return user.Actor{}, user.ErrInsufficientPermissions
	}
	return actor, nil
}

// buildReview fills the request fields shared by create and update. Goals with
// a blank description are dropped.
func (s *PerformanceServiceImpl) buildReview(actor user.Actor, req performance.ReviewRequest) (performance.Review, error) {
	if _, ok := s.employees.Get(req.EmployeeID); !ok {
		return performance.Review{}, employee.ErrEmployeeNotFound
	}

	goals := make([]performance.Goal, 0, len(req.Goals))
	for _, g := range req.Goals {
		desc := strings.TrimSpace(g.Description)
		if desc == "" {
			continue
		}
		goals = append(goals, performance.Goal{
			ID:                   uuid.Must(uuid.NewV7()).String(),
			Description:          desc,
			CompletionPercentage: g.CompletionPercentage,
			Status:               g.Status,
		})
	}

	return performance.Review{
		EmployeeID:        req.EmployeeID,
		ReviewPeriodStart: req.ReviewPeriodStart,
		ReviewPeriodEnd:   req.ReviewPeriodEnd,
		Rating:            req.Rating,
		Goals:             goals,
		Feedback:          req.Feedback,
		ReviewedBy:        actor.Name,
		ReviewDate:        s.clock.Now().Format(dateLayout),
	}, nil
}

func (s *PerformanceServiceImpl) Create(ctx context.Context, req performance.ReviewRequest) (performance.Review, error) {
	actor, err := s.requireManage(ctx)
	if err != nil {
		return performance.Review{}, err
	}
	review, err := s.buildReview(actor, req)
	if err != nil {
		return performance.Review{}, err
	}
	review.ID = uuid.Must(uuid.NewV7()).String()
	review.CreatedAt = s.clock.Now()

	if err := s.reviews.Add(ctx, review); err != nil {
		return performance.Review{}, fmt.Errorf("failed to create review: %w", err)
	}

	slog.Info("Performance review created", "review_id", review.ID, "employee_id", review.EmployeeID, "rating", review.Rating)
	return review, nil
}

// Update replaces a review. The original creation time is kept.
func (s *PerformanceServiceImpl) Update(ctx context.Context, req performance.ReviewRequest) (performance.Review, error) {
	actor, err := s.requireManage(ctx)
	if err != nil {
		return performance.Review{}, err
	}
	existing, ok := s.reviews.Get(req.ID)
	if !ok {
		return performance.Review{}, performance.ErrReviewNotFound
	}
	review, err := s.buildReview(actor, req)
	if err != nil {
		return performance.Review{}, err
	}
	review.ID = existing.ID
	review.CreatedAt = existing.CreatedAt

	if err := s.reviews.Update(ctx, review); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return performance.Review{}, performance.ErrReviewNotFound
		}
		return performance.Review{}, fmt.Errorf("failed to update review: %w", err)
	}
	return review, nil
}

func (s *PerformanceServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.requireManage(ctx); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return performance.ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (s *PerformanceServiceImpl) Get(ctx context.Context, id string) (performance.Review, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return performance.Review{}, err
	}
	review, ok := s.reviews.Get(id)
	if !ok {
		return performance.Review{}, performance.ErrReviewNotFound
	}
	if !actor.Can(user.PermissionPerformanceManage) && review.EmployeeID != actor.EmployeeID {
		return performance.Review{}, performance.ErrReviewNotFound
	}
	return review, nil
}

// List returns reviews, newest review date first. Employees see their own.
func (s *PerformanceServiceImpl) List(ctx context.Context, filter performance.ReviewFilter) ([]performance.Review, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Can(user.PermissionPerformanceManage) {
		if actor.EmployeeID == "" {
			return []performance.Review{}, nil
		}
		filter.EmployeeID = actor.EmployeeID
	}
	if filter.EmployeeID != "" {
		return s.ListByEmployee(filter.EmployeeID), nil
	}
	return newestFirst(s.reviews.List()), nil
}

func (s *PerformanceServiceImpl) ListByEmployee(employeeID string) []performance.Review {
	return newestFirst(collection.Filter(s.reviews.List(), func(r performance.Review) bool {
		return r.EmployeeID == employeeID
	}))
}

func (s *PerformanceServiceImpl) LatestForEmployee(employeeID string) (performance.Review, bool) {
	reviews := s.ListByEmployee(employeeID)
	if len(reviews) == 0 {
		return performance.Review{}, false
	}
	return reviews[0], true
}

// AverageRating is the mean rating to one decimal place, zero without reviews.
func (s *PerformanceServiceImpl) AverageRating() float64 {
	reviews := s.reviews.List()
	if len(reviews) == 0 {
		return 0
	}
	total := decimal.Zero
	for _, r := range reviews {
		total = total.Add(decimal.NewFromInt(int64(r.Rating)))
	}
	return total.Div(decimal.NewFromInt(int64(len(reviews)))).Round(1).InexactFloat64()
}

// GoalCompletionRate is the percentage of goals marked completed across all
// reviews, rounded to a whole number.
func (s *PerformanceServiceImpl) GoalCompletionRate() float64 {
	var total, completed int64
	for _, r := range s.reviews.List() {
		for _, g := range r.Goals {
			total++
			if g.Status == performance.GoalCompleted {
				completed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(completed * 100).Div(decimal.NewFromInt(total)).Round(0).InexactFloat64()
}

func newestFirst(reviews []performance.Review) []performance.Review {
	sort.SliceStable(reviews, func(i, j int) bool {
		if reviews[i].ReviewDate != reviews[j].ReviewDate {
			return reviews[i].ReviewDate > reviews[j].ReviewDate
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews
}
