package leave

import (
	"context"
)

type LeaveService interface {
	Submit(ctx context.Context, req CreateLeaveRequest) (LeaveRequest, error)
	Approve(ctx context.Context, id string) (LeaveRequest, error)
	Reject(ctx context.Context, id string) (LeaveRequest, error)
	Get(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, error)

	// Read models
	ListByEmployee(employeeID string) []LeaveRequest
	ListPending() []LeaveRequest
	ListApproved() []LeaveRequest
	ListRejected() []LeaveRequest
	StatusCounts() StatusCounts
}
