package leave

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"

type LeaveRepository interface {
	collection.Repository[LeaveRequest]
}
