package performance

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"

type ReviewRepository interface {
	collection.Repository[Review]
}
