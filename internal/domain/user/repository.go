package user

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"

type UserRepository interface {
	collection.Repository[User]
}

type SessionRepository interface {
	collection.Repository[Session]
}
