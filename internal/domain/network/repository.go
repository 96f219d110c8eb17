package network

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"

type WhitelistRepository interface {
	collection.Repository[WhitelistEntry]
}
