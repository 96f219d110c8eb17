package network

import "context"

type NetworkService interface {
	Create(ctx context.Context, req CreateEntryRequest) (WhitelistEntry, error)
	Update(ctx context.Context, req UpdateEntryRequest) (WhitelistEntry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]WhitelistEntry, error)
	// IsAllowed reports whether ip matches a configured network or an active entry.
	IsAllowed(ip string) bool
}
