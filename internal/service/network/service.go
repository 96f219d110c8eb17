package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/network"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/netpolicy"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

type NetworkServiceImpl struct {
	entries network.WhitelistRepository
	static  []netip.Prefix
	clock   clock.Clock
}

// NewNetworkService combines the configured networks with the whitelist
// collection. Configured networks must already be validated.
func NewNetworkService(entries network.WhitelistRepository, configured []string, clk clock.Clock) (network.NetworkService, error) {
	static, err := netpolicy.ParsePrefixes(configured)
	if err != nil {
		return nil, err
	}
	return &NetworkServiceImpl{entries: entries, static: static, clock: clk}, nil
}

func (s *NetworkServiceImpl) requireManage(ctx context.Context) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if !actor.Can(user.PermissionNetworkManage) {
		return user.ErrInsufficientPermissions
	}
	return nil
}

func (s *NetworkServiceImpl) Create(ctx context.Context, req network.CreateEntryRequest) (network.WhitelistEntry, error) {
	if err := s.requireManage(ctx); err != nil {
		return network.WhitelistEntry{}, err
	}
	prefix, err := netpolicy.ParsePrefix(req.IPAddress)
	if err != nil {
		return network.WhitelistEntry{}, fmt.Errorf("invalid ip_address: %w", err)
	}

	entry := network.WhitelistEntry{
		ID:          uuid.Must(uuid.NewV7()).String(),
		IPAddress:   req.IPAddress,
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
		CreatedAt:   s.clock.Now(),
	}
	err = s.entries.Apply(ctx, func(items []network.WhitelistEntry) ([]network.WhitelistEntry, error) {
		exists := collection.Any(items, func(e network.WhitelistEntry) bool {
			p, err := netpolicy.ParsePrefix(e.IPAddress)
			return err == nil && p == prefix
		})
		if exists {
			return nil, network.ErrEntryExists
		}
		return collection.Append(items, entry), nil
	})
	if err != nil {
		return network.WhitelistEntry{}, err
	}

	slog.Info("Whitelist entry added", "entry_id", entry.ID, "ip", entry.IPAddress)
	return entry, nil
}

func (s *NetworkServiceImpl) Update(ctx context.Context, req network.UpdateEntryRequest) (network.WhitelistEntry, error) {
	if err := s.requireManage(ctx); err != nil {
		return network.WhitelistEntry{}, err
	}
	entry, ok := s.entries.Get(req.ID)
	if !ok {
		return network.WhitelistEntry{}, network.ErrEntryNotFound
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return network.WhitelistEntry{}, network.ErrEntryNotFound
		}
		return network.WhitelistEntry{}, fmt.Errorf("failed to update whitelist entry: %w", err)
	}
	return entry, nil
}

func (s *NetworkServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.requireManage(ctx); err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return network.ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete whitelist entry: %w", err)
	}
	return nil
}

func (s *NetworkServiceImpl) List(ctx context.Context) ([]network.WhitelistEntry, error) {
	if err := s.requireManage(ctx); err != nil {
		return nil, err
	}
	return s.entries.List(), nil
}

func (s *NetworkServiceImpl) IsAllowed(ip string) bool {
	if netpolicy.Contains(s.static, ip) {
		return true
	}
	var active []netip.Prefix
	for _, e := range s.entries.List() {
		if !e.IsActive {
			continue
		}
		p, err := netpolicy.ParsePrefix(e.IPAddress)
		if err != nil {
			slog.Warn("Skipping malformed whitelist entry", "entry_id", e.ID, "ip", e.IPAddress)
			continue
		}
		active = append(active, p)
	}
	return netpolicy.Contains(active, ip)
}
