package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	PurgeSessionsInterval = time.Hour
	ResyncStoreInterval   = 5 * time.Minute
)

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int, error)
}

// StoreResyncer reloads collections whose stored version moved and returns
// how many were reloaded.
type StoreResyncer interface {
	Resync(ctx context.Context) (int, error)
}

type MaintenanceJobs struct {
	sessions SessionPurger
	store    StoreResyncer
}

func NewMaintenanceJobs(sessions SessionPurger, store StoreResyncer) *MaintenanceJobs {
	return &MaintenanceJobs{sessions: sessions, store: store}
}

func (j *MaintenanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_expired_sessions", PurgeSessionsInterval, j.PurgeExpiredSessions)
	scheduler.AddJob("resync_store", ResyncStoreInterval, j.ResyncStore)
}

func (j *MaintenanceJobs) PurgeExpiredSessions(ctx context.Context) error {
	removed, err := j.sessions.PurgeExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}
	if removed > 0 {
		slog.Info("Cron: Purged expired sessions", "count", removed)
	}
	return nil
}

func (j *MaintenanceJobs) ResyncStore(ctx context.Context) error {
	reloaded, err := j.store.Resync(ctx)
	if err != nil {
		return fmt.Errorf("failed to resync store: %w", err)
	}
	if reloaded > 0 {
		slog.Info("Cron: Reloaded stale collections", "count", reloaded)
	}
	return nil
}
