package datastore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/kvstore"
	"github.com/juju/clock"
	"github.com/juju/retry"
)

const (
	writeAttempts   = 4
	writeRetryDelay = 10 * time.Millisecond
)

// ChangeType tells subscribers how a table changed.
type ChangeType string

const (
	ChangeInsert  ChangeType = "INSERT"
	ChangeUpdate  ChangeType = "UPDATE"
	ChangeDelete  ChangeType = "DELETE"
	ChangeReplace ChangeType = "REPLACE"
	ChangeReload  ChangeType = "RELOAD"
)

// ChangeEvent is broadcast after every committed change of a table.
type ChangeEvent struct {
	Table    string     `json:"table"`
	Type     ChangeType `json:"type"`
	RecordID string     `json:"recordId,omitempty"`
}

// syncer is the type-independent surface of a Table used by the provider.
type syncer interface {
	name() string
	storeKey() string
	load(ctx context.Context, seed bool) error
	reload(ctx context.Context) (bool, error)
}

// Table is one persisted collection. Reads are served from memory. Writes go
// through the provider's single writer lock, are persisted with the version
// last read, and only then become visible.
type Table[T collection.Identifiable] struct {
	p      *Provider
	table  string
	key    string
	seeder func(now time.Time) []T

	mu      sync.RWMutex
	items   []T
	version int64
}

func newTable[T collection.Identifiable](p *Provider, table, key string, seeder func(now time.Time) []T) *Table[T] {
	t := &Table[T]{p: p, table: table, key: key, seeder: seeder, items: []T{}}
	p.tables = append(p.tables, t)
	return t
}

func (t *Table[T]) name() string     { return t.table }
func (t *Table[T]) storeKey() string { return t.key }

// List returns a copy of every record in insertion order.
func (t *Table[T]) List() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return collection.Clone(t.items)
}

func (t *Table[T]) Get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return collection.Find(t.items, id)
}

func (t *Table[T]) Add(ctx context.Context, item T) error {
	return t.mutate(ctx, ChangeInsert, item.RecordID(), func(items []T) ([]T, error) {
		return collection.Append(items, item), nil
	})
}

// Update replaces the record with the same id. Unknown ids return
// collection.ErrNotFound and leave the table untouched.
func (t *Table[T]) Update(ctx context.Context, item T) error {
	return t.mutate(ctx, ChangeUpdate, item.RecordID(), func(items []T) ([]T, error) {
		next, ok := collection.Replace(items, item)
		if !ok {
			return nil, collection.ErrNotFound
		}
		return next, nil
	})
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	return t.mutate(ctx, ChangeDelete, id, func(items []T) ([]T, error) {
		next, ok := collection.Remove(items, id)
		if !ok {
			return nil, collection.ErrNotFound
		}
		return next, nil
	})
}

func (t *Table[T]) Apply(ctx context.Context, fn func(items []T) ([]T, error)) error {
	return t.mutate(ctx, ChangeReplace, "", fn)
}

func (t *Table[T]) snapshot() ([]T, int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return collection.Clone(t.items), t.version
}

func (t *Table[T]) set(items []T, version int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if items == nil {
		items = []T{}
	}
	t.items = items
	t.version = version
}

// mutate runs fn against the current records and persists the result. When
// another process has written the key in the meantime the table is reloaded
// and fn is applied again to the fresh records.
func (t *Table[T]) mutate(ctx context.Context, change ChangeType, recordID string, fn func([]T) ([]T, error)) error {
	t.p.writeMu.Lock()
	defer t.p.writeMu.Unlock()

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			current, version := t.snapshot()
			next, err := fn(current)
			if err != nil {
				return err
			}
			newVersion, err := kvstore.PutJSON(ctx, t.p.store, t.key, next, version)
			if err != nil {
				if errors.Is(err, kvstore.ErrVersionConflict) {
					if _, rerr := t.reloadLocked(ctx); rerr != nil {
						return rerr
					}
				}
				return err
			}
			t.set(next, newVersion)
			return nil
		},
		IsFatalError: func(err error) bool {
			return !errors.Is(err, kvstore.ErrVersionConflict)
		},
		NotifyFunc: func(lastError error, attempt int) {
			slog.Debug("Retrying conflicting write", "table", t.table, "attempt", attempt)
		},
		Attempts: writeAttempts,
		Delay:    writeRetryDelay,
		Clock:    clock.WallClock,
		Stop:     ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
		err = retry.LastError(err)
	}
	if err != nil {
		return err
	}

	t.p.publish(ChangeEvent{Table: t.table, Type: change, RecordID: recordID})
	return nil
}

// load reads the table, writing the seed data first when the key is absent.
func (t *Table[T]) load(ctx context.Context, seed bool) error {
	var items []T
	version, found, err := kvstore.GetJSON(ctx, t.p.store, t.key, &items)
	if err != nil {
		return err
	}
	if found {
		t.set(items, version)
		return nil
	}

	items = []T{}
	if seed && t.seeder != nil {
		items = t.seeder(t.p.clock.Now())
	}
	version, err = kvstore.PutJSON(ctx, t.p.store, t.key, items, 0)
	if errors.Is(err, kvstore.ErrVersionConflict) {
		// Another process seeded first; adopt its data.
		_, err = t.reloadLocked(ctx)
		return err
	}
	if err != nil {
		return err
	}
	t.set(items, version)
	return nil
}

func (t *Table[T]) reload(ctx context.Context) (bool, error) {
	t.p.writeMu.Lock()
	defer t.p.writeMu.Unlock()
	return t.reloadLocked(ctx)
}

// reloadLocked adopts the stored value when it is newer than memory.
func (t *Table[T]) reloadLocked(ctx context.Context) (bool, error) {
	var items []T
	version, found, err := kvstore.GetJSON(ctx, t.p.store, t.key, &items)
	if err != nil {
		return false, fmt.Errorf("reload %s: %w", t.table, err)
	}
	_, current := t.snapshot()
	if !found {
		if current == 0 {
			return false, nil
		}
		t.set([]T{}, 0)
		return true, nil
	}
	if version <= current {
		return false, nil
	}
	t.set(items, version)
	return true, nil
}
