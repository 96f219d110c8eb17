// Package kvstore persists JSON documents under string keys. Each key carries
// a monotonically increasing version so concurrent writers can detect that
// they are about to overwrite a newer value.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("key not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrClosed          = errors.New("store closed")
)

// Document is the stored value of one key.
type Document struct {
	Key     string
	Data    []byte
	Version int64
}

// Change reports that a key was written or deleted, possibly by another process.
type Change struct {
	Key     string
	Deleted bool
}

type Store interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) (Document, error)
	// Put writes data when the stored version equals expectedVersion (0 for
	// "key must not exist yet") and returns the new version.
	Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, key string) error
	// Watch streams changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan Change, error)
	Close() error
}

// GetJSON decodes the value stored under key into dst. found is false, with
// a nil error, when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, dst any) (version int64, found bool, err error) {
	doc, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(doc.Data, dst); err != nil {
		return 0, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return doc.Version, true, nil
}

// PutJSON encodes v and writes it under key.
func PutJSON(ctx context.Context, s Store, key string, v any, expectedVersion int64) (int64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", key, err)
	}
	version, err := s.Put(ctx, key, data, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}
	return version, nil
}
