package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/juju/utils/v4"
)

var ErrInvalidKey = errors.New("invalid key")

var keyRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

const (
	fileSuffix     = ".json"
	lockFileName   = ".lock"
	lockRetryDelay = 20 * time.Millisecond
)

type envelope struct {
	Version int64           `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// FileStore keeps one JSON envelope per key inside a directory. Several
// processes may share the directory: writes are serialised with a file lock
// and become visible atomically, and Watch reports writes made by any of them.
type FileStore struct {
	dir  string
	mu   sync.Mutex
	lock *flock.Flock
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return &FileStore{
		dir:  abs,
		lock: flock.New(filepath.Join(abs, lockFileName)),
	}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !keyRegex.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+fileSuffix), nil
}

func (s *FileStore) read(path string) (envelope, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return envelope{}, ErrNotFound
		}
		return envelope{}, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("corrupt document %s: %w", filepath.Base(path), err)
	}
	return env, nil
}

func (s *FileStore) Get(ctx context.Context, key string) (Document, error) {
	path, err := s.path(key)
	if err != nil {
		return Document{}, err
	}
	env, err := s.read(path)
	if err != nil {
		return Document{}, err
	}
	return Document{Key: key, Data: env.Data, Version: env.Version}, nil
}

func (s *FileStore) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if !json.Valid(data) {
		return 0, fmt.Errorf("document %s is not valid JSON", key)
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var current int64
	env, err := s.read(path)
	switch {
	case err == nil:
		current = env.Version
	case errors.Is(err, ErrNotFound):
	default:
		return 0, err
	}
	if current != expectedVersion {
		return 0, ErrVersionConflict
	}

	next := envelope{Version: current + 1, Data: data}
	raw, err := json.Marshal(next)
	if err != nil {
		return 0, err
	}
	if err := utils.AtomicWriteFile(path, raw, 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", key, err)
	}
	return next.Version, nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// acquire takes the in-process mutex and then the cross-process file lock.
func (s *FileStore) acquire(ctx context.Context) (func(), error) {
	s.mu.Lock()
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !ok {
		s.mu.Unlock()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("failed to lock data directory: %w", err)
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			slog.Error("Failed to release data directory lock", "dir", s.dir, "error", err)
		}
		s.mu.Unlock()
	}, nil
}

func (s *FileStore) Watch(ctx context.Context) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	out := make(chan Change, 64)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := changeFromEvent(ev)
				if !ok {
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("Data directory watcher error", "dir", s.dir, "error", err)
			}
		}
	}()
	return out, nil
}

func changeFromEvent(ev fsnotify.Event) (Change, bool) {
	name := filepath.Base(ev.Name)
	if !strings.HasSuffix(name, fileSuffix) {
		return Change{}, false
	}
	key := strings.TrimSuffix(name, fileSuffix)
	if !keyRegex.MatchString(key) {
		return Change{}, false
	}
	switch {
	case ev.Has(fsnotify.Remove):
		return Change{Key: key, Deleted: true}, true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write), ev.Has(fsnotify.Rename):
		return Change{Key: key}, true
	}
	return Change{}, false
}

func (s *FileStore) Close() error {
	return nil
}
