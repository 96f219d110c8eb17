package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	notifyChannel = "hrms_documents"

	notifyPut    = "put:"
	notifyDelete = "delete:"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS hrms_documents (
	key        TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	version    BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps documents in a single table. Writers are checked
// against the stored version and every committed write is announced with
// NOTIFY so other server processes can reload.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(ctx context.Context, db *database.DB) (*PostgresStore, error) {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to ensure document schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func getDocument(ctx context.Context, q database.Querier, key string) (Document, error) {
	doc := Document{Key: key}
	err := q.QueryRow(ctx, `SELECT data, version FROM hrms_documents WHERE key = $1`, key).
		Scan(&doc.Data, &doc.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Document, error) {
	return getDocument(ctx, s.db, key)
}

func (s *PostgresStore) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	next := expectedVersion + 1
	err := database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		var (
			tag pgconn.CommandTag
			err error
		)
		if expectedVersion == 0 {
			tag, err = tx.Exec(ctx, `
				INSERT INTO hrms_documents (key, data, version, updated_at)
				VALUES ($1, $2, 1, NOW())
				ON CONFLICT (key) DO NOTHING`, key, string(data))
		} else {
			tag, err = tx.Exec(ctx, `
				UPDATE hrms_documents
				SET data = $2, version = version + 1, updated_at = NOW()
				WHERE key = $1 AND version = $3`, key, string(data), expectedVersion)
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
		return database.Notify(ctx, tx, notifyChannel, notifyPut+key)
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	return database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM hrms_documents WHERE key = $1`, key)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		return database.Notify(ctx, tx, notifyChannel, notifyDelete+key)
	})
}

// Watch translates notifications on the document channel into changes.
func (s *PostgresStore) Watch(ctx context.Context) (<-chan Change, error) {
	payloads, err := s.db.Listen(ctx, notifyChannel)
	if err != nil {
		return nil, err
	}

	out := make(chan Change, 64)
	go func() {
		defer close(out)
		for payload := range payloads {
			change, ok := parseNotification(payload)
			if !ok {
				continue
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func parseNotification(payload string) (Change, bool) {
	switch {
	case strings.HasPrefix(payload, notifyPut):
		return Change{Key: strings.TrimPrefix(payload, notifyPut)}, true
	case strings.HasPrefix(payload, notifyDelete):
		return Change{Key: strings.TrimPrefix(payload, notifyDelete), Deleted: true}, true
	}
	return Change{}, false
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
