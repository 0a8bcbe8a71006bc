package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/klokku/pocketbudget/internal/utils"
	log "github.com/sirupsen/logrus"
)

type SQLiteStore struct {
	db    *sql.DB
	clock utils.Clock
}

func NewSQLiteStore(db *sql.DB, clock utils.Clock) *SQLiteStore {
	return &SQLiteStore{db: db, clock: clock}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := "SELECT value FROM kv_store WHERE key = ?"

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		log.Errorf("failed to read key %q: %v", key, err)
		return nil, err
	}
	return []byte(value), nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, key, string(value), s.clock.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		log.Errorf("failed to write key %q: %v", key, err)
		return err
	}
	return nil
}
