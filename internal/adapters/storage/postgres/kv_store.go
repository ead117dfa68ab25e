package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"care-monitor/internal/adapters/storage/broadcast"
	"care-monitor/internal/ports/store"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmptyKey = errors.New("key required")
)

// Códigos SQLSTATE que tratamos como "medio lleno".
const (
	sqlStateDiskFull           = "53100"
	sqlStateOutOfMemory        = "53200"
	sqlStateProgramLimitExceed = "54000"
)

// KVStore implementa store.Store sobre la tabla kv_store.
// Subscribe difunde dentro del proceso; otros procesos deben releer.
type KVStore struct {
	db  *sql.DB
	hub *broadcast.Hub
}

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db, hub: broadcast.NewHub()}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, ErrEmptyKey
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, string(value))
	if err != nil {
		if isStorageFull(err) {
			return store.ErrStorageFull
		}
		return err
	}

	s.hub.Publish(key, value)
	return nil
}

func (s *KVStore) Subscribe(key string, h store.Handler) func() {
	return s.hub.Subscribe(key, h)
}

func isStorageFull(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case sqlStateDiskFull, sqlStateOutOfMemory, sqlStateProgramLimitExceed:
		return true
	}
	return false
}
