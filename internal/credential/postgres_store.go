package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientStorageSchema = `CREATE TABLE IF NOT EXISTS client_storage (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// dbtx is the part of *pgxpool.Pool the store uses.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads the phone number from the client_storage table.
type PostgresStore struct {
	db  dbtx
	key string
}

// NewPostgresStore builds a Postgres-backed store reading Key(namespace).
func NewPostgresStore(db *pgxpool.Pool, namespace string) *PostgresStore {
	return &PostgresStore{db: db, key: Key(namespace)}
}

// EnsureSchema creates client_storage if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, clientStorageSchema); err != nil {
		return fmt.Errorf("create client_storage: %w", err)
	}
	return nil
}

// PhoneNumber fetches the stored number.
func (s *PostgresStore) PhoneNumber(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM client_storage WHERE key = $1`, s.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.key, err)
	}
	return normalize(value)
}

// SavePhoneNumber upserts the stored number.
func (s *PostgresStore) SavePhoneNumber(ctx context.Context, phone string) error {
	phone, err := validateWrite(phone)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO client_storage (key, value, updated_at) VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, s.key, phone)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}
