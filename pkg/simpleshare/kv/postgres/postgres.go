package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// Store is a Postgres implementation of the simpleshare.KVStore interface,
// backed by a single flat table. Expired rows read as absent; the store
// relies on the service's lazy cleanup and the admin sweep to remove them.
type Store struct {
	pool *pgxpool.Pool
}

// Schema creates the backing table. Run once at deploy time.
const Schema = `
CREATE TABLE IF NOT EXISTS share_kv (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    expires_at TIMESTAMPTZ
);
`

// NewWithPool creates a store using an existing connection pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// New connects to the database and verifies connectivity.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the backing table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// Get returns the value for key, or simpleshare.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM share_kv
		 WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simpleshare.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

// Put stores value under key with no expiry, overwriting any existing row.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO share_kv (key, value, expires_at) VALUES ($1, $2, NULL)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = NULL`,
		key, value,
	)
	return err
}

// PutWithTTL stores value under key with a row-level deadline.
func (s *Store) PutWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Put(ctx, key, value)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO share_kv (key, value, expires_at) VALUES ($1, $2, now() + $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, ttl,
	)
	return err
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM share_kv WHERE key = $1`, key)
	return err
}

// List returns all live keys with the given prefix in lexicographic order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key FROM share_kv
		 WHERE key LIKE $1 || '%' AND (expires_at IS NULL OR expires_at > now())
		 ORDER BY key`,
		escapeLike(prefix),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// escapeLike escapes LIKE metacharacters so prefixes match literally.
func escapeLike(prefix string) string {
	out := make([]byte, 0, len(prefix))
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, prefix[i])
	}
	return string(out)
}
