package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store keeps replayable wishlist responses in the idempotency_keys table.
// Rows older than ttl are treated as absent and can be reclaimed by Save.
type Store struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewStore(pool *pgxpool.Pool, ttl time.Duration) *Store {
	return &Store{pool: pool, ttl: ttl}
}

// ttlSeconds is bound to make_interval; zero disables expiry.
func (s *Store) ttlSeconds() float64 {
	return s.ttl.Seconds()
}

func (s *Store) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	const query = `
		SELECT status_code, body, resource_id
		FROM idempotency_keys
		WHERE key = $1
		  AND ($2::float8 = 0 OR created_at > NOW() - make_interval(secs => $2::float8))
	`

	var resp ports.StoredResponse
	if err := s.pool.QueryRow(ctx, query, key, s.ttlSeconds()).Scan(&resp.StatusCode, &resp.Body, &resp.ResourceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup idempotency key %q: %w", key, err)
	}
	return &resp, nil
}

// Save records response under key. A live row wins over later saves.
func (s *Store) Save(ctx context.Context, key string, response ports.StoredResponse) error {
	const query = `
		INSERT INTO idempotency_keys (key, status_code, body, resource_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET status_code = EXCLUDED.status_code,
		    body = EXCLUDED.body,
		    resource_id = EXCLUDED.resource_id,
		    created_at = NOW()
		WHERE $5::float8 > 0 AND idempotency_keys.created_at <= NOW() - make_interval(secs => $5::float8)
	`

	if _, err := s.pool.Exec(ctx, query, key, response.StatusCode, response.Body, response.ResourceID, s.ttlSeconds()); err != nil {
		return fmt.Errorf("store idempotency key %q: %w", key, err)
	}
	return nil
}

// Purge deletes expired keys and reports how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE created_at <= NOW() - make_interval(secs => $1::float8)`,
		s.ttlSeconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
