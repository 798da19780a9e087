package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ersonp/famgraph/internal/infrastructure/cache"
)

var _ cache.Cache = (*Repository)(nil)

// Get returns a cached response that has not expired.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, bool) {
	query := `
		SELECT value FROM responses
		WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)
	`
	var value []byte
	err := r.db.QueryRowContext(ctx, query, key, timeNow().UnixNano()).Scan(&value)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Set stores a response. A zero ttl uses the repository default.
func (r *Repository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.defaultTTL
	}
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: timeNow().Add(ttl).UnixNano(), Valid: true}
	}

	query := `
		INSERT INTO responses (key, value, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`
	_, err := r.db.ExecContext(ctx, query, key, value, expiresAt, timeNow())
	if err != nil {
		return fmt.Errorf("saving response: %w", err)
	}
	return nil
}

// Delete removes a cached response.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM responses WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting response: %w", err)
	}
	return nil
}

// Clear removes every cached response.
func (r *Repository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM responses`); err != nil {
		return fmt.Errorf("clearing responses: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired responses and returns how many were removed.
func (r *Repository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM responses WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		timeNow().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging responses: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// CountResponses returns the number of stored responses, expired or not.
func (r *Repository) CountResponses(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting responses: %w", err)
	}
	return count, nil
}
