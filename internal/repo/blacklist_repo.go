package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BlacklistRepo stores revoked admin access tokens until their natural
// expiry. Contains is consulted by the admin guard on every request; lookup
// failures must be surfaced so the guard can fail closed.
type BlacklistRepo interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
	// PurgeExpired removes entries whose token would no longer verify anyway.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type blacklistRepo struct {
	db *sql.DB
}

// NewBlacklistRepo creates a Postgres-backed BlacklistRepo.
func NewBlacklistRepo(db *sql.DB) BlacklistRepo {
	return &blacklistRepo{db: db}
}

func (r *blacklistRepo) Add(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blacklisted_tokens (token, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING
	`, token, expiresAt)
	if err != nil {
		return fmt.Errorf("insert blacklisted token: %w", err)
	}
	return nil
}

func (r *blacklistRepo) Contains(ctx context.Context, token string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM blacklisted_tokens WHERE token = $1`, token).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query blacklist: %w", err)
	}
	return true, nil
}

func (r *blacklistRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blacklisted_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge blacklist: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
