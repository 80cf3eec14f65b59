package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
)

// AdminTokenRepo stores admin refresh tokens keyed by raw token value.
// At most one live token exists per admin: Replace wipes earlier tokens
// before inserting.
type AdminTokenRepo interface {
	Replace(ctx context.Context, adminID uuid.UUID, token string, expiresAt time.Time) error
	Create(ctx context.Context, adminID uuid.UUID, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (model.AdminRefreshToken, error)
	// DeleteByToken removes the record and reports how many rows matched.
	DeleteByToken(ctx context.Context, token string) (int64, error)
}

type adminTokenRepo struct {
	db *sql.DB
}

// NewAdminTokenRepo creates a Postgres-backed AdminTokenRepo.
func NewAdminTokenRepo(db *sql.DB) AdminTokenRepo {
	return &adminTokenRepo{db: db}
}

func (r *adminTokenRepo) Replace(ctx context.Context, adminID uuid.UUID, token string, expiresAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(2, hashtext($1))`, adminID.String()); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM admin_refresh_tokens WHERE admin_id = $1`, adminID); err != nil {
		return fmt.Errorf("delete old tokens: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO admin_refresh_tokens (token, admin_id, expires_at) VALUES ($1, $2, $3)
	`, token, adminID, expiresAt); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *adminTokenRepo) Create(ctx context.Context, adminID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_refresh_tokens (token, admin_id, expires_at) VALUES ($1, $2, $3)
	`, token, adminID, expiresAt)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *adminTokenRepo) GetByToken(ctx context.Context, token string) (model.AdminRefreshToken, error) {
	var t model.AdminRefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT token, admin_id, expires_at, created_at
		FROM admin_refresh_tokens WHERE token = $1
	`, token).Scan(&t.Token, &t.AdminID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AdminRefreshToken{}, ErrNotFound
		}
		return model.AdminRefreshToken{}, fmt.Errorf("query token: %w", err)
	}
	return t, nil
}

func (r *adminTokenRepo) DeleteByToken(ctx context.Context, token string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM admin_refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return 0, fmt.Errorf("delete token: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
