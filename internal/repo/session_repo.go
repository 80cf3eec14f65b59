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

// SessionRepo defines user session persistence. The single-active-session
// invariant is enforced here: Replace is the only way to create a session,
// and Rotate is conditional on the previous digest so concurrent rotations
// have exactly one winner.
type SessionRepo interface {
	// Replace deletes all sessions for the user and inserts a new one in a
	// single transaction, serialized per user.
	Replace(ctx context.Context, userID uuid.UUID, tokenHash string, deviceID *string, expiresAt time.Time) (model.Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Session, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (model.Session, error)
	// Rotate swaps the stored digest only if oldHash still matches; a lost
	// race returns ErrNotFound.
	Rotate(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error
	// RevokeAllForUser marks every non-revoked session revoked. Idempotent.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

type sessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a Postgres-backed SessionRepo.
func NewSessionRepo(db *sql.DB) SessionRepo {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Replace(ctx context.Context, userID uuid.UUID, tokenHash string, deviceID *string, expiresAt time.Time) (model.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Session{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Advisory lock serializes concurrent logins per user so two of them
	// cannot both observe "no session" and insert one each.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(1, hashtext($1))`, userID.String()); err != nil {
		return model.Session{}, fmt.Errorf("advisory lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return model.Session{}, fmt.Errorf("delete old sessions: %w", err)
	}

	var s model.Session
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sessions (user_id, refresh_token_hash, device_id, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, refresh_token_hash, device_id, revoked, expires_at, created_at
	`, userID, tokenHash, deviceID, expiresAt).Scan(
		&s.ID, &s.UserID, &s.RefreshTokenHash, &s.DeviceID, &s.Revoked, &s.ExpiresAt, &s.CreatedAt,
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Session{}, fmt.Errorf("commit: %w", err)
	}
	return s, nil
}

func (r *sessionRepo) scanOne(row *sql.Row) (model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.DeviceID, &s.Revoked, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, ErrNotFound
		}
		return model.Session{}, fmt.Errorf("scan session: %w", err)
	}
	return s, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Session, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, refresh_token_hash, device_id, revoked, expires_at, created_at
		FROM sessions WHERE id = $1
	`, id))
}

func (r *sessionRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (model.Session, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, refresh_token_hash, device_id, revoked, expires_at, created_at
		FROM sessions WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID))
}

func (r *sessionRepo) Rotate(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_token_hash = $3, expires_at = $4, revoked = FALSE
		WHERE id = $1 AND refresh_token_hash = $2
	`, id, oldHash, newHash, expiresAt)
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE
	`, userID)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}
