package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fin100x/server/internal/model"
)

// OTPRepo defines OTP challenge persistence operations.
type OTPRepo interface {
	// Create persists a challenge. Called only after SMS delivery succeeded;
	// a failed delivery must leave no row behind.
	Create(ctx context.Context, req model.OTPRequest) error
	GetByID(ctx context.Context, id string) (model.OTPRequest, error)
	// MarkVerified flips verified false->true exactly once; a second call
	// for the same id returns ErrNotFound.
	MarkVerified(ctx context.Context, id string) error
}

type otpRepo struct {
	db *sql.DB
}

// NewOTPRepo creates a Postgres-backed OTPRepo.
func NewOTPRepo(db *sql.DB) OTPRepo {
	return &otpRepo{db: db}
}

func (r *otpRepo) Create(ctx context.Context, req model.OTPRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otp_requests (id, phone, otp_hash, channel, locale, device_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, req.ID, req.Phone, req.OTPHash, req.Channel, req.Locale, req.DeviceID, req.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert otp request: %w", err)
	}
	return nil
}

func (r *otpRepo) GetByID(ctx context.Context, id string) (model.OTPRequest, error) {
	var req model.OTPRequest
	err := r.db.QueryRowContext(ctx, `
		SELECT id, phone, otp_hash, channel, locale, device_id, expires_at, verified, created_at
		FROM otp_requests
		WHERE id = $1
	`, id).Scan(
		&req.ID,
		&req.Phone,
		&req.OTPHash,
		&req.Channel,
		&req.Locale,
		&req.DeviceID,
		&req.ExpiresAt,
		&req.Verified,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.OTPRequest{}, ErrNotFound
		}
		return model.OTPRequest{}, fmt.Errorf("query otp request: %w", err)
	}
	return req, nil
}

func (r *otpRepo) MarkVerified(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE otp_requests SET verified = TRUE WHERE id = $1 AND verified = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
