package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
)

// ProfileUpdate carries the optional fields of a profile patch; nil fields
// are left untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Language  *string
}

// UserRepo defines user persistence operations.
type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByPhone(ctx context.Context, phone string) (model.User, error)
	// EnsureByPhone returns the user for the phone, creating one on first
	// login (isNew=true) and clearing isNew on the second.
	EnsureByPhone(ctx context.Context, phone, masked string) (model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfileUpdate) (model.User, error)
}

type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a Postgres-backed UserRepo.
func NewUserRepo(db *sql.DB) UserRepo {
	return &userRepo{db: db}
}

const userColumns = `id, phone, phone_masked, language, is_new, kyc_status, first_name, last_name, email, created_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Phone,
		&u.PhoneMasked,
		&u.Language,
		&u.IsNew,
		&u.KYCStatus,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

func (r *userRepo) EnsureByPhone(ctx context.Context, phone, masked string) (model.User, error) {
	// Insert-or-flip in one statement: a fresh row starts with is_new=true,
	// a conflicting (existing) row has is_new cleared.
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (phone, phone_masked, language, is_new, kyc_status)
		VALUES ($1, $2, 'en-IN', TRUE, 'none')
		ON CONFLICT (phone) DO UPDATE SET is_new = FALSE
		RETURNING `+userColumns, phone, masked)
	return scanUser(row)
}

func (r *userRepo) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfileUpdate) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			email      = COALESCE($4, email),
			language   = COALESCE($5, language)
		WHERE id = $1
		RETURNING `+userColumns,
		id, patch.FirstName, patch.LastName, patch.Email, patch.Language)
	return scanUser(row)
}
