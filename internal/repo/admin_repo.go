package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
)

// AdminRepo defines admin account lookups. Accounts are provisioned out of
// band (seed data); there is no self-service signup.
type AdminRepo interface {
	GetByEmail(ctx context.Context, email string) (model.Admin, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Admin, error)
}

type adminRepo struct {
	db *sql.DB
}

// NewAdminRepo creates a Postgres-backed AdminRepo.
func NewAdminRepo(db *sql.DB) AdminRepo {
	return &adminRepo{db: db}
}

func scanAdmin(row *sql.Row) (model.Admin, error) {
	var a model.Admin
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Admin{}, ErrNotFound
		}
		return model.Admin{}, fmt.Errorf("scan admin: %w", err)
	}
	return a, nil
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (model.Admin, error) {
	return scanAdmin(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, role, created_at
		FROM admins WHERE email = $1
	`, email))
}

func (r *adminRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Admin, error) {
	return scanAdmin(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, role, created_at
		FROM admins WHERE id = $1
	`, id))
}
