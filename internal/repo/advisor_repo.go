package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fin100x/server/internal/model"
)

// AdvisorRepo defines advisor persistence.
type AdvisorRepo interface {
	Create(ctx context.Context, a model.Advisor) (model.Advisor, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Advisor, error)
	List(ctx context.Context) ([]model.Advisor, error)
	Update(ctx context.Context, a model.Advisor) (model.Advisor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type advisorRepo struct {
	db *sql.DB
}

// NewAdvisorRepo creates a Postgres-backed AdvisorRepo.
func NewAdvisorRepo(db *sql.DB) AdvisorRepo {
	return &advisorRepo{db: db}
}

const advisorColumns = `id, salutation, first_name, last_name, designation, years_experience, expertise_tags, role, image_object, created_at`

func scanAdvisor(row interface{ Scan(...any) error }) (model.Advisor, error) {
	var a model.Advisor
	err := row.Scan(
		&a.ID, &a.Salutation, &a.FirstName, &a.LastName, &a.Designation,
		&a.YearsExperience, pq.Array(&a.ExpertiseTags), &a.Role, &a.ImageObject, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Advisor{}, ErrNotFound
		}
		return model.Advisor{}, fmt.Errorf("scan advisor: %w", err)
	}
	return a, nil
}

func (r *advisorRepo) Create(ctx context.Context, a model.Advisor) (model.Advisor, error) {
	return scanAdvisor(r.db.QueryRowContext(ctx, `
		INSERT INTO advisors (salutation, first_name, last_name, designation, years_experience, expertise_tags, role, image_object)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+advisorColumns,
		a.Salutation, a.FirstName, a.LastName, a.Designation,
		a.YearsExperience, pq.Array(a.ExpertiseTags), a.Role, a.ImageObject,
	))
}

func (r *advisorRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Advisor, error) {
	return scanAdvisor(r.db.QueryRowContext(ctx, `
		SELECT `+advisorColumns+` FROM advisors WHERE id = $1
	`, id))
}

func (r *advisorRepo) List(ctx context.Context) ([]model.Advisor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+advisorColumns+` FROM advisors ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list advisors: %w", err)
	}
	defer rows.Close()

	advisors := []model.Advisor{}
	for rows.Next() {
		a, err := scanAdvisor(rows)
		if err != nil {
			return nil, err
		}
		advisors = append(advisors, a)
	}
	return advisors, rows.Err()
}

func (r *advisorRepo) Update(ctx context.Context, a model.Advisor) (model.Advisor, error) {
	return scanAdvisor(r.db.QueryRowContext(ctx, `
		UPDATE advisors
		SET salutation = $2, first_name = $3, last_name = $4, designation = $5,
		    years_experience = $6, expertise_tags = $7, role = $8, image_object = $9
		WHERE id = $1
		RETURNING `+advisorColumns,
		a.ID, a.Salutation, a.FirstName, a.LastName, a.Designation,
		a.YearsExperience, pq.Array(a.ExpertiseTags), a.Role, a.ImageObject,
	))
}

func (r *advisorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM advisors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete advisor: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
