package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
)

// GlossaryRepo defines glossary term persistence.
type GlossaryRepo interface {
	Create(ctx context.Context, t model.GlossaryTerm) (model.GlossaryTerm, error)
	List(ctx context.Context, search string) ([]model.GlossaryTerm, error)
	Update(ctx context.Context, t model.GlossaryTerm) (model.GlossaryTerm, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type glossaryRepo struct {
	db *sql.DB
}

// NewGlossaryRepo creates a Postgres-backed GlossaryRepo.
func NewGlossaryRepo(db *sql.DB) GlossaryRepo {
	return &glossaryRepo{db: db}
}

func scanTerm(row interface{ Scan(...any) error }) (model.GlossaryTerm, error) {
	var t model.GlossaryTerm
	if err := row.Scan(&t.ID, &t.Term, &t.Definition, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GlossaryTerm{}, ErrNotFound
		}
		return model.GlossaryTerm{}, fmt.Errorf("scan glossary term: %w", err)
	}
	return t, nil
}

func (r *glossaryRepo) Create(ctx context.Context, t model.GlossaryTerm) (model.GlossaryTerm, error) {
	return scanTerm(r.db.QueryRowContext(ctx, `
		INSERT INTO glossary_terms (term, definition)
		VALUES ($1, $2)
		RETURNING id, term, definition, created_at
	`, t.Term, t.Definition))
}

func (r *glossaryRepo) List(ctx context.Context, search string) ([]model.GlossaryTerm, error) {
	query := `SELECT id, term, definition, created_at FROM glossary_terms`
	args := []any{}
	if search != "" {
		query += ` WHERE term ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY term ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list glossary terms: %w", err)
	}
	defer rows.Close()

	terms := []model.GlossaryTerm{}
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func (r *glossaryRepo) Update(ctx context.Context, t model.GlossaryTerm) (model.GlossaryTerm, error) {
	return scanTerm(r.db.QueryRowContext(ctx, `
		UPDATE glossary_terms SET term = $2, definition = $3
		WHERE id = $1
		RETURNING id, term, definition, created_at
	`, t.ID, t.Term, t.Definition))
}

func (r *glossaryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM glossary_terms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete glossary term: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
