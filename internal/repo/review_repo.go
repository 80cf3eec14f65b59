package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
)

// ReviewRepo defines advisor review persistence.
type ReviewRepo interface {
	Create(ctx context.Context, rev model.Review) (model.Review, error)
	ListByAdvisor(ctx context.Context, advisorID uuid.UUID, limit, offset int) ([]model.Review, error)
	// AverageRating returns the mean rating and review count for an advisor.
	// An advisor with no reviews yields (0, 0, nil).
	AverageRating(ctx context.Context, advisorID uuid.UUID) (float64, int, error)
}

type reviewRepo struct {
	db *sql.DB
}

// NewReviewRepo creates a Postgres-backed ReviewRepo.
func NewReviewRepo(db *sql.DB) ReviewRepo {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, rev model.Review) (model.Review, error) {
	var out model.Review
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (advisor_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, advisor_id, user_id, rating, comment, created_at
	`, rev.AdvisorID, rev.UserID, rev.Rating, rev.Comment).Scan(
		&out.ID, &out.AdvisorID, &out.UserID, &out.Rating, &out.Comment, &out.CreatedAt,
	)
	if err != nil {
		return model.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return out, nil
}

func (r *reviewRepo) ListByAdvisor(ctx context.Context, advisorID uuid.UUID, limit, offset int) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, advisor_id, user_id, rating, comment, created_at
		FROM reviews WHERE advisor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, advisorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.AdvisorID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func (r *reviewRepo) AverageRating(ctx context.Context, advisorID uuid.UUID) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT AVG(rating), COUNT(*) FROM reviews WHERE advisor_id = $1
	`, advisorID).Scan(&avg, &count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}
	return avg.Float64, count, nil
}
