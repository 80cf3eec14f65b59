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

// BannerRepo defines promotional banner persistence.
type BannerRepo interface {
	Create(ctx context.Context, b model.Banner) (model.Banner, error)
	// ListActive returns active banners whose validity window contains now,
	// optionally filtered by screen.
	ListActive(ctx context.Context, screen string, now time.Time) ([]model.Banner, error)
	List(ctx context.Context) ([]model.Banner, error)
	Update(ctx context.Context, b model.Banner) (model.Banner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bannerRepo struct {
	db *sql.DB
}

// NewBannerRepo creates a Postgres-backed BannerRepo.
func NewBannerRepo(db *sql.DB) BannerRepo {
	return &bannerRepo{db: db}
}

const bannerColumns = `id, title, image_object, redirect_url, screen, valid_from, valid_till, is_active, created_at`

func scanBanner(row interface{ Scan(...any) error }) (model.Banner, error) {
	var b model.Banner
	err := row.Scan(&b.ID, &b.Title, &b.ImageObject, &b.RedirectURL, &b.Screen,
		&b.ValidFrom, &b.ValidTill, &b.IsActive, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Banner{}, ErrNotFound
		}
		return model.Banner{}, fmt.Errorf("scan banner: %w", err)
	}
	return b, nil
}

func (r *bannerRepo) Create(ctx context.Context, b model.Banner) (model.Banner, error) {
	return scanBanner(r.db.QueryRowContext(ctx, `
		INSERT INTO banners (title, image_object, redirect_url, screen, valid_from, valid_till, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+bannerColumns,
		b.Title, b.ImageObject, b.RedirectURL, b.Screen, b.ValidFrom, b.ValidTill, b.IsActive,
	))
}

func (r *bannerRepo) collect(rows *sql.Rows) ([]model.Banner, error) {
	defer rows.Close()
	banners := []model.Banner{}
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

func (r *bannerRepo) ListActive(ctx context.Context, screen string, now time.Time) ([]model.Banner, error) {
	query := `
		SELECT ` + bannerColumns + ` FROM banners
		WHERE is_active = TRUE AND valid_from <= $1 AND valid_till >= $1`
	args := []any{now}
	if screen != "" {
		query += ` AND screen = $2`
		args = append(args, screen)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active banners: %w", err)
	}
	return r.collect(rows)
}

func (r *bannerRepo) List(ctx context.Context) ([]model.Banner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bannerColumns+` FROM banners ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	return r.collect(rows)
}

func (r *bannerRepo) Update(ctx context.Context, b model.Banner) (model.Banner, error) {
	return scanBanner(r.db.QueryRowContext(ctx, `
		UPDATE banners
		SET title = $2, image_object = $3, redirect_url = $4, screen = $5,
		    valid_from = $6, valid_till = $7, is_active = $8
		WHERE id = $1
		RETURNING `+bannerColumns,
		b.ID, b.Title, b.ImageObject, b.RedirectURL, b.Screen, b.ValidFrom, b.ValidTill, b.IsActive,
	))
}

func (r *bannerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
