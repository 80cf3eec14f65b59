package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
)

// QuizRepo defines quiz persistence. A quiz and its questions are created
// atomically.
type QuizRepo interface {
	Create(ctx context.Context, q model.Quiz) (model.Quiz, error)
	// Latest returns the most recently created quiz with its questions.
	Latest(ctx context.Context) (model.Quiz, error)
	List(ctx context.Context) ([]model.Quiz, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type quizRepo struct {
	db *sql.DB
}

// NewQuizRepo creates a Postgres-backed QuizRepo.
func NewQuizRepo(db *sql.DB) QuizRepo {
	return &quizRepo{db: db}
}

func (r *quizRepo) Create(ctx context.Context, q model.Quiz) (model.Quiz, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Quiz{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var out model.Quiz
	err = tx.QueryRowContext(ctx, `
		INSERT INTO quizzes (title) VALUES ($1)
		RETURNING id, title, created_at
	`, q.Title).Scan(&out.ID, &out.Title, &out.CreatedAt)
	if err != nil {
		return model.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}

	for _, question := range q.Questions {
		var saved model.QuizQuestion
		err = tx.QueryRowContext(ctx, `
			INSERT INTO quiz_questions (quiz_id, text, option_a, option_b, option_c, option_d, correct)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, quiz_id, text, option_a, option_b, option_c, option_d, correct
		`, out.ID, question.Text, question.OptionA, question.OptionB, question.OptionC, question.OptionD, question.Correct).Scan(
			&saved.ID, &saved.QuizID, &saved.Text, &saved.OptionA, &saved.OptionB, &saved.OptionC, &saved.OptionD, &saved.Correct,
		)
		if err != nil {
			return model.Quiz{}, fmt.Errorf("insert quiz question: %w", err)
		}
		out.Questions = append(out.Questions, saved)
	}

	if err := tx.Commit(); err != nil {
		return model.Quiz{}, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *quizRepo) questionsFor(ctx context.Context, quizID uuid.UUID) ([]model.QuizQuestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, quiz_id, text, option_a, option_b, option_c, option_d, correct
		FROM quiz_questions WHERE quiz_id = $1
	`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list quiz questions: %w", err)
	}
	defer rows.Close()

	questions := []model.QuizQuestion{}
	for rows.Next() {
		var q model.QuizQuestion
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.Correct); err != nil {
			return nil, fmt.Errorf("scan quiz question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *quizRepo) Latest(ctx context.Context) (model.Quiz, error) {
	var q model.Quiz
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, created_at FROM quizzes
		ORDER BY created_at DESC LIMIT 1
	`).Scan(&q.ID, &q.Title, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Quiz{}, ErrNotFound
		}
		return model.Quiz{}, fmt.Errorf("latest quiz: %w", err)
	}

	q.Questions, err = r.questionsFor(ctx, q.ID)
	if err != nil {
		return model.Quiz{}, err
	}
	return q, nil
}

func (r *quizRepo) List(ctx context.Context) ([]model.Quiz, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, created_at FROM quizzes ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []model.Quiz{}
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range quizzes {
		quizzes[i].Questions, err = r.questionsFor(ctx, quizzes[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return quizzes, nil
}

func (r *quizRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
