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

// MeetingRepo defines advisor meeting persistence.
type MeetingRepo interface {
	Create(ctx context.Context, m model.Meeting) (model.Meeting, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Meeting, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Meeting, error)
	// NextForUser returns the earliest meeting ending after now.
	NextForUser(ctx context.Context, userID uuid.UUID, now time.Time) (model.Meeting, error)
	// SaveTranscript caches the fetched transcript on the meeting row.
	SaveTranscript(ctx context.Context, id uuid.UUID, transcript, conferenceRecordID string) error
}

type meetingRepo struct {
	db *sql.DB
}

// NewMeetingRepo creates a Postgres-backed MeetingRepo.
func NewMeetingRepo(db *sql.DB) MeetingRepo {
	return &meetingRepo{db: db}
}

const meetingColumns = `id, user_id, advisor_id, meet_link, event_id, start_time, end_time, transcript, conference_record_id, created_at`

func scanMeeting(row interface{ Scan(...any) error }) (model.Meeting, error) {
	var m model.Meeting
	err := row.Scan(&m.ID, &m.UserID, &m.AdvisorID, &m.MeetLink, &m.EventID,
		&m.StartTime, &m.EndTime, &m.Transcript, &m.ConferenceRecordID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Meeting{}, ErrNotFound
		}
		return model.Meeting{}, fmt.Errorf("scan meeting: %w", err)
	}
	return m, nil
}

func (r *meetingRepo) Create(ctx context.Context, m model.Meeting) (model.Meeting, error) {
	return scanMeeting(r.db.QueryRowContext(ctx, `
		INSERT INTO meetings (user_id, advisor_id, meet_link, event_id, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+meetingColumns,
		m.UserID, m.AdvisorID, m.MeetLink, m.EventID, m.StartTime, m.EndTime,
	))
}

func (r *meetingRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Meeting, error) {
	return scanMeeting(r.db.QueryRowContext(ctx, `
		SELECT `+meetingColumns+` FROM meetings WHERE id = $1
	`, id))
}

func (r *meetingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Meeting, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+meetingColumns+` FROM meetings
		WHERE user_id = $1 ORDER BY start_time DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	meetings := []model.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *meetingRepo) NextForUser(ctx context.Context, userID uuid.UUID, now time.Time) (model.Meeting, error) {
	return scanMeeting(r.db.QueryRowContext(ctx, `
		SELECT `+meetingColumns+` FROM meetings
		WHERE user_id = $1 AND end_time > $2
		ORDER BY start_time ASC
		LIMIT 1
	`, userID, now))
}

func (r *meetingRepo) SaveTranscript(ctx context.Context, id uuid.UUID, transcript, conferenceRecordID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE meetings SET transcript = $2, conference_record_id = $3 WHERE id = $1
	`, id, transcript, conferenceRecordID)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
