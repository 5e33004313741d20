package timetable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitcoach/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrSessionNotFound = errors.New("training session not found")

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(db sqlx.ExtContext) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{db: tx}
}

func (r *repository) GetWeeklySessions(ctx context.Context, from, to time.Time) ([]WeeklySession, error) {
	query := `
		SELECT ts.id, c.name AS coach_name, cl.name AS client_name,
		       ts.start_time, ts.end_time, ts.title
		FROM training_sessions ts
		JOIN coaches c ON c.id = ts.coach_id
		JOIN clients cl ON cl.id = ts.client_id
		WHERE ts.start_time >= $1 AND ts.start_time < $2
		ORDER BY coach_name, ts.start_time
	`

	sessions := []WeeklySession{}
	if err := sqlx.SelectContext(ctx, r.db, &sessions, query, from, to); err != nil {
		return nil, fmt.Errorf("get weekly sessions: %w", err)
	}

	for i := range sessions {
		sessions[i].Day = sessions[i].Start.Weekday().String()
	}
	return sessions, nil
}

func (r *repository) HasConflictingSession(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM training_sessions
			WHERE coach_id = $1 AND NOT (end_time <= $2 OR start_time >= $3)
		)
	`

	ok, err := db.Exists(ctx, r.db, query, coachID, start, end)
	if err != nil {
		return false, fmt.Errorf("check session conflict: %w", err)
	}
	return ok, nil
}

func (r *repository) AddTrainingSession(ctx context.Context, clientID, coachID int, start, end time.Time, title string) (*TrainingSession, error) {
	query := `
		INSERT INTO training_sessions (client_id, coach_id, start_time, end_time, title)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, client_id, coach_id, start_time, end_time, title
	`

	var session TrainingSession
	if err := sqlx.GetContext(ctx, r.db, &session, query, clientID, coachID, start, end, title); err != nil {
		return nil, fmt.Errorf("add training session: %w", err)
	}
	return &session, nil
}

func (r *repository) FindTrainingSession(ctx context.Context, id int) (*TrainingSession, error) {
	return r.find(ctx, `
		SELECT id, client_id, coach_id, start_time, end_time, title
		FROM training_sessions
		WHERE id = $1
	`, id)
}

func (r *repository) FindForUpdate(ctx context.Context, id int) (*TrainingSession, error) {
	return r.find(ctx, `
		SELECT id, client_id, coach_id, start_time, end_time, title
		FROM training_sessions
		WHERE id = $1
		FOR UPDATE
	`, id)
}

func (r *repository) find(ctx context.Context, query string, id int) (*TrainingSession, error) {
	var session TrainingSession
	err := sqlx.GetContext(ctx, r.db, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find training session: %w", err)
	}
	return &session, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM training_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete training session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
