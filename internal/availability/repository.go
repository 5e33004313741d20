package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitcoach/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrSlotNotFound = errors.New("availability slot not found")

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(db sqlx.ExtContext) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{db: tx}
}

func (r *repository) LockCoach(ctx context.Context, coachID int) error {
	return db.LockCoach(ctx, r.db, coachID)
}

func (r *repository) Insert(ctx context.Context, coachID int, start, end time.Time, note string) (*Slot, error) {
	query := `
		INSERT INTO coach_availability (coach_id, start_time, end_time, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, coach_id, start_time, end_time, note
	`

	var slot Slot
	if err := sqlx.GetContext(ctx, r.db, &slot, query, coachID, start, end, note); err != nil {
		return nil, fmt.Errorf("insert availability: %w", err)
	}

	return &slot, nil
}

func (r *repository) IsWithinAvailability(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM coach_availability
			WHERE coach_id = $1 AND start_time <= $2 AND end_time >= $3
		)
	`

	ok, err := db.Exists(ctx, r.db, query, coachID, start, end)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return ok, nil
}

func (r *repository) HasOverlap(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM coach_availability
			WHERE coach_id = $1 AND NOT (end_time <= $2 OR start_time >= $3)
		)
	`

	ok, err := db.Exists(ctx, r.db, query, coachID, start, end)
	if err != nil {
		return false, fmt.Errorf("check availability overlap: %w", err)
	}
	return ok, nil
}

func (r *repository) ListBetween(ctx context.Context, coachID int, from, to time.Time) ([]Slot, error) {
	query := `
		SELECT id, coach_id, start_time, end_time, COALESCE(note, 'Available') AS note
		FROM coach_availability
		WHERE coach_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`

	slots := []Slot{}
	if err := sqlx.SelectContext(ctx, r.db, &slots, query, coachID, from, to); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return slots, nil
}

func (r *repository) ListForCoach(ctx context.Context, coachID int) ([]Slot, error) {
	query := `
		SELECT id, coach_id, start_time, end_time, COALESCE(note, 'Available') AS note
		FROM coach_availability
		WHERE coach_id = $1
		ORDER BY start_time, id
	`

	slots := []Slot{}
	if err := sqlx.SelectContext(ctx, r.db, &slots, query, coachID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return slots, nil
}

func (r *repository) GetForUpdate(ctx context.Context, coachID, slotID int) (*Slot, error) {
	query := `
		SELECT id, coach_id, start_time, end_time, COALESCE(note, 'Available') AS note
		FROM coach_availability
		WHERE id = $1 AND coach_id = $2
		FOR UPDATE
	`

	var slot Slot
	err := sqlx.GetContext(ctx, r.db, &slot, query, slotID, coachID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get availability slot: %w", err)
	}
	return &slot, nil
}

func (r *repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM coach_availability WHERE end_time < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired availability: %w", err)
	}
	return result.RowsAffected()
}

// Delete and UpdateBounds match the row by id and by the exact bounds the
// caller read, so a slot changed by someone else since is reported as missing.
func (r *repository) Delete(ctx context.Context, slot Slot) error {
	query := `
		DELETE FROM coach_availability
		WHERE id = $1 AND coach_id = $2 AND start_time = $3 AND end_time = $4
	`

	result, err := r.db.ExecContext(ctx, query, slot.ID, slot.CoachID, slot.Start, slot.End)
	if err != nil {
		return fmt.Errorf("delete availability slot: %w", err)
	}
	return requireOneRow(result)
}

func (r *repository) UpdateBounds(ctx context.Context, slot Slot, start, end time.Time) error {
	query := `
		UPDATE coach_availability
		SET start_time = $1, end_time = $2
		WHERE id = $3 AND coach_id = $4 AND start_time = $5 AND end_time = $6
	`

	result, err := r.db.ExecContext(ctx, query, start, end, slot.ID, slot.CoachID, slot.Start, slot.End)
	if err != nil {
		return fmt.Errorf("update availability slot: %w", err)
	}
	return requireOneRow(result)
}

func (r *repository) DeleteAllForCoach(ctx context.Context, coachID int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM coach_availability WHERE coach_id = $1`, coachID); err != nil {
		return fmt.Errorf("clear availability: %w", err)
	}
	return nil
}

func requireOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}
