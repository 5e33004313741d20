package timetable

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository

	GetWeeklySessions(ctx context.Context, from, to time.Time) ([]WeeklySession, error)
	HasConflictingSession(ctx context.Context, coachID int, start, end time.Time) (bool, error)
	AddTrainingSession(ctx context.Context, clientID, coachID int, start, end time.Time, title string) (*TrainingSession, error)
	FindTrainingSession(ctx context.Context, id int) (*TrainingSession, error)
	FindForUpdate(ctx context.Context, id int) (*TrainingSession, error)
	Delete(ctx context.Context, id int) error
}
