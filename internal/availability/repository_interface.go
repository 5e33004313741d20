package availability

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// WithTx returns a Repository whose statements run inside tx.
	WithTx(tx *sqlx.Tx) Repository
	LockCoach(ctx context.Context, coachID int) error

	Insert(ctx context.Context, coachID int, start, end time.Time, note string) (*Slot, error)
	IsWithinAvailability(ctx context.Context, coachID int, start, end time.Time) (bool, error)
	HasOverlap(ctx context.Context, coachID int, start, end time.Time) (bool, error)
	ListBetween(ctx context.Context, coachID int, from, to time.Time) ([]Slot, error)
	ListForCoach(ctx context.Context, coachID int) ([]Slot, error)
	GetForUpdate(ctx context.Context, coachID, slotID int) (*Slot, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, slot Slot) error
	UpdateBounds(ctx context.Context, slot Slot, start, end time.Time) error
	DeleteAllForCoach(ctx context.Context, coachID int) error
}
