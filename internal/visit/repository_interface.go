package visit

import (
	"context"
	"time"

	"fitcoach/internal/membership"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// WithTx returns a Repository whose statements run inside tx.
	WithTx(tx *sqlx.Tx) Repository

	// LockActiveMembership row-locks the client's membership covering day.
	// Only meaningful inside a transaction.
	LockActiveMembership(ctx context.Context, clientID int, day time.Time) (*membership.Membership, error)
	InsertVisit(ctx context.Context, clientID, membershipID int, at time.Time) (*Visit, error)
	SpendVisit(ctx context.Context, membershipID int) error

	GetRecentVisits(ctx context.Context, limit int) ([]Row, error)
	GetRecentVisitsForClient(ctx context.Context, filter string, limit int) ([]Row, error)
	CountVisitsForClient(ctx context.Context, clientID int) (int, error)
}
