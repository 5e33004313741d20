package membership

import (
	"context"
	"time"
)

type Repository interface {
	// Current returns the latest-started membership of the client that has
	// not expired on today, or ErrNoMembership.
	Current(ctx context.Context, clientID int, today time.Time) (*Membership, error)
	HasActive(ctx context.Context, clientID int, today time.Time) (bool, error)
}
