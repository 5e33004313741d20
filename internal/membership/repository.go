package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitcoach/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrNoMembership = errors.New("client has no current membership")

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(db sqlx.ExtContext) Repository {
	return &repository{db: db}
}

func (r *repository) Current(ctx context.Context, clientID int, today time.Time) (*Membership, error) {
	query := `
		SELECT id, start_date, expires_at, price, type, holder_id, visits_remaining
		FROM memberships
		WHERE holder_id = $1
		  AND (expires_at IS NULL OR expires_at >= $2)
		ORDER BY start_date DESC
		LIMIT 1
	`

	var m Membership
	err := sqlx.GetContext(ctx, r.db, &m, query, clientID, today)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoMembership
	}
	if err != nil {
		return nil, fmt.Errorf("get current membership: %w", err)
	}
	return &m, nil
}

func (r *repository) HasActive(ctx context.Context, clientID int, today time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM memberships
			WHERE holder_id = $1 AND $2 BETWEEN start_date AND expires_at
		)
	`

	ok, err := db.Exists(ctx, r.db, query, clientID, today)
	if err != nil {
		return false, fmt.Errorf("check active membership: %w", err)
	}
	return ok, nil
}
