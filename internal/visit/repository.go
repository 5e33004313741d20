package visit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitcoach/internal/membership"

	"github.com/jmoiron/sqlx"
)

var ErrNoActiveMembership = errors.New("client has no active membership")

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(db sqlx.ExtContext) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{db: tx}
}

func (r *repository) LockActiveMembership(ctx context.Context, clientID int, day time.Time) (*membership.Membership, error) {
	query := `
		SELECT id, start_date, expires_at, price, type, holder_id, visits_remaining
		FROM memberships
		WHERE holder_id = $1
		  AND $2 BETWEEN start_date AND expires_at
		ORDER BY expires_at DESC
		LIMIT 1
		FOR UPDATE
	`

	var m membership.Membership
	err := sqlx.GetContext(ctx, r.db, &m, query, clientID, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveMembership
	}
	if err != nil {
		return nil, fmt.Errorf("lock membership: %w", err)
	}
	return &m, nil
}

func (r *repository) InsertVisit(ctx context.Context, clientID, membershipID int, at time.Time) (*Visit, error) {
	query := `
		INSERT INTO visits (client_id, membership_id, check_in)
		VALUES ($1, $2, $3)
		RETURNING id, client_id, membership_id, check_in
	`

	var v Visit
	if err := sqlx.GetContext(ctx, r.db, &v, query, clientID, membershipID, at); err != nil {
		return nil, fmt.Errorf("insert visit: %w", err)
	}
	return &v, nil
}

func (r *repository) SpendVisit(ctx context.Context, membershipID int) error {
	query := `
		UPDATE memberships
		SET visits_remaining = visits_remaining - 1
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, membershipID); err != nil {
		return fmt.Errorf("spend visit: %w", err)
	}
	return nil
}

const recentVisitsSelect = `
	SELECT v.id,
	       c.name AS client_name,
	       c.email AS client_email,
	       m.type AS membership_type,
	       v.check_in
	FROM visits v
	JOIN clients c ON c.id = v.client_id
	LEFT JOIN memberships m ON m.id = v.membership_id
`

func (r *repository) GetRecentVisits(ctx context.Context, limit int) ([]Row, error) {
	rows := []Row{}
	err := sqlx.SelectContext(ctx, r.db, &rows, recentVisitsSelect+`
		ORDER BY v.check_in DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent visits: %w", err)
	}
	return rows, nil
}

func (r *repository) GetRecentVisitsForClient(ctx context.Context, filter string, limit int) ([]Row, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(filter)) + "%"

	rows := []Row{}
	err := sqlx.SelectContext(ctx, r.db, &rows, recentVisitsSelect+`
		WHERE LOWER(c.name) LIKE $1 OR LOWER(c.email) LIKE $1
		ORDER BY v.check_in DESC
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent visits for %q: %w", filter, err)
	}
	return rows, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *repository) CountVisitsForClient(ctx context.Context, clientID int) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM visits WHERE client_id = $1`, clientID); err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return count, nil
}
