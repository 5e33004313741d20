package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Transactor runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise; fn's error is
// returned unchanged so callers can match sentinel rejections with errors.Is.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

const sqlStateLockNotAvailable = "55P03"

// IsLockNotAvailable reports whether err is PostgreSQL's lock_not_available
// (NOWAIT or lock_timeout), under either supported driver.
func IsLockNotAvailable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == sqlStateLockNotAvailable
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateLockNotAvailable
	}
	return false
}
