package availability

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slotColumns = []string{"id", "coach_id", "start_time", "end_time", "note"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO coach_availability`).
		WithArgs(3, at(9, 0), at(17, 0), "Morning").
		WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(11, 3, at(9, 0), at(17, 0), "Morning"))

	slot, err := repo.Insert(context.Background(), 3, at(9, 0), at(17, 0), "Morning")
	require.NoError(t, err)
	assert.Equal(t, 11, slot.ID)
	assert.Equal(t, "Morning", slot.Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsWithinAvailability(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS\(\s*SELECT 1 FROM coach_availability\s*WHERE coach_id = \$1 AND start_time <= \$2 AND end_time >= \$3`).
		WithArgs(3, at(10, 0), at(11, 0)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsWithinAvailability(context.Background(), 3, at(10, 0), at(11, 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasOverlap(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`NOT \(end_time <= \$2 OR start_time >= \$3\)`).
		WithArgs(3, at(17, 0), at(18, 0)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.HasOverlap(context.Background(), 3, at(17, 0), at(18, 0))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBetween(t *testing.T) {
	repo, mock := newMockRepo(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`COALESCE\(note, 'Available'\).*start_time >= \$2 AND start_time < \$3\s*ORDER BY start_time`).
		WithArgs(3, day, day.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows(slotColumns).
			AddRow(1, 3, at(9, 0), at(10, 0), "Available").
			AddRow(2, 3, at(14, 0), at(16, 0), "Pool"))

	slots, err := repo.ListBetween(context.Background(), 3, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "Pool", slots[1].Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForCoach_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM coach_availability\s*WHERE coach_id = \$1\s*ORDER BY start_time, id`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(slotColumns))

	slots, err := repo.ListForCoach(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestGetForUpdate(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`WHERE id = \$1 AND coach_id = \$2\s*FOR UPDATE`).
			WithArgs(11, 3).
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(11, 3, at(9, 0), at(17, 0), "Available"))

		slot, err := repo.GetForUpdate(context.Background(), 3, 11)
		require.NoError(t, err)
		assert.Equal(t, at(17, 0), slot.End)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs(11, 3).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetForUpdate(context.Background(), 3, 11)
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})
}

func TestDeleteExpired(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := at(12, 0)

	mock.ExpectExec(`DELETE FROM coach_availability WHERE end_time < \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestDelete_MatchesExactBounds(t *testing.T) {
	slot := Slot{ID: 11, CoachID: 3, Start: at(9, 0), End: at(10, 0)}

	t.Run("deleted", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM coach_availability\s*WHERE id = \$1 AND coach_id = \$2 AND start_time = \$3 AND end_time = \$4`).
			WithArgs(11, 3, at(9, 0), at(10, 0)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), slot))
	})

	t.Run("stale", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM coach_availability`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), slot), ErrSlotNotFound)
	})
}

func TestUpdateBounds(t *testing.T) {
	repo, mock := newMockRepo(t)
	slot := Slot{ID: 11, CoachID: 3, Start: at(9, 0), End: at(17, 0)}

	mock.ExpectExec(`UPDATE coach_availability\s*SET start_time = \$1, end_time = \$2`).
		WithArgs(at(10, 0), at(17, 0), 11, 3, at(9, 0), at(17, 0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateBounds(context.Background(), slot, at(10, 0), at(17, 0)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockCoach(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1, \$2\)`).
		WithArgs(4201, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.LockCoach(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	dbx := sqlx.NewDb(db, "sqlmock")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM coach_availability WHERE coach_id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := dbx.Beginx()
	require.NoError(t, err)

	repo := NewRepository(dbx).WithTx(tx)
	require.NoError(t, repo.DeleteAllForCoach(context.Background(), 3))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
