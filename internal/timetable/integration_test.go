package timetable_test

import (
	"context"
	"testing"
	"time"

	"fitcoach/internal/availability"
	"fitcoach/internal/db"
	"fitcoach/internal/db/dbtest"
	"fitcoach/internal/interval"
	"fitcoach/internal/timetable"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tomorrowAt(hour int) time.Time {
	return interval.Day(time.Now()).AddDate(0, 0, 1).Add(time.Duration(hour) * time.Hour)
}

type fixture struct {
	slots    availability.Service
	sessions timetable.Service
	coachID  int
	clientID int
}

func setup(t *testing.T) fixture {
	conn := dbtest.Open(t)
	tx := db.NewTransactor(conn)
	slotRepo := availability.NewRepository(conn)

	return fixture{
		slots:    availability.NewService(slotRepo, tx),
		sessions: timetable.NewService(timetable.NewRepository(conn), slotRepo, tx, nil),
		coachID:  dbtest.CreateCoach(t, conn, "Ana"),
		clientID: dbtest.CreateClient(t, conn, "Carl", "carl@example.com"),
	}
}

func (f fixture) book(ctx context.Context, t *testing.T, from, to int) (*timetable.TrainingSession, error) {
	t.Helper()
	slots, err := f.slots.ListForCoach(ctx, f.coachID)
	require.NoError(t, err)

	window := interval.New(tomorrowAt(from), tomorrowAt(to))
	for _, slot := range slots {
		if interval.Contains(slot.Interval(), window) {
			return f.sessions.BookSession(ctx, timetable.BookSessionRequest{
				CoachID:  f.coachID,
				ClientID: f.clientID,
				SlotID:   slot.ID,
				Title:    "PT",
				Start:    window.Start,
				End:      window.End,
			})
		}
	}
	return f.sessions.BookSession(ctx, timetable.BookSessionRequest{
		CoachID:  f.coachID,
		ClientID: f.clientID,
		SlotID:   slots[0].ID,
		Start:    window.Start,
		End:      window.End,
	})
}

func TestBookAndCancel_Integration(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.slots.AddAvailability(ctx, f.coachID, tomorrowAt(9), tomorrowAt(17), ""))

	first, err := f.book(ctx, t, 10, 11)
	require.NoError(t, err)

	// touching sessions are fine
	second, err := f.book(ctx, t, 11, 12)
	require.NoError(t, err)

	// the booked window is no longer available
	_, err = f.book(ctx, t, 10, 11)
	assert.Error(t, err)

	conflict, err := f.sessions.HasConflictingSession(ctx, f.coachID, tomorrowAt(10), tomorrowAt(11))
	require.NoError(t, err)
	assert.True(t, conflict)
	conflict, err = f.sessions.HasConflictingSession(ctx, f.coachID, tomorrowAt(12), tomorrowAt(13))
	require.NoError(t, err)
	assert.False(t, conflict)

	require.NoError(t, f.sessions.DeleteSessionAndRestoreAvailability(ctx, first.ID))
	require.NoError(t, f.sessions.DeleteSessionAndRestoreAvailability(ctx, second.ID))

	slots, err := f.slots.ListForCoach(ctx, f.coachID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, tomorrowAt(9).Equal(slots[0].Start))
	assert.True(t, tomorrowAt(17).Equal(slots[0].End))

	week, err := f.sessions.GetWeeklySessions(ctx, tomorrowAt(0))
	require.NoError(t, err)
	assert.Empty(t, week)

	err = f.sessions.DeleteSessionAndRestoreAvailability(ctx, first.ID)
	assert.ErrorIs(t, err, timetable.ErrSessionNotFound)
}

func TestWeeklySessions_Integration(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.slots.AddAvailability(ctx, f.coachID, tomorrowAt(9), tomorrowAt(17), ""))
	_, err := f.book(ctx, t, 14, 15)
	require.NoError(t, err)

	week, err := f.sessions.GetWeeklySessions(ctx, tomorrowAt(0))
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, "Ana", week[0].CoachName)
	assert.Equal(t, "Carl", week[0].ClientName)
	assert.Equal(t, tomorrowAt(0).Weekday().String(), week[0].Day)
}
