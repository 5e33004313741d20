package timetable

import (
	"context"
	"errors"
	"time"

	"fitcoach/internal/availability"
	"fitcoach/internal/cache"
	"fitcoach/internal/db"
	"fitcoach/internal/interval"
	"fitcoach/internal/logger"
	"fitcoach/internal/metrics"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidRange    = interval.ErrInvalidRange
	ErrOutsideSlot     = interval.ErrOutsideSlot
	ErrSlotNotFound    = availability.ErrSlotNotFound
	ErrNotAvailable    = errors.New("coach is not available for the whole window")
	ErrSessionConflict = errors.New("coach already has a session in this window")
)

const (
	cacheNamespace = "timetable"
	dateLayout     = "2006-01-02"
)

// Cache is the subset of *cache.Store the weekly view needs.
type Cache interface {
	Version(ctx context.Context, namespace string) (int64, error)
	Bump(ctx context.Context, namespace string) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
}

type Service interface {
	GetWeeklySessions(ctx context.Context, weekStart time.Time) ([]WeeklySession, error)
	HasConflictingSession(ctx context.Context, coachID int, start, end time.Time) (bool, error)
	AddTrainingSession(ctx context.Context, clientID, coachID int, start, end time.Time, title string) (*TrainingSession, error)
	FindTrainingSession(ctx context.Context, id int) (*TrainingSession, error)
	BookSession(ctx context.Context, req BookSessionRequest) (*TrainingSession, error)
	DeleteSessionAndRestoreAvailability(ctx context.Context, id int) error
}

type service struct {
	repo  Repository
	slots availability.Repository
	tx    db.Transactor
	cache Cache
}

// NewService wires the booking workflows. c may be nil, which disables the
// weekly timetable cache.
func NewService(repo Repository, slots availability.Repository, tx db.Transactor, c Cache) Service {
	return &service{
		repo:  repo,
		slots: slots,
		tx:    tx,
		cache: c,
	}
}

func (s *service) GetWeeklySessions(ctx context.Context, weekStart time.Time) ([]WeeklySession, error) {
	week := interval.Day(weekStart)
	load := func() ([]WeeklySession, error) {
		return s.repo.GetWeeklySessions(ctx, week, week.AddDate(0, 0, 7))
	}

	if s.cache == nil {
		return load()
	}

	version, err := s.cache.Version(ctx, cacheNamespace)
	if err != nil {
		logger.Warn("timetable cache unavailable", "error", err)
		metrics.RecordTimetableCache("error")
		return load()
	}

	key := cache.Key(cacheNamespace, version, week.Format(dateLayout))
	var sessions []WeeklySession
	hit, err := s.cache.GetJSON(ctx, key, &sessions)
	switch {
	case err != nil:
		logger.Warn("timetable cache read failed", "key", key, "error", err)
		metrics.RecordTimetableCache("error")
	case hit:
		metrics.RecordTimetableCache("hit")
		return sessions, nil
	default:
		metrics.RecordTimetableCache("miss")
	}

	sessions, err = load()
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, sessions); err != nil {
		logger.Warn("timetable cache write failed", "key", key, "error", err)
	}
	return sessions, nil
}

func (s *service) HasConflictingSession(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	return s.repo.HasConflictingSession(ctx, coachID, interval.Naive(start), interval.Naive(end))
}

func (s *service) AddTrainingSession(ctx context.Context, clientID, coachID int, start, end time.Time, title string) (*TrainingSession, error) {
	session, err := s.repo.AddTrainingSession(ctx, clientID, coachID, interval.Naive(start), interval.Naive(end), title)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return session, nil
}

func (s *service) FindTrainingSession(ctx context.Context, id int) (*TrainingSession, error) {
	return s.repo.FindTrainingSession(ctx, id)
}

// BookSession creates the session and carves its window out of the chosen
// slot in one transaction. Every rejection leaves the database untouched.
func (s *service) BookSession(ctx context.Context, req BookSessionRequest) (*TrainingSession, error) {
	start, end := interval.Naive(req.Start), interval.Naive(req.End)
	window := interval.New(start, end)
	if !window.Valid() {
		metrics.RecordBooking(bookingOutcome(ErrInvalidRange))
		return nil, ErrInvalidRange
	}

	var session *TrainingSession
	err := s.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		slots := s.slots.WithTx(tx)
		sessions := s.repo.WithTx(tx)

		if err := slots.LockCoach(ctx, req.CoachID); err != nil {
			return err
		}

		slot, err := slots.GetForUpdate(ctx, req.CoachID, req.SlotID)
		if err != nil {
			return err
		}
		if !interval.Contains(slot.Interval(), window) {
			return ErrOutsideSlot
		}

		within, err := slots.IsWithinAvailability(ctx, req.CoachID, start, end)
		if err != nil {
			return err
		}
		if !within {
			return ErrNotAvailable
		}

		conflict, err := sessions.HasConflictingSession(ctx, req.CoachID, start, end)
		if err != nil {
			return err
		}
		if conflict {
			return ErrSessionConflict
		}

		session, err = sessions.AddTrainingSession(ctx, req.ClientID, req.CoachID, start, end, req.Title)
		if err != nil {
			return err
		}

		return availability.Consume(ctx, slots, *slot, start, end)
	})
	metrics.RecordBooking(bookingOutcome(err))
	if err != nil {
		return nil, err
	}

	logger.Info("session booked",
		"session_id", session.ID,
		"coach_id", req.CoachID,
		"client_id", req.ClientID,
		"start", start,
		"end", end,
	)
	s.invalidate(ctx)
	return session, nil
}

func (s *service) DeleteSessionAndRestoreAvailability(ctx context.Context, id int) error {
	var session *TrainingSession
	err := s.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		slots := s.slots.WithTx(tx)
		sessions := s.repo.WithTx(tx)

		var err error
		session, err = sessions.FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := slots.LockCoach(ctx, session.CoachID); err != nil {
			return err
		}
		if err := sessions.Delete(ctx, id); err != nil {
			return err
		}
		return availability.Restore(ctx, slots, session.CoachID, session.Start, session.End)
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			metrics.RecordCancellation("not_found")
		} else {
			metrics.RecordCancellation("error")
		}
		return err
	}

	metrics.RecordCancellation("cancelled")
	logger.Info("session cancelled", "session_id", id, "coach_id", session.CoachID)
	s.invalidate(ctx)
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, cacheNamespace); err != nil {
		logger.Warn("timetable cache invalidation failed", "error", err)
	}
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "booked"
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, ErrOutsideSlot):
		return "outside_slot"
	case errors.Is(err, ErrSlotNotFound):
		return "slot_not_found"
	case errors.Is(err, ErrNotAvailable):
		return "not_available"
	case errors.Is(err, ErrSessionConflict):
		return "conflict"
	default:
		return "error"
	}
}
