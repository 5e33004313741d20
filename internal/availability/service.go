package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcoach/internal/db"
	"fitcoach/internal/interval"
	"fitcoach/internal/logger"
	"fitcoach/internal/metrics"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidRange = interval.ErrInvalidRange
	ErrOutsideSlot  = interval.ErrOutsideSlot
	ErrInPast       = errors.New("availability cannot start in the past")
)

type Service interface {
	AddAvailability(ctx context.Context, coachID int, start, end time.Time, note string) error
	IsWithinAvailability(ctx context.Context, coachID int, start, end time.Time) (bool, error)
	HasOverlap(ctx context.Context, coachID int, start, end time.Time) (bool, error)
	GetAvailabilityForDate(ctx context.Context, coachID int, date time.Time) ([]Slot, error)
	ListForCoach(ctx context.Context, coachID int) ([]Slot, error)
	DeleteExpired(ctx context.Context) (int64, error)
	ConsumeAvailability(ctx context.Context, coachID int, slot Slot, start, end time.Time) error
	RestoreAvailability(ctx context.Context, coachID int, start, end time.Time) error
	MergeAvailability(ctx context.Context, coachID int) error
}

type service struct {
	repo Repository
	tx   db.Transactor
	now  func() time.Time
}

func NewService(repo Repository, tx db.Transactor) Service {
	return &service{
		repo: repo,
		tx:   tx,
		now:  func() time.Time { return interval.Naive(time.Now()) },
	}
}

func (s *service) AddAvailability(ctx context.Context, coachID int, start, end time.Time, note string) error {
	start, end = interval.Naive(start), interval.Naive(end)
	if !end.After(start) {
		return ErrInvalidRange
	}
	if start.Before(s.now()) {
		return ErrInPast
	}
	if note == "" {
		note = DefaultNote
	}

	return s.inCoachTx(ctx, coachID, func(repo Repository) error {
		if _, err := repo.Insert(ctx, coachID, start, end, note); err != nil {
			return err
		}
		return Merge(ctx, repo, coachID)
	})
}

func (s *service) IsWithinAvailability(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	return s.repo.IsWithinAvailability(ctx, coachID, interval.Naive(start), interval.Naive(end))
}

func (s *service) HasOverlap(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	return s.repo.HasOverlap(ctx, coachID, interval.Naive(start), interval.Naive(end))
}

func (s *service) GetAvailabilityForDate(ctx context.Context, coachID int, date time.Time) ([]Slot, error) {
	if _, err := s.DeleteExpired(ctx); err != nil {
		return nil, err
	}

	day := interval.Day(date)
	return s.repo.ListBetween(ctx, coachID, day, day.AddDate(0, 0, 1))
}

func (s *service) ListForCoach(ctx context.Context, coachID int) ([]Slot, error) {
	return s.repo.ListForCoach(ctx, coachID)
}

func (s *service) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	metrics.RecordExpiredSlots(n)
	if n > 0 {
		logger.Debug("expired availability removed", "count", n)
	}
	return n, nil
}

// ConsumeAvailability only touches slots of coachID, whose lock it holds.
func (s *service) ConsumeAvailability(ctx context.Context, coachID int, slot Slot, start, end time.Time) error {
	if slot.CoachID != coachID {
		return ErrSlotNotFound
	}
	return s.inCoachTx(ctx, coachID, func(repo Repository) error {
		return Consume(ctx, repo, slot, interval.Naive(start), interval.Naive(end))
	})
}

func (s *service) RestoreAvailability(ctx context.Context, coachID int, start, end time.Time) error {
	if coachID == 0 || !end.After(start) {
		return nil
	}

	return s.inCoachTx(ctx, coachID, func(repo Repository) error {
		return Restore(ctx, repo, coachID, interval.Naive(start), interval.Naive(end))
	})
}

func (s *service) MergeAvailability(ctx context.Context, coachID int) error {
	return s.inCoachTx(ctx, coachID, func(repo Repository) error {
		return Merge(ctx, repo, coachID)
	})
}

func (s *service) inCoachTx(ctx context.Context, coachID int, fn func(repo Repository) error) error {
	return s.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)
		if err := repo.LockCoach(ctx, coachID); err != nil {
			return err
		}
		return fn(repo)
	})
}

// Consume carves [start, end) out of slot. repo must be bound to a
// transaction that holds the coach lock.
func Consume(ctx context.Context, repo Repository, slot Slot, start, end time.Time) error {
	plan, err := interval.Consume(slot.Interval(), interval.New(start, end))
	if err != nil {
		return err
	}

	switch plan.Action {
	case interval.Remove:
		err = repo.Delete(ctx, slot)
	case interval.ShrinkStart, interval.ShrinkEnd:
		keep := plan.Keep[0]
		err = repo.UpdateBounds(ctx, slot, keep.Start, keep.End)
	case interval.Split:
		before, after := plan.Keep[0], plan.Keep[1]
		if err = repo.UpdateBounds(ctx, slot, before.Start, before.End); err == nil {
			_, err = repo.Insert(ctx, slot.CoachID, after.Start, after.End, slot.Note)
		}
	}
	if err != nil {
		return err
	}

	metrics.RecordConsume(plan.Action.String())
	return nil
}

// Restore gives [start, end) back to the coach and re-normalizes.
func Restore(ctx context.Context, repo Repository, coachID int, start, end time.Time) error {
	if coachID == 0 || !end.After(start) {
		return nil
	}
	if _, err := repo.Insert(ctx, coachID, start, end, DefaultNote); err != nil {
		return err
	}
	return Merge(ctx, repo, coachID)
}

// Merge rewrites the coach's slots as their coalesced set. The earliest slot
// of each merged run keeps its note.
func Merge(ctx context.Context, repo Repository, coachID int) error {
	slots, err := repo.ListForCoach(ctx, coachID)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}

	windows := make([]interval.Interval, len(slots))
	for i, slot := range slots {
		windows[i] = slot.Interval()
	}
	runs := interval.Merge(windows)

	if err := repo.DeleteAllForCoach(ctx, coachID); err != nil {
		return err
	}
	for _, run := range runs {
		if _, err := repo.Insert(ctx, coachID, run.Start, run.End, slots[run.First].Note); err != nil {
			return fmt.Errorf("merge availability for coach %d: %w", coachID, err)
		}
	}

	metrics.RecordMerge()
	return nil
}
