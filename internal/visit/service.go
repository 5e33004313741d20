package visit

import (
	"context"
	"errors"
	"time"

	"fitcoach/internal/db"
	"fitcoach/internal/interval"
	"fitcoach/internal/logger"
	"fitcoach/internal/metrics"

	"github.com/jmoiron/sqlx"
)

var ErrVisitsExhausted = errors.New("no visits left on the membership")

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Service interface {
	// CheckIn returns the recorded visit, or ErrNoActiveMembership or
	// ErrVisitsExhausted when the client may not enter.
	CheckIn(ctx context.Context, clientID int) (*Visit, error)
	// CheckInClient reports rejections as false instead of an error.
	CheckInClient(ctx context.Context, clientID int) (bool, error)
	GetRecentVisits(ctx context.Context, limit int) ([]Row, error)
	GetRecentVisitsForClient(ctx context.Context, filter string, limit int) ([]Row, error)
	CountVisitsForClient(ctx context.Context, clientID int) (int, error)
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

func (s *service) CheckIn(ctx context.Context, clientID int) (*Visit, error) {
	v, err := s.checkIn(ctx, clientID, s.now())
	switch {
	case err == nil:
		metrics.RecordCheckIn("admitted")
		logger.Info("client checked in", "client_id", clientID, "visit_id", v.ID)
		return v, nil
	case errors.Is(err, ErrNoActiveMembership):
		metrics.RecordCheckIn("no_membership")
	case errors.Is(err, ErrVisitsExhausted):
		metrics.RecordCheckIn("exhausted")
	default:
		metrics.RecordCheckIn("error")
	}
	return nil, err
}

// checkIn holds the membership row lock from the coverage check until the
// visit is spent, so concurrent check-ins cannot both take the last visit.
func (s *service) checkIn(ctx context.Context, clientID int, now time.Time) (*Visit, error) {
	var v *Visit
	err := s.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		m, err := repo.LockActiveMembership(ctx, clientID, interval.Day(now))
		if err != nil {
			return err
		}
		if m.IsVisitCounted() && (m.VisitsRemaining == nil || *m.VisitsRemaining <= 0) {
			return ErrVisitsExhausted
		}

		v, err = repo.InsertVisit(ctx, clientID, m.ID, now)
		if err != nil {
			return err
		}
		if m.IsVisitCounted() {
			return repo.SpendVisit(ctx, m.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) CheckInClient(ctx context.Context, clientID int) (bool, error) {
	_, err := s.CheckIn(ctx, clientID)
	if errors.Is(err, ErrNoActiveMembership) || errors.Is(err, ErrVisitsExhausted) {
		return false, nil
	}
	return err == nil, err
}

func (s *service) GetRecentVisits(ctx context.Context, limit int) ([]Row, error) {
	return s.repo.GetRecentVisits(ctx, clampLimit(limit))
}

func (s *service) GetRecentVisitsForClient(ctx context.Context, filter string, limit int) ([]Row, error) {
	if filter == "" {
		return s.GetRecentVisits(ctx, limit)
	}
	return s.repo.GetRecentVisitsForClient(ctx, filter, clampLimit(limit))
}

func (s *service) CountVisitsForClient(ctx context.Context, clientID int) (int, error) {
	return s.repo.CountVisitsForClient(ctx, clientID)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
