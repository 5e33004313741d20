package membership

import (
	"context"
	"errors"
	"time"

	"fitcoach/internal/interval"
)

type Service interface {
	GetRemainingVisits(ctx context.Context, clientID int) (*int, error)
	GetCurrentMembershipType(ctx context.Context, clientID int) (string, error)
	HasActiveMembership(ctx context.Context, clientID int) (bool, error)
	Summary(ctx context.Context, clientID int) (*Summary, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *service) today() time.Time {
	return interval.Day(interval.Naive(s.now()))
}

// GetRemainingVisits is nil when the client has no current membership or it
// is not visit-counted.
func (s *service) GetRemainingVisits(ctx context.Context, clientID int) (*int, error) {
	m, err := s.current(ctx, clientID)
	if err != nil || m == nil {
		return nil, err
	}
	return m.VisitsRemaining, nil
}

// GetCurrentMembershipType is empty when the client has no current membership.
func (s *service) GetCurrentMembershipType(ctx context.Context, clientID int) (string, error) {
	m, err := s.current(ctx, clientID)
	if err != nil || m == nil {
		return "", err
	}
	return m.Label(), nil
}

func (s *service) HasActiveMembership(ctx context.Context, clientID int) (bool, error) {
	return s.repo.HasActive(ctx, clientID, s.today())
}

func (s *service) Summary(ctx context.Context, clientID int) (*Summary, error) {
	summary := &Summary{ClientID: clientID}

	m, err := s.current(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if m != nil {
		summary.Label = m.Label()
		summary.VisitsRemaining = m.VisitsRemaining
	}

	summary.Active, err = s.HasActiveMembership(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *service) current(ctx context.Context, clientID int) (*Membership, error) {
	m, err := s.repo.Current(ctx, clientID, s.today())
	if errors.Is(err, ErrNoMembership) {
		return nil, nil
	}
	return m, err
}
