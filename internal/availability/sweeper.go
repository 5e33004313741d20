package availability

import (
	"context"
	"time"

	"fitcoach/internal/logger"
)

// Sweeper periodically removes slots that have already ended, so stale
// windows disappear even for coaches nobody is looking at.
type Sweeper struct {
	service  Service
	interval time.Duration
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval}
}

// Start blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	logger.Info("Availability sweeper started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Availability sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.service.DeleteExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("Failed to delete expired availability", "error", err)
		}
		return
	}
	if removed > 0 {
		logger.Debug("Deleted expired availability", "removed", removed)
	}
}
