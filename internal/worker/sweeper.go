package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpirySweeper releases stale holds; the reservation service implements it.
type ExpirySweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Sweeper periodically expires holds whose TTL has run out. Reads already
// reconcile expired holds on the fly, so the sweep is a safety net for slots
// nobody asks about.
type Sweeper struct {
	svc      ExpirySweeper
	interval time.Duration
	logger   *zerolog.Logger
}

func NewSweeper(svc ExpirySweeper, interval time.Duration, logger *zerolog.Logger) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, logger: logger}
}

// Start runs the sweep loop until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("expiry sweeper started")
	defer s.logger.Info().Msg("expiry sweeper stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.svc.SweepExpired(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if n > 0 {
				s.logger.Info().Int("expired", n).Msg("expiry sweep released holds")
			}
		}
	}
}
