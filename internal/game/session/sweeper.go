package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically reclaims sessions that were abandoned without an
// explicit leave.
//
// Invariant: Registry.Sweep runs at most once per interval.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper returns a sweeper for registry firing every interval.
//
// Precondition: registry must be non-nil; interval must be > 0.
func NewSweeper(registry *Registry, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		panic("session.NewSweeper: interval must be > 0")
	}
	return &Sweeper{registry: registry, interval: interval, logger: logger}
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.registry.Sweep(); n > 0 {
				s.logger.Info("swept sessions",
					zap.Int("removed", n),
					zap.Int("remaining", s.registry.Count()),
				)
			}
		}
	}
}
