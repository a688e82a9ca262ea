package memory

import (
	"context"
	"time"

	"github.com/maravaman/intent-orchestra-nexus/logger"
)

// Sweeper periodically prunes expired short-term entries so reads never
// need to re-check expiry themselves. It is optional: Append already prunes
// per user on write, the sweeper just reclaims space for idle users.
type Sweeper struct {
	store    Store
	interval time.Duration
	log      *logger.Logger
}

// NewSweeper creates a Sweeper. A zero interval defaults to one hour.
func NewSweeper(store Store, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Sweeper{store: store, interval: interval, log: log}
}

// Start runs the sweep loop until ctx is canceled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.store.Prune(ctx)
				if err != nil {
					s.log.Warn("memory sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					s.log.Debug("memory sweep", "removed", removed)
				}
			}
		}
	}()
}
