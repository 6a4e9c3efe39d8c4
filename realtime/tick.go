package realtime

import (
	"context"
	"time"
)

// Run drives the scheduler from a fixed-rate ticker. Each tick polls until
// idle, then advances the tick number. Run returns nil once every actor has
// wound down, the first actor fault, or the context's error.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickRate)
	defer ticker.Stop()

	s.ctx = ctx
	defer func() { s.ctx = context.Background() }()

	for {
		if err := s.processTick(); err != nil {
			s.logger.Error("actor fault", "tick", s.tickNum, "err", err)
			return err
		}
		if s.Live() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// processTick processes one complete tick.
func (s *Scheduler) processTick() error {
	err := s.RunUntilIdle()
	s.tickNum++
	return err
}
