package actor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/comalice/statechart/mailbox"
)

// Ticker delivers the same event to an actor at a fixed interval.
type Ticker struct {
	stop    context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
	dropped uint64
}

// Every sends evt to addr every d using TrySend until ctx ends, Stop is
// called, or the mailbox closes. Ticks that find the mailbox full are
// dropped and counted. The ticker holds its own clone of addr, so the actor
// keeps running while the ticker does.
func Every[E any](ctx context.Context, addr *mailbox.Address[E], evt E, d time.Duration) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{stop: cancel, done: make(chan struct{})}
	own := addr.Clone()

	go func() {
		defer close(t.done)
		defer own.Close()
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				err := own.TrySend(evt)
				switch {
				case errors.Is(err, mailbox.ErrFull):
					t.mu.Lock()
					t.dropped++
					t.mu.Unlock()
				case err != nil:
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return t
}

// Stop stops the ticker and releases its Address. It waits for the ticker
// goroutine to exit.
func (t *Ticker) Stop() {
	t.stop()
	<-t.done
}

// Dropped returns how many ticks were discarded on backpressure.
func (t *Ticker) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}
