package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/actor"
	"github.com/comalice/statechart/mailbox"
	"github.com/comalice/statechart/realtime"
)

// ErrNotStable is returned by WaitForStability when queued events are still
// pending at the deadline.
var ErrNotStable = errors.New("testutil: machine did not settle")

// RuntimeAdapter provides a common interface for both the async and the
// cooperative runtime. This allows running the same test suite on both.
type RuntimeAdapter interface {
	Start(ctx context.Context) error
	Stop() error
	SendEvent(evt statechart.Event) error
	// WaitForStability returns once every sent event has been handled, or
	// the first actor fault.
	WaitForStability(timeout time.Duration) error
	IsInState(name string) bool
	StateNames() []string
}

const mailboxCapacity = 16

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// AsyncAdapter runs the machine as an actor of an actor.System.
type AsyncAdapter[C any] struct {
	h    *actor.MachineHandler[C]
	sys  *actor.System
	addr *mailbox.Address[statechart.Event]
	sent atomic.Uint64
}

// NewAsyncAdapter creates a new adapter for the async runtime.
func NewAsyncAdapter[C any](m *statechart.Machine[C]) *AsyncAdapter[C] {
	return &AsyncAdapter[C]{h: actor.NewMachineHandler(m)}
}

func (a *AsyncAdapter[C]) Start(ctx context.Context) error {
	a.sys = actor.NewSystem(ctx, actor.WithLogger(discard))
	addr, err := actor.Spawn[statechart.Event](a.sys, a.h, mailboxCapacity, actor.WithName("machine"))
	if err != nil {
		return err
	}
	a.addr = addr
	return nil
}

func (a *AsyncAdapter[C]) Stop() error {
	a.addr.Close()
	return a.sys.Wait()
}

func (a *AsyncAdapter[C]) SendEvent(evt statechart.Event) error {
	if err := a.addr.Send(context.Background(), evt); err != nil {
		return err
	}
	a.sent.Add(1)
	return nil
}

func (a *AsyncAdapter[C]) WaitForStability(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if faults := a.sys.Faults(); len(faults) > 0 {
			return faults[0]
		}
		if a.h.Handled()+a.h.Ignored() == a.sent.Load() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %v", ErrNotStable, timeout)
		}
		time.Sleep(time.Millisecond)
	}
}

// IsInState must only be called after WaitForStability returned nil.
func (a *AsyncAdapter[C]) IsInState(name string) bool {
	return a.h.Machine().IsInName(name)
}

func (a *AsyncAdapter[C]) StateNames() []string {
	return a.h.Machine().StateNames()
}

// RealtimeAdapter runs the machine in a realtime.Scheduler. Events are
// handled when WaitForStability polls.
type RealtimeAdapter[C any] struct {
	h     *actor.MachineHandler[C]
	sched *realtime.Scheduler
	addr  *mailbox.Address[statechart.Event]
}

// NewRealtimeAdapter creates a new adapter for the cooperative runtime.
func NewRealtimeAdapter[C any](m *statechart.Machine[C]) *RealtimeAdapter[C] {
	return &RealtimeAdapter[C]{h: actor.NewMachineHandler(m)}
}

func (a *RealtimeAdapter[C]) Start(context.Context) error {
	a.sched = realtime.NewScheduler(realtime.Config{MaxActors: 1, Logger: discard})
	addr, err := realtime.Spawn[statechart.Event](a.sched, a.h, mailboxCapacity, "machine")
	if err != nil {
		return err
	}
	a.addr = addr
	return nil
}

func (a *RealtimeAdapter[C]) Stop() error {
	a.addr.Close()
	return a.sched.RunUntilIdle()
}

func (a *RealtimeAdapter[C]) SendEvent(evt statechart.Event) error {
	return a.addr.Send(context.Background(), evt)
}

func (a *RealtimeAdapter[C]) WaitForStability(time.Duration) error {
	return a.sched.RunUntilIdle()
}

func (a *RealtimeAdapter[C]) IsInState(name string) bool {
	return a.h.Machine().IsInName(name)
}

func (a *RealtimeAdapter[C]) StateNames() []string {
	return a.h.Machine().StateNames()
}
