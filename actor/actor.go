package actor

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/comalice/statechart/mailbox"
)

// Actor drives one Handler from one Mailbox.
type Actor[E any] struct {
	name      string
	mb        *mailbox.Mailbox[E]
	h         Handler[E]
	processed atomic.Uint64
}

// New creates an actor consuming mb. The actor becomes the mailbox's only
// consumer.
func New[E any](name string, mb *mailbox.Mailbox[E], h Handler[E]) *Actor[E] {
	return &Actor[E]{name: name, mb: mb, h: h}
}

// Name returns the actor's name.
func (a *Actor[E]) Name() string {
	return a.name
}

// Mailbox returns the consuming end of the actor's mailbox.
func (a *Actor[E]) Mailbox() *mailbox.Mailbox[E] {
	return a.mb
}

// Processed returns how many events the handler has completed.
func (a *Actor[E]) Processed() uint64 {
	return a.processed.Load()
}

// Run handles events until every Address is released and the queue has
// drained, in which case it returns nil. A fault closes the mailbox and is
// returned as a *FaultError. If ctx ends first, the mailbox is closed and
// the context's error is returned; an event already being handled is
// always finished.
func (a *Actor[E]) Run(ctx context.Context) error {
	for {
		evt, err := a.mb.Receive(ctx)
		if errors.Is(err, mailbox.ErrClosed) {
			return nil
		}
		if err != nil {
			a.mb.Close()
			return err
		}
		if err := a.deliver(ctx, evt); err != nil {
			return err
		}
	}
}

// Step handles at most one queued event without waiting. It reports
// whether an event was handled. It returns mailbox.ErrClosed once the actor
// has wound down, and a *FaultError if the handler failed.
func (a *Actor[E]) Step(ctx context.Context) (bool, error) {
	evt, err := a.mb.TryReceive()
	if errors.Is(err, mailbox.ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := a.deliver(ctx, evt); err != nil {
		return true, err
	}
	return true, nil
}

func (a *Actor[E]) deliver(ctx context.Context, evt E) error {
	if err := Invoke(ctx, a.name, a.h, evt); err != nil {
		a.mb.Close()
		return err
	}
	a.processed.Add(1)
	return nil
}
