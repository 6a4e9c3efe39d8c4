package httpapi

import (
	"context"
	"sync/atomic"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/actor"
)

// Tracker is an actor handler that drives a machine and republishes its
// snapshot after every event, so HTTP readers never touch the machine.
type Tracker[C any] struct {
	inner *actor.MachineHandler[C]
	snap  atomic.Pointer[statechart.Snapshot]
}

// NewTracker wraps m. m must not be used directly afterwards.
func NewTracker[C any](m *statechart.Machine[C]) *Tracker[C] {
	t := &Tracker[C]{inner: actor.NewMachineHandler(m)}
	t.publish()
	return t
}

// Handle implements actor.Handler.
func (t *Tracker[C]) Handle(ctx context.Context, evt statechart.Event) error {
	err := t.inner.Handle(ctx, evt)
	t.publish()
	return err
}

// Snapshot returns the state after the most recent event.
func (t *Tracker[C]) Snapshot() statechart.Snapshot {
	return *t.snap.Load()
}

// Table returns the machine's descriptor table.
func (t *Tracker[C]) Table() statechart.Table {
	return t.inner.Machine().Descriptor().Table()
}

func (t *Tracker[C]) publish() {
	s := t.inner.Machine().Snapshot()
	t.snap.Store(&s)
}
