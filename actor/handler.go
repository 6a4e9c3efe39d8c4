package actor

import (
	"context"
	"sync/atomic"

	"github.com/comalice/statechart"
)

// Handler processes one event to completion. A returned error is fatal to
// the actor.
type Handler[E any] interface {
	Handle(ctx context.Context, evt E) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc[E any] func(ctx context.Context, evt E) error

// Handle implements Handler.
func (f HandlerFunc[E]) Handle(ctx context.Context, evt E) error {
	return f(ctx, evt)
}

// MachineHandler feeds events to a statechart machine. Ignored events are
// counted, not treated as errors.
type MachineHandler[C any] struct {
	m       *statechart.Machine[C]
	handled atomic.Uint64
	ignored atomic.Uint64
}

// NewMachineHandler wraps m. The machine must not be used directly once the
// handler is attached to a running actor.
func NewMachineHandler[C any](m *statechart.Machine[C]) *MachineHandler[C] {
	return &MachineHandler[C]{m: m}
}

// Handle implements Handler.
func (h *MachineHandler[C]) Handle(_ context.Context, evt statechart.Event) error {
	handled, err := h.m.Send(evt)
	if err != nil {
		return err
	}
	if handled {
		h.handled.Add(1)
	} else {
		h.ignored.Add(1)
	}
	return nil
}

// Machine returns the wrapped machine.
func (h *MachineHandler[C]) Machine() *statechart.Machine[C] {
	return h.m
}

// Handled returns how many events caused a transition.
func (h *MachineHandler[C]) Handled() uint64 {
	return h.handled.Load()
}

// Ignored returns how many events matched no rule.
func (h *MachineHandler[C]) Ignored() uint64 {
	return h.ignored.Load()
}
