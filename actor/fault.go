package actor

import (
	"context"
	"fmt"
	"runtime/debug"
)

// FaultError reports a handler failure that ended an actor.
type FaultError struct {
	Actor string
	Event any
	Cause error
	// Stack is set when the handler panicked.
	Stack []byte
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("actor %s: fault handling %v: %v", e.Actor, e.Event, e.Cause)
}

func (e *FaultError) Unwrap() error {
	return e.Cause
}

// PanicError is the Cause of a FaultError raised by a panicking handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Invoke runs h on evt and converts an error or panic into a *FaultError
// naming the actor. It is the single place both drive modes call into
// handler code.
func Invoke[E any, H Handler[E]](ctx context.Context, name string, h H, evt E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FaultError{
				Actor: name,
				Event: evt,
				Cause: &PanicError{Value: r},
				Stack: debug.Stack(),
			}
		}
	}()
	if herr := h.Handle(ctx, evt); herr != nil {
		return &FaultError{Actor: name, Event: evt, Cause: herr}
	}
	return nil
}
