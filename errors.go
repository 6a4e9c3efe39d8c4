package statechart

import (
	"errors"
	"fmt"
)

// Construction diagnostics. Every structural problem found while compiling a
// chart is reported as a *ConstructionError whose Code is one of these.
var (
	ErrEmptyChart         = errors.New("chart has no states")
	ErrInvalidState       = errors.New("invalid state declaration")
	ErrDuplicateState     = errors.New("duplicate state")
	ErrTooFewRegions      = errors.New("parallel state requires ≥2 regions")
	ErrMissingInitial     = errors.New("compound state requires explicit initial child")
	ErrInvalidInitial     = errors.New("initial state is not a child")
	ErrLeafInitial        = errors.New("leaf state cannot declare an initial child")
	ErrUnknownTarget      = errors.New("unknown target state")
	ErrConflictingTargets = errors.New("targets are not in distinct regions of a parallel state")
	ErrEmptyEvent         = errors.New("transition requires an event")
	ErrUnknownAction      = errors.New("unknown action")
	ErrUnknownGuard       = errors.New("unknown guard")
)

var (
	// ErrFaulted is returned by Send once an action or guard has failed.
	// A faulted machine must be discarded.
	ErrFaulted = errors.New("machine faulted")
	// ErrReentrantSend is returned by Send when called from an action or
	// guard of the machine it targets. Feed follow-up events through the
	// machine's actor instead.
	ErrReentrantSend = errors.New("send called from inside a transition")
	// ErrNilDescriptor is returned by New when no descriptor is given.
	ErrNilDescriptor = errors.New("nil descriptor")
)

// ConstructionError is a structural diagnostic produced while compiling a
// chart. It matches its Code with errors.Is.
type ConstructionError struct {
	State  string // dotted name of the offending state, empty for chart-level problems
	Code   error
	Detail string
}

func (e *ConstructionError) Error() string {
	msg := e.Code.Error()
	if e.State != "" {
		msg = fmt.Sprintf("state %q: %s", e.State, msg)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConstructionError) Unwrap() error {
	return e.Code
}

// Phase names the step of a transition in which an action ran.
type Phase string

const (
	PhaseExit       Phase = "exit"
	PhaseTransition Phase = "transition"
	PhaseEntry      Phase = "entry"
)

// ActionError reports an action that returned an error. The machine that
// produced it is faulted.
type ActionError struct {
	State string
	Phase Phase
	Event string
	Err   error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s action of %q on event %q: %v", e.Phase, e.State, e.Event, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
