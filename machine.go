package statechart

import "slices"

// Configuration is a sorted set of active leaf states.
type Configuration []StateID

// Contains reports whether id is one of the active leaves.
func (c Configuration) Contains(id StateID) bool {
	_, ok := slices.BinarySearch(c, id)
	return ok
}

// Snapshot is a read-only, serializable view of a machine for
// introspection.
type Snapshot struct {
	Chart   string   `json:"chart" yaml:"chart"`
	Version string   `json:"version" yaml:"version"`
	States  []string `json:"states" yaml:"states"`
	Faulted bool     `json:"faulted,omitempty" yaml:"faulted,omitempty"`
}

// Option configures a Machine.
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver registers an observer notified after every Send.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// Machine owns one context value and one active configuration of a
// Descriptor.
//
// A Machine is not safe for concurrent use: exactly one goroutine may call
// Send, and the context may only be read or written by that goroutine. Wrap
// the machine in an actor to feed it from many producers.
type Machine[C any] struct {
	d        *Descriptor[C]
	ctx      C
	observer Observer

	// active holds every active state, ancestors included.
	active  []bool
	faulted bool
	busy    bool

	// Scratch space sized at construction so Send does not allocate.
	selected  []int
	domains   []StateID
	exitMark  []bool
	entryMark []bool
	exited    []StateID
	entered   []StateID
}

// New creates a machine and enters its initial configuration, running the
// entry actions of every state entered. An entry action failure is returned
// and no machine is created.
func New[C any](d *Descriptor[C], ctx C, opts ...Option) (*Machine[C], error) {
	if d == nil {
		return nil, ErrNilDescriptor
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	n := len(d.nodes)
	m := &Machine[C]{
		d:         d,
		ctx:       ctx,
		observer:  o.observer,
		active:    make([]bool, n),
		selected:  make([]int, 0, d.leaves),
		domains:   make([]StateID, 0, d.leaves),
		exitMark:  make([]bool, n),
		entryMark: make([]bool, n),
		exited:    make([]StateID, 0, n),
		entered:   make([]StateID, 0, n),
	}
	if err := m.start(); err != nil {
		return nil, err
	}
	return m, nil
}

// Descriptor returns the machine's descriptor.
func (m *Machine[C]) Descriptor() *Descriptor[C] {
	return m.d
}

// Send applies evt to the machine. It reports whether a rule fired; false
// means the event was ignored and nothing changed.
//
// An action error faults the machine and is returned as an *ActionError.
// A panic in an action or guard faults the machine and propagates. Once
// faulted, Send returns ErrFaulted. Calling Send from inside an action or
// guard of the same machine returns ErrReentrantSend and changes nothing.
func (m *Machine[C]) Send(evt Event) (bool, error) {
	if m.busy {
		return false, ErrReentrantSend
	}
	if m.faulted {
		return false, ErrFaulted
	}
	m.busy = true
	defer func() {
		if m.busy {
			m.busy = false
			m.faulted = true
		}
	}()

	handled, err := m.step(evt)
	m.busy = false
	if err != nil {
		m.faulted = true
	}
	return handled, err
}

// State returns a copy of the active leaves in ascending order.
func (m *Machine[C]) State() Configuration {
	return m.AppendState(make(Configuration, 0, m.d.leaves))
}

// AppendState appends the active leaves to dst. It does not allocate when
// dst has room for them.
func (m *Machine[C]) AppendState(dst Configuration) Configuration {
	for i, on := range m.active {
		if on && m.d.nodes[i].Kind == Leaf {
			dst = append(dst, StateID(i))
		}
	}
	return dst
}

// IsIn reports whether id is active. Ancestors of active leaves are active.
func (m *Machine[C]) IsIn(id StateID) bool {
	return id >= 0 && int(id) < len(m.active) && m.active[id]
}

// IsInName reports whether the named state is active.
func (m *Machine[C]) IsInName(name string) bool {
	id, ok := m.d.Lookup(name)
	return ok && m.active[id]
}

// StateNames returns the dotted names of the active leaves in document order.
func (m *Machine[C]) StateNames() []string {
	names := make([]string, 0, m.d.leaves)
	for i, on := range m.active {
		if on && m.d.nodes[i].Kind == Leaf {
			names = append(names, m.d.nodes[i].Name)
		}
	}
	return names
}

// Context returns the context for reading. Callers must not mutate through
// it; use ContextMut for that.
func (m *Machine[C]) Context() *C {
	return &m.ctx
}

// ContextMut returns the context for writing. It must only be used by the
// goroutine that drives the machine, and never while Send is running.
func (m *Machine[C]) ContextMut() *C {
	return &m.ctx
}

// Faulted reports whether an action or guard failed.
func (m *Machine[C]) Faulted() bool {
	return m.faulted
}

// Snapshot returns the active leaves by name together with the descriptor
// version.
func (m *Machine[C]) Snapshot() Snapshot {
	return Snapshot{
		Chart:   m.d.id,
		Version: m.d.version,
		States:  m.StateNames(),
		Faulted: m.faulted,
	}
}
