package actor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/comalice/statechart/mailbox"
)

// FaultPolicy decides what a System does when an actor faults.
type FaultPolicy int

const (
	// Isolate logs the fault and keeps the other actors running.
	Isolate FaultPolicy = iota
	// Escalate stops every actor and reports the fault from Wait.
	Escalate
)

func (p FaultPolicy) String() string {
	if p == Escalate {
		return "escalate"
	}
	return "isolate"
}

// ErrSystemStopped is returned by Spawn once the system is shutting down.
var ErrSystemStopped = errors.New("actor: system stopped")

// Metrics receives actor lifecycle and throughput notifications. The
// metrics package provides a Prometheus implementation.
type Metrics interface {
	ActorStarted(name string)
	ActorStopped(name string, err error)
	EventHandled(name string, d time.Duration, err error)
}

// ActorInfo describes a running actor.
type ActorInfo struct {
	Name      string `json:"name"`
	Processed uint64 `json:"processed"`
	Queued    int    `json:"queued"`
	Capacity  int    `json:"capacity"`
}

// System is the asynchronous runtime adapter: every spawned actor runs its
// drive loop on its own goroutine.
type System struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	gctx   context.Context

	policy  FaultPolicy
	logger  *slog.Logger
	metrics Metrics

	mu     sync.Mutex
	actors map[string]func() ActorInfo
	faults []error
}

// SystemOption configures a System.
type SystemOption func(*System)

// WithLogger sets the system logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) SystemOption {
	return func(s *System) {
		s.logger = logger
	}
}

// WithFaultPolicy sets the fault policy. The default is Isolate.
func WithFaultPolicy(p FaultPolicy) SystemOption {
	return func(s *System) {
		s.policy = p
	}
}

// WithMetrics reports actor activity to m.
func WithMetrics(m Metrics) SystemOption {
	return func(s *System) {
		s.metrics = m
	}
}

// NewSystem creates a system whose actors stop when ctx ends.
func NewSystem(ctx context.Context, opts ...SystemOption) *System {
	ctx, cancel := context.WithCancel(ctx)
	s := &System{
		ctx:    ctx,
		cancel: cancel,
		logger: slog.Default(),
		actors: make(map[string]func() ActorInfo),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.group, s.gctx = errgroup.WithContext(ctx)
	return s
}

// SpawnOption configures a spawned actor.
type SpawnOption func(*spawnOptions)

type spawnOptions struct {
	name string
}

// WithName names the actor. Unnamed actors get a random UUID.
func WithName(name string) SpawnOption {
	return func(o *spawnOptions) {
		o.name = name
	}
}

// Spawn creates a mailbox of the given capacity and starts an actor
// draining it into h. It returns the only Address to the mailbox; the actor
// winds down after that Address and all its clones are closed and the
// queue has drained.
func Spawn[E any](s *System, h Handler[E], capacity int, opts ...SpawnOption) (*mailbox.Address[E], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("actor: capacity must be positive, got %d", capacity)
	}
	var o spawnOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gctx.Err() != nil {
		return nil, ErrSystemStopped
	}
	if _, dup := s.actors[o.name]; dup {
		return nil, fmt.Errorf("actor: %q already exists", o.name)
	}

	mb, addr := mailbox.New[E](capacity)
	var handler Handler[E] = h
	if s.metrics != nil {
		handler = timed[E]{name: o.name, h: h, m: s.metrics}
	}
	a := New(o.name, mb, handler)
	s.actors[o.name] = func() ActorInfo {
		return ActorInfo{
			Name:      a.Name(),
			Processed: a.Processed(),
			Queued:    mb.Len(),
			Capacity:  mb.Cap(),
		}
	}

	s.logger.Debug("spawned actor", "actor", o.name, "capacity", capacity)
	if s.metrics != nil {
		s.metrics.ActorStarted(o.name)
	}
	s.group.Go(func() error {
		return s.supervise(a.Name(), a.Run(s.gctx))
	})
	return addr, nil
}

// supervise applies the fault policy to an actor's exit.
func (s *System) supervise(name string, err error) error {
	s.mu.Lock()
	delete(s.actors, name)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.ActorStopped(name, err)
	}

	var fault *FaultError
	if !errors.As(err, &fault) {
		s.logger.Debug("actor stopped", "actor", name, "err", err)
		return nil
	}

	s.mu.Lock()
	s.faults = append(s.faults, fault)
	s.mu.Unlock()
	s.logger.Error("actor faulted",
		"actor", name,
		"err", fault.Cause,
		"policy", s.policy.String(),
	)
	if s.policy == Escalate {
		return fault
	}
	return nil
}

// Actors returns a snapshot of the running actors sorted by name.
func (s *System) Actors() []ActorInfo {
	s.mu.Lock()
	infos := make([]ActorInfo, 0, len(s.actors))
	for _, info := range s.actors {
		infos = append(infos, info())
	}
	s.mu.Unlock()
	slices.SortFunc(infos, func(a, b ActorInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return infos
}

// Faults returns every fault observed so far, in order.
func (s *System) Faults() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.faults)
}

// Wait blocks until every actor has stopped. Under Escalate it returns the
// first fault.
func (s *System) Wait() error {
	err := s.group.Wait()
	s.cancel()
	return err
}

// Shutdown stops every actor after its current event and waits for them.
// Queued events are discarded.
func (s *System) Shutdown() error {
	s.cancel()
	return s.Wait()
}

// timed reports handler latency to a Metrics sink.
type timed[E any] struct {
	name string
	h    Handler[E]
	m    Metrics
}

func (t timed[E]) Handle(ctx context.Context, evt E) error {
	start := time.Now()
	err := t.h.Handle(ctx, evt)
	t.m.EventHandled(t.name, time.Since(start), err)
	return err
}
