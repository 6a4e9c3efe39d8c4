package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comalice/statechart"
)

type counter struct {
	toggles int
}

func toggleMachine(t *testing.T) *statechart.Machine[counter] {
	t.Helper()
	count := func(c *counter, _ statechart.Event) error {
		c.toggles++
		return nil
	}
	b := statechart.NewBuilder[counter]("toggle", "StateA")
	b.State("StateA").On("Toggle", "StateB", nil, count)
	b.State("StateB").On("Toggle", "StateA", nil, count)
	b.State("StateB").On("Explode", "StateA", nil, func(*counter, statechart.Event) error {
		panic("kaboom")
	})
	d, err := b.Build()
	require.NoError(t, err)
	m, err := statechart.New(d, counter{})
	require.NoError(t, err)
	return m
}

// recorder collects events and can be told to fail on one of them.
type recorder struct {
	mu     sync.Mutex
	events []string
	failOn string
}

func (r *recorder) Handle(_ context.Context, evt string) error {
	if evt == r.failOn {
		return errBoom
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	return nil
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeMetrics struct {
	mu      sync.Mutex
	started []string
	stopped []string
	handled int
}

func (f *fakeMetrics) ActorStarted(name string) {
	f.mu.Lock()
	f.started = append(f.started, name)
	f.mu.Unlock()
}

func (f *fakeMetrics) ActorStopped(name string, _ error) {
	f.mu.Lock()
	f.stopped = append(f.stopped, name)
	f.mu.Unlock()
}

func (f *fakeMetrics) EventHandled(string, time.Duration, error) {
	f.mu.Lock()
	f.handled++
	f.mu.Unlock()
}

func waitDone(t *testing.T, fn func() error) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
		return nil
	}
}
