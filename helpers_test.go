package statechart

import (
	"slices"
	"testing"
)

// trace is the context used by most engine tests: actions append labels so
// tests can assert exact execution order.
type trace struct {
	log   []string
	count int
}

func rec(label string) Action[trace] {
	return func(c *trace, _ Event) error {
		c.log = append(c.log, label)
		return nil
	}
}

func mustBuild[C any](t *testing.T, b *Builder[C]) *Descriptor[C] {
	t.Helper()
	d, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return d
}

func mustNew[C any](t *testing.T, d *Descriptor[C], ctx C, opts ...Option) *Machine[C] {
	t.Helper()
	m, err := New(d, ctx, opts...)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	return m
}

func mustSend[C any](t *testing.T, m *Machine[C], eventType string) bool {
	t.Helper()
	handled, err := m.Send(NewEvent(eventType, nil))
	if err != nil {
		t.Fatalf("send %q: %v", eventType, err)
	}
	return handled
}

func expectStates[C any](t *testing.T, m *Machine[C], want ...string) {
	t.Helper()
	got := m.StateNames()
	if !slices.Equal(got, want) {
		t.Errorf("active states = %v, want %v", got, want)
	}
}

func expectLog(t *testing.T, got []string, want ...string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("log = %q, want %q", got, want)
	}
}

// toggleChart is the two-state StateA/StateB machine.
func toggleChart(t *testing.T) *Descriptor[trace] {
	t.Helper()
	b := NewBuilder[trace]("toggle", "StateA")
	b.State("StateA").On("Toggle", "StateB", nil, nil)
	b.State("StateB").On("Toggle", "StateA", nil, nil)
	return mustBuild(t, b)
}

// regionsChart has a parallel root with regions A and B.
func regionsChart(t *testing.T) *Descriptor[trace] {
	t.Helper()
	b := NewBuilder[trace]("regions", "").ParallelRoot()
	b.Compound("A", "A1")
	b.State("A.A1").On("a", "A2", nil, rec("a1->a2"))
	b.State("A.A2").On("a", "A1", nil, rec("a2->a1"))
	b.Compound("B", "B1")
	b.State("B.B1").On("b", "B2", nil, rec("b1->b2"))
	b.State("B.B2").On("b", "B1", nil, rec("b2->b1"))
	return mustBuild(t, b)
}
