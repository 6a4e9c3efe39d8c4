package statechart

import (
	"testing"
)

// Conformance cases adapted from the W3C SCXML test suite. Tests that
// depend on raised events or eventless transitions are expressed as
// explicit Send sequences.

func TestSCXML147(t *testing.T) {
	// First matching rule in document order wins, wildcard included.
	b := NewBuilder[trace]("test147", "s0")
	b.State("s0").
		On("bar", "pass", nil, nil).
		On("*", "fail", nil, nil)
	b.State("pass")
	b.State("fail")
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "bar")
	expectStates(t, m, "pass")
}

func TestSCXML403a(t *testing.T) {
	// Child transitions take precedence over the parent, document order
	// breaks ties, and the parent fires when no child rule is enabled.
	b := NewBuilder[trace]("test403a", "s0")
	b.Compound("s0", "s01").
		On("event1", "fail", nil, nil).
		On("event2", "pass", nil, nil)
	b.State("s0.s01").
		On("event1", "s02", nil, nil).
		On("*", "fail", nil, nil)
	b.State("s0.s02").
		On("event1", "fail", nil, nil).
		On("event2", "fail", func(*trace, Event) bool { return false }, nil)
	b.State("pass")
	b.State("fail")
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "event1")
	expectStates(t, m, "s0.s02")
	mustSend(t, m, "event2")
	expectStates(t, m, "pass")
}

func TestSCXML403c(t *testing.T) {
	// A rule from a descendant source preempts an earlier-selected rule
	// whose exit set it overlaps.
	b := NewBuilder[trace]("test403c", "p")
	b.Parallel("p").On("event1", "fail", nil, rec("p"))
	b.Compound("p.r1", "a")
	b.State("p.r1.a")
	b.Compound("p.r2", "b")
	b.State("p.r2.b").On("event1", "b2", nil, rec("b"))
	b.State("p.r2.b2")
	b.State("fail")
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "event1")
	expectStates(t, m, "p.r1.a", "p.r2.b2")
	expectLog(t, m.Context().log, "b")
}

func TestEarlierSelectionPreemptsSibling(t *testing.T) {
	// Rules from unrelated sources conflict when their exit sets overlap;
	// the one selected first, in document order, wins.
	b := NewBuilder[trace]("preempt", "p")
	b.Parallel("p")
	b.Compound("p.r1", "a")
	b.State("p.r1.a").On("go", "out", nil, rec("leave"))
	b.Compound("p.r2", "b")
	b.State("p.r2.b").On("go", "b2", nil, rec("stay"))
	b.State("p.r2.b2")
	b.State("out")
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "go")
	expectStates(t, m, "out")
	expectLog(t, m.Context().log, "leave")
}

func TestSCXML404(t *testing.T) {
	// States exit in reverse document order, then transition content runs.
	b := NewBuilder[trace]("test404", "s0")
	b.Compound("s0", "s01p")
	b.Parallel("s0.s01p").
		Exit(rec("exit s01p")).
		On("event1", "s02", nil, rec("transition"))
	b.State("s0.s01p.s01p1").Exit(rec("exit s01p1"))
	b.State("s0.s01p.s01p2").Exit(rec("exit s01p2"))
	b.State("s0.s02").Entry(rec("enter s02"))
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "event1")
	expectLog(t, m.Context().log, "exit s01p2", "exit s01p1", "exit s01p", "transition", "enter s02")
	expectStates(t, m, "s0.s02")
}

func TestSCXML405(t *testing.T) {
	// With several rules enabled, all exits run before any transition
	// content, which runs in selection order.
	b := NewBuilder[trace]("test405", "s0")
	b.Parallel("s0")
	b.Compound("s0.s01", "s011")
	b.State("s0.s01.s011").Exit(rec("exit s011")).On("event1", "s012", nil, rec("t1"))
	b.State("s0.s01.s012").Entry(rec("enter s012"))
	b.Compound("s0.s02", "s021")
	b.State("s0.s02.s021").Exit(rec("exit s021")).On("event1", "s022", nil, rec("t2"))
	b.State("s0.s02.s022").Entry(rec("enter s022"))
	m := mustNew(t, mustBuild(t, b), trace{})
	m.ContextMut().log = nil

	mustSend(t, m, "event1")
	expectLog(t, m.Context().log,
		"exit s021", "exit s011", "t1", "t2", "enter s012", "enter s022")
	expectStates(t, m, "s0.s01.s012", "s0.s02.s022")
}

func TestSCXML406(t *testing.T) {
	// Entering a parallel state enters every region in document order.
	b := NewBuilder[trace]("test406", "s0")
	b.State("s0").On("event1", "s1", nil, rec("transition"))
	b.Parallel("s1").Entry(rec("enter s1"))
	b.Compound("s1.r1", "a").Entry(rec("enter r1"))
	b.State("s1.r1.a").Entry(rec("enter r1.a"))
	b.State("s1.r1.b")
	b.Compound("s1.r2", "c").Entry(rec("enter r2"))
	b.State("s1.r2.c").Entry(rec("enter r2.c"))
	b.State("s1.r2.d")
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "event1")
	expectLog(t, m.Context().log,
		"transition", "enter s1", "enter r1", "enter r1.a", "enter r2", "enter r2.c")
	expectStates(t, m, "s1.r1.a", "s1.r2.c")
}

func TestSCXML505(t *testing.T) {
	// An internal rule targeting a descendant does not exit its source;
	// an external one does.
	b := NewBuilder[trace]("test505", "s1")
	b.Compound("s1", "s11").
		Exit(rec("exit s1")).
		OnInternal("foo", "s11", nil, rec("foo")).
		On("bar", "s11", nil, rec("bar"))
	b.State("s1.s11").Exit(rec("exit s11"))
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "foo")
	expectLog(t, m.Context().log, "exit s11", "foo")

	m.ContextMut().log = nil
	mustSend(t, m, "bar")
	expectLog(t, m.Context().log, "exit s11", "exit s1", "bar")
	expectStates(t, m, "s1.s11")
}

func TestSCXML533(t *testing.T) {
	// An internal rule on a parallel source behaves as external.
	b := NewBuilder[trace]("test533", "p")
	b.Parallel("p").
		Exit(rec("exit p")).
		OnInternal("go", "p.r1.x2", nil, nil)
	b.Compound("p.r1", "x1")
	b.State("p.r1.x1")
	b.State("p.r1.x2")
	b.State("p.r2")
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "go")
	expectLog(t, m.Context().log, "exit p")
	expectStates(t, m, "p.r1.x2", "p.r2")
}

func TestSelfTransitionExitsAndReenters(t *testing.T) {
	b := NewBuilder[trace]("self", "s")
	b.State("s").
		Entry(rec("enter s")).
		Exit(rec("exit s")).
		On("again", "s", nil, rec("again"))
	m := mustNew(t, mustBuild(t, b), trace{})
	m.ContextMut().log = nil

	mustSend(t, m, "again")
	expectLog(t, m.Context().log, "exit s", "again", "enter s")
}

func TestTransitionAcrossRegionsReentersParallel(t *testing.T) {
	b := NewBuilder[trace]("cross", "p")
	b.Parallel("p").Exit(rec("exit p")).Entry(rec("enter p"))
	b.Compound("p.a", "a1")
	b.State("p.a.a1").On("jump", "p.b.b2", nil, nil)
	b.State("p.a.a2")
	b.Compound("p.b", "b1")
	b.State("p.b.b1")
	b.State("p.b.b2")
	m := mustNew(t, mustBuild(t, b), trace{})

	m.ContextMut().log = nil
	mustSend(t, m, "jump")
	expectLog(t, m.Context().log, "exit p", "enter p")
	expectStates(t, m, "p.a.a1", "p.b.b2")
}

func TestMultiTargetEntersEachRegion(t *testing.T) {
	b := NewBuilder[trace]("multi", "idle")
	b.State("idle").OnTargets("start", []string{"p.a.a2", "p.b.b2"}, nil, nil)
	b.Parallel("p")
	b.Compound("p.a", "a1")
	b.State("p.a.a1")
	b.State("p.a.a2")
	b.Compound("p.b", "b1")
	b.State("p.b.b1")
	b.State("p.b.b2")
	b.State("p.c")
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "start")
	expectStates(t, m, "p.a.a2", "p.b.b2", "p.c")
}

func TestEventDescriptorPrefixes(t *testing.T) {
	b := NewBuilder[trace]("prefix", "s")
	b.State("s").
		On("error.io", "io", nil, nil).
		On("error.*", "generic", nil, nil)
	b.State("io").On("reset", "s", nil, nil)
	b.State("generic").On("reset", "s", nil, nil)
	m := mustNew(t, mustBuild(t, b), trace{})

	mustSend(t, m, "error.io.disk")
	expectStates(t, m, "io")
	mustSend(t, m, "reset")
	mustSend(t, m, "error.net")
	expectStates(t, m, "generic")
	mustSend(t, m, "reset")
	if mustSend(t, m, "errors") {
		t.Error("\"errors\" must not match the error prefix")
	}
}
