package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/actor"
	"github.com/comalice/statechart/mailbox"
)

var errBoom = errors.New("boom")

func quietConfig(cfg Config) Config {
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func toggleMachine(t *testing.T) *statechart.Machine[int] {
	t.Helper()
	b := statechart.NewBuilder[int]("toggle", "StateA")
	b.State("StateA").On("Toggle", "StateB", nil, nil)
	b.State("StateB").On("Toggle", "StateA", nil, nil)
	d, err := b.Build()
	require.NoError(t, err)
	m, err := statechart.New(d, 0)
	require.NoError(t, err)
	return m
}

// tally counts events and fails on one of them.
type tally struct {
	seen   []string
	failOn string
	panics bool
}

func (t *tally) Handle(_ context.Context, evt string) error {
	if evt == t.failOn {
		if t.panics {
			panic("kaboom")
		}
		return errBoom
	}
	t.seen = append(t.seen, evt)
	return nil
}

// forwarder relays every event to another actor with a cooperative Send,
// repeated times times.
type forwarder struct {
	to    *mailbox.Address[string]
	times int
	errs  []error
}

func (f *forwarder) Handle(ctx context.Context, evt string) error {
	for range max(f.times, 1) {
		if err := f.to.Send(ctx, evt); err != nil {
			f.errs = append(f.errs, err)
		}
	}
	return nil
}

func TestSchedulerRunsMachine(t *testing.T) {
	s := NewScheduler(quietConfig(Config{}))
	h := actor.NewMachineHandler(toggleMachine(t))
	addr, err := Spawn[statechart.Event](s, h, 4, "toggle")
	require.NoError(t, err)
	defer addr.Close()

	for range 3 {
		require.NoError(t, addr.TrySend(statechart.NewEvent("Toggle", nil)))
	}
	require.NoError(t, s.RunUntilIdle())

	assert.Equal(t, []string{"StateB"}, h.Machine().StateNames())
	assert.Equal(t, uint64(3), h.Handled())
	infos := s.Actors()
	require.Len(t, infos, 1)
	assert.Equal(t, actor.ActorInfo{Name: "toggle", Processed: 3, Queued: 0, Capacity: 4}, infos[0])
}

func TestPollBudget(t *testing.T) {
	s := NewScheduler(quietConfig(Config{MaxEventsPerPoll: 2}))
	first, second := &tally{}, &tally{}
	a, err := Spawn[string](s, first, 8, "first")
	require.NoError(t, err)
	defer a.Close()
	b, err := Spawn[string](s, second, 8, "second")
	require.NoError(t, err)
	defer b.Close()

	for _, evt := range []string{"1", "2", "3"} {
		require.NoError(t, a.TrySend(evt))
		require.NoError(t, b.TrySend(evt))
	}

	progress, err := s.Poll()
	require.NoError(t, err)
	assert.True(t, progress)
	assert.Equal(t, []string{"1", "2"}, first.seen)
	assert.Equal(t, []string{"1", "2"}, second.seen)

	progress, err = s.Poll()
	require.NoError(t, err)
	assert.True(t, progress)
	assert.Equal(t, []string{"1", "2", "3"}, first.seen)

	progress, err = s.Poll()
	require.NoError(t, err)
	assert.False(t, progress)
}

func TestFaultRetiresOnlyTheFailingActor(t *testing.T) {
	tests := []struct {
		name   string
		panics bool
	}{
		{name: "error"},
		{name: "panic", panics: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(quietConfig(Config{}))
			bad, good := &tally{failOn: "bad", panics: tt.panics}, &tally{}
			badAddr, err := Spawn[string](s, bad, 4, "bad")
			require.NoError(t, err)
			defer badAddr.Close()
			goodAddr, err := Spawn[string](s, good, 4, "good")
			require.NoError(t, err)
			defer goodAddr.Close()

			require.NoError(t, badAddr.TrySend("bad"))
			require.NoError(t, badAddr.TrySend("never"))
			require.NoError(t, goodAddr.TrySend("a"))
			require.NoError(t, goodAddr.TrySend("b"))

			err = s.RunUntilIdle()
			var fault *actor.FaultError
			require.ErrorAs(t, err, &fault)
			assert.Equal(t, "bad", fault.Actor)
			assert.Equal(t, "bad", fault.Event)
			if tt.panics {
				var pe *actor.PanicError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "kaboom", pe.Value)
				assert.NotEmpty(t, fault.Stack)
			} else {
				assert.ErrorIs(t, err, errBoom)
			}

			assert.ErrorIs(t, badAddr.TrySend("late"), mailbox.ErrClosed)
			assert.Equal(t, 1, s.Live())

			require.NoError(t, s.RunUntilIdle())
			assert.Equal(t, []string{"a", "b"}, good.seen)
			assert.Empty(t, bad.seen)
		})
	}
}

func TestSlotsAreFixedAndReused(t *testing.T) {
	s := NewScheduler(quietConfig(Config{MaxActors: 1}))
	addr, err := Spawn[string](s, &tally{}, 1, "")
	require.NoError(t, err)
	require.Len(t, s.Actors(), 1)
	assert.NotEmpty(t, s.Actors()[0].Name)

	_, err = Spawn[string](s, &tally{}, 1, "extra")
	require.ErrorIs(t, err, ErrNoSlots)

	addr.Close()
	_, err = s.Poll()
	require.NoError(t, err)
	assert.Equal(t, 0, s.Live())

	again, err := Spawn[string](s, &tally{}, 1, "again")
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, "again", s.Actors()[0].Name)
}

func TestSpawnRejectsBadCapacity(t *testing.T) {
	s := NewScheduler(quietConfig(Config{}))
	_, err := Spawn[string](s, &tally{}, 0, "zero")
	assert.Error(t, err)
}

func TestCooperativeSendYieldsToConsumer(t *testing.T) {
	s := NewScheduler(quietConfig(Config{}))
	fwd := &forwarder{}
	in, err := Spawn[string](s, fwd, 4, "forwarder")
	require.NoError(t, err)
	defer in.Close()

	sink := &tally{}
	sinkAddr, err := Spawn[string](s, sink, 1, "sink")
	require.NoError(t, err)
	defer sinkAddr.Close()
	fwd.to = sinkAddr

	require.NoError(t, sinkAddr.TrySend("direct"))
	require.NoError(t, in.TrySend("relayed"))

	// The sink's mailbox is full when the forwarder runs, so its Send yields
	// and the sink drains before the relay completes.
	progress, err := s.Poll()
	require.NoError(t, err)
	assert.True(t, progress)
	assert.Empty(t, fwd.errs)
	assert.Equal(t, []string{"direct", "relayed"}, sink.seen)
}

func TestCooperativeSendWouldBlock(t *testing.T) {
	s := NewScheduler(quietConfig(Config{}))
	self := &forwarder{times: 2}
	addr, err := Spawn[string](s, self, 1, "self")
	require.NoError(t, err)
	defer addr.Close()
	self.to = addr.Clone()
	defer self.to.Close()

	// The first echo refills the actor's own mailbox. The second cannot make
	// room: the only consumer is the actor that is sending.
	require.NoError(t, addr.TrySend("echo"))
	_, err = s.Poll()
	require.NoError(t, err)
	require.Len(t, self.errs, 1)
	assert.ErrorIs(t, self.errs[0], mailbox.ErrWouldBlock)
}

func TestPollDoesNotAllocate(t *testing.T) {
	s := NewScheduler(quietConfig(Config{GuardAllocations: true}))
	h := actor.NewMachineHandler(toggleMachine(t))
	addr, err := Spawn[statechart.Event](s, h, 4, "toggle")
	require.NoError(t, err)
	defer addr.Close()
	toggle := statechart.NewEvent("Toggle", nil)

	allocs := testing.AllocsPerRun(100, func() {
		if err := addr.TrySend(toggle); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Poll(); err != nil {
			t.Fatal(err)
		}
	})
	assert.Zero(t, allocs)
	assert.Equal(t, uint64(101), h.Handled())
}

var allocSink []byte

func TestAllocGuard(t *testing.T) {
	assert.NotPanics(t, func() { AllocGuard(func() {}) })
	assert.Panics(t, func() {
		AllocGuard(func() { allocSink = make([]byte, 64) })
	})
}

func TestRunTicksUntilActorsWindDown(t *testing.T) {
	s := NewScheduler(quietConfig(Config{TickRate: time.Millisecond}))
	rec := &tally{}
	addr, err := Spawn[string](s, rec, 4, "rec")
	require.NoError(t, err)

	require.NoError(t, addr.TrySend("a"))
	require.NoError(t, addr.TrySend("b"))
	addr.Close()

	require.NoError(t, s.Run(t.Context()))
	assert.Equal(t, []string{"a", "b"}, rec.seen)
	assert.GreaterOrEqual(t, s.TickNumber(), uint64(1))
	assert.Equal(t, 0, s.Live())
}

func TestRunStopsOnContext(t *testing.T) {
	s := NewScheduler(quietConfig(Config{TickRate: time.Millisecond}))
	addr, err := Spawn[string](s, &tally{}, 1, "idle")
	require.NoError(t, err)
	defer addr.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Run(ctx), context.DeadlineExceeded)
	assert.Greater(t, s.TickNumber(), uint64(1))
}

func TestRunReturnsFault(t *testing.T) {
	s := NewScheduler(quietConfig(Config{TickRate: time.Millisecond}))
	addr, err := Spawn[string](s, &tally{failOn: "bad"}, 1, "bad")
	require.NoError(t, err)
	defer addr.Close()
	require.NoError(t, addr.TrySend("bad"))

	var fault *actor.FaultError
	assert.ErrorAs(t, s.Run(t.Context()), &fault)
}
