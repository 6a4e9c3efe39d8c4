package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/comalice/statechart/actor"
	"github.com/comalice/statechart/mailbox"
)

// ErrNoSlots is returned by Spawn when every actor slot is taken.
var ErrNoSlots = errors.New("realtime: no free actor slot")

// Config configures a Scheduler.
type Config struct {
	TickRate         time.Duration // Fixed tick rate for Run (default: 10ms)
	MaxEventsPerPoll int           // Events each actor may handle per poll (default: 1)
	MaxActors        int           // Actor slots (default: 16)
	GuardAllocations bool          // Wrap every poll in AllocGuard
	Logger           *slog.Logger  // Default: slog.Default()
}

// stepper is one spawned actor. Implementations are generic over the
// concrete handler type, so stepping does not box events or handlers.
type stepper interface {
	step(ctx context.Context) (bool, error)
	load() (queued, capacity int)
}

type slot struct {
	name      string
	s         stepper
	busy      bool
	done      bool
	fault     error
	reported  bool
	processed uint64
}

// Scheduler runs actors cooperatively from a single context.
type Scheduler struct {
	cfg    Config
	logger *slog.Logger
	slots  []slot
	ctx    context.Context

	polling bool
	tickNum uint64
	mem     [2]runtime.MemStats
}

// NewScheduler creates a scheduler with cfg.MaxActors empty slots.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 10 * time.Millisecond
	}
	if cfg.MaxEventsPerPoll <= 0 {
		cfg.MaxEventsPerPoll = 1
	}
	if cfg.MaxActors <= 0 {
		cfg.MaxActors = 16
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:    cfg,
		logger: logger,
		slots:  make([]slot, 0, cfg.MaxActors),
		ctx:    context.Background(),
	}
}

// cell binds a mailbox to a concrete handler type.
type cell[E any, H actor.Handler[E]] struct {
	name string
	mb   *mailbox.Mailbox[E]
	h    H
}

func (c *cell[E, H]) step(ctx context.Context) (bool, error) {
	evt, err := c.mb.TryReceive()
	if errors.Is(err, mailbox.ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := actor.Invoke[E, H](ctx, c.name, c.h, evt); err != nil {
		c.mb.Close()
		return true, err
	}
	return true, nil
}

func (c *cell[E, H]) load() (int, int) {
	return c.mb.Len(), c.mb.Cap()
}

// Spawn places h in a free slot behind a new cooperative mailbox of the
// given capacity and returns its first Address. An empty name is replaced
// by a generated one. Slots of actors that have wound down or faulted are
// reused.
func Spawn[E any, H actor.Handler[E]](s *Scheduler, h H, capacity int, name string) (*mailbox.Address[E], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("realtime: spawn %q: capacity must be positive, got %d", name, capacity)
	}
	idx := s.freeSlot()
	if idx < 0 {
		return nil, fmt.Errorf("spawn %q: %w", name, ErrNoSlots)
	}
	if name == "" {
		name = uuid.NewString()
	}
	mb, addr := mailbox.New[E](capacity, mailbox.WithYield(s.yield))
	sl := slot{name: name, s: &cell[E, H]{name: name, mb: mb, h: h}}
	if idx == len(s.slots) {
		s.slots = append(s.slots, sl)
	} else {
		s.slots[idx] = sl
	}
	s.logger.Debug("actor spawned", "actor", name, "slot", idx, "capacity", capacity)
	return addr, nil
}

func (s *Scheduler) freeSlot() int {
	for i := range s.slots {
		if s.slots[i].done && s.slots[i].reported {
			return i
		}
	}
	if len(s.slots) < cap(s.slots) {
		return len(s.slots)
	}
	return -1
}

// Poll gives every live actor up to MaxEventsPerPoll events and reports
// whether any event was handled. A handler fault retires that actor and is
// returned as a *actor.FaultError after the pass completes; the remaining
// actors keep running on later polls.
func (s *Scheduler) Poll() (bool, error) {
	if s.polling {
		panic("realtime: Poll called from inside a handler")
	}
	if !s.cfg.GuardAllocations {
		return s.poll()
	}
	var (
		progress bool
		err      error
	)
	allocs := s.measure(func() { progress, err = s.poll() })
	if allocs != 0 && err == nil {
		panic(fmt.Sprintf("realtime: %d heap allocations during poll", allocs))
	}
	return progress, err
}

func (s *Scheduler) poll() (bool, error) {
	s.polling = true
	progress := s.pass()
	s.polling = false
	return progress, s.nextFault()
}

// pass visits every slot that is live and not already on the stack.
func (s *Scheduler) pass() bool {
	progress := false
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.done || sl.busy {
			continue
		}
		for range s.cfg.MaxEventsPerPoll {
			sl.busy = true
			handled, err := sl.s.step(s.ctx)
			sl.busy = false
			if handled {
				progress = true
				if err == nil {
					sl.processed++
				}
			}
			if err != nil {
				s.retire(sl, err)
				break
			}
			if !handled {
				break
			}
		}
	}
	return progress
}

func (s *Scheduler) retire(sl *slot, err error) {
	sl.done = true
	if errors.Is(err, mailbox.ErrClosed) {
		sl.reported = true
		s.logger.Debug("actor stopped", "actor", sl.name, "processed", sl.processed)
		return
	}
	sl.fault = err
}

func (s *Scheduler) nextFault() error {
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.fault != nil && !sl.reported {
			sl.reported = true
			return sl.fault
		}
	}
	return nil
}

// yield backs cooperative Send. It runs one pass over the actors that are
// not currently handling an event.
func (s *Scheduler) yield() bool {
	return s.pass()
}

// RunUntilIdle polls until a poll makes no progress. It stops early and
// returns the fault if an actor fails.
func (s *Scheduler) RunUntilIdle() error {
	for {
		progress, err := s.Poll()
		if err != nil {
			return err
		}
		if !progress {
			return nil
		}
	}
}

// Live returns how many actors have not wound down.
func (s *Scheduler) Live() int {
	n := 0
	for i := range s.slots {
		if !s.slots[i].done {
			n++
		}
	}
	return n
}

// Actors describes the occupied slots in slot order.
func (s *Scheduler) Actors() []actor.ActorInfo {
	infos := make([]actor.ActorInfo, 0, len(s.slots))
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.done {
			continue
		}
		queued, capacity := sl.s.load()
		infos = append(infos, actor.ActorInfo{
			Name:      sl.name,
			Processed: sl.processed,
			Queued:    queued,
			Capacity:  capacity,
		})
	}
	return infos
}

// TickNumber returns how many ticks Run has completed.
func (s *Scheduler) TickNumber() uint64 {
	return s.tickNum
}
