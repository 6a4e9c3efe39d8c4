package mailbox

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Option configures a mailbox.
type Option func(*options)

type options struct {
	yield func() bool
}

// WithYield makes Send cooperative: instead of parking the goroutine while
// the mailbox is full, Send calls yield, which should run other work (for
// example one poll of a scheduler) and report whether it made progress.
// Send returns ErrWouldBlock as soon as yield reports no progress.
func WithYield(yield func() bool) Option {
	return func(o *options) {
		o.yield = yield
	}
}

// queue is the state shared by the Mailbox and every Address.
type queue[E any] struct {
	mu      sync.Mutex
	buf     []E
	head    int
	n       int
	senders int
	closed  bool

	// slots holds one token per reserved buffer cell. Producers acquire a
	// token before pushing and the consumer returns it after popping, so
	// waiting producers park on the channel rather than the mutex.
	slots chan struct{}
	// ready wakes the consumer after a push or the last release.
	ready chan struct{}
	// done is closed when the consumer shuts the mailbox.
	done chan struct{}

	yield     func() bool
	discarded atomic.Uint64
}

// Mailbox is the consuming end of a queue. Exactly one goroutine may call
// Receive, TryReceive and Close.
type Mailbox[E any] struct {
	q *queue[E]
}

// Address is a producer handle. Its methods are safe for concurrent use,
// but events sent through the same handle from different goroutines have
// no defined relative order.
type Address[E any] struct {
	q        *queue[E]
	released atomic.Bool
	cleanup  runtime.Cleanup
}

// New creates a mailbox holding at most capacity events and the first
// Address to it. It panics if capacity is not positive.
func New[E any](capacity int, opts ...Option) (*Mailbox[E], *Address[E]) {
	if capacity <= 0 {
		panic(fmt.Sprintf("mailbox: capacity must be positive, got %d", capacity))
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	q := &queue[E]{
		buf:   make([]E, capacity),
		slots: make(chan struct{}, capacity),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
		yield: o.yield,
	}
	return &Mailbox[E]{q: q}, q.newAddress()
}

func (q *queue[E]) newAddress() *Address[E] {
	q.senders++
	a := &Address[E]{q: q}
	a.cleanup = runtime.AddCleanup(a, func(q *queue[E]) { q.release() }, q)
	return a
}

// release drops one producer reference.
func (q *queue[E]) release() {
	q.mu.Lock()
	q.senders--
	last := q.senders == 0
	q.mu.Unlock()
	if last {
		q.notify()
	}
}

func (q *queue[E]) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// push stores e in a reserved cell. The caller holds a slot token.
func (q *queue[E]) push(a *Address[E], e E) error {
	q.mu.Lock()
	if q.closed || a.released.Load() {
		q.mu.Unlock()
		<-q.slots
		return ErrClosed
	}
	q.buf[(q.head+q.n)%len(q.buf)] = e
	q.n++
	q.mu.Unlock()
	q.notify()
	return nil
}

// pop removes the oldest event. The caller holds q.mu and q.n > 0.
func (q *queue[E]) pop() E {
	var zero E
	e := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return e
}

func (q *queue[E]) isDone() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// TrySend enqueues e without waiting. It returns ErrFull when the mailbox
// is at capacity and ErrClosed when the mailbox no longer accepts events.
func (a *Address[E]) TrySend(e E) error {
	q := a.q
	if a.released.Load() || q.isDone() {
		return ErrClosed
	}
	select {
	case q.slots <- struct{}{}:
		return q.push(a, e)
	default:
		return ErrFull
	}
}

// Send enqueues e, waiting for space while the mailbox is full. It returns
// ErrClosed if the mailbox stops accepting events while waiting, or the
// context's error if ctx ends first. On a cooperative mailbox (WithYield)
// Send never parks and returns ErrWouldBlock instead.
func (a *Address[E]) Send(ctx context.Context, e E) error {
	q := a.q
	if a.released.Load() || q.isDone() {
		return ErrClosed
	}

	select {
	case q.slots <- struct{}{}:
		return q.push(a, e)
	default:
	}

	if q.yield != nil {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !q.yield() {
				return ErrWouldBlock
			}
			if a.released.Load() || q.isDone() {
				return ErrClosed
			}
			select {
			case q.slots <- struct{}{}:
				return q.push(a, e)
			default:
			}
		}
	}

	select {
	case q.slots <- struct{}{}:
		return q.push(a, e)
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clone returns a new Address to the same mailbox. Cloning a released
// handle returns a released handle.
func (a *Address[E]) Clone() *Address[E] {
	q := a.q
	q.mu.Lock()
	defer q.mu.Unlock()
	if a.released.Load() {
		c := &Address[E]{q: q}
		c.released.Store(true)
		return c
	}
	return q.newAddress()
}

// Close releases the handle. Releasing the last Address lets the consumer
// drain the queue and then observe ErrClosed. Close is idempotent.
func (a *Address[E]) Close() {
	q := a.q
	q.mu.Lock()
	if a.released.Load() {
		q.mu.Unlock()
		return
	}
	a.released.Store(true)
	q.mu.Unlock()
	a.cleanup.Stop()
	q.release()
}

// Cap returns the mailbox capacity.
func (a *Address[E]) Cap() int {
	return len(a.q.buf)
}

// Receive returns the oldest event, waiting while the queue is empty. It
// returns ErrClosed once every Address is released and the queue has
// drained, or after Close; otherwise the context's error if ctx ends first.
func (m *Mailbox[E]) Receive(ctx context.Context) (E, error) {
	q := m.q
	for {
		e, err := m.TryReceive()
		if !errors.Is(err, ErrEmpty) {
			return e, err
		}
		select {
		case <-q.ready:
		case <-ctx.Done():
			var zero E
			return zero, ctx.Err()
		}
	}
}

// TryReceive returns the oldest event without waiting, ErrEmpty when
// nothing is queued, or ErrClosed when the mailbox has wound down.
func (m *Mailbox[E]) TryReceive() (E, error) {
	q := m.q
	q.mu.Lock()
	if q.n > 0 {
		e := q.pop()
		q.mu.Unlock()
		<-q.slots
		return e, nil
	}
	terminal := q.closed || q.senders == 0
	q.mu.Unlock()

	var zero E
	if terminal {
		return zero, ErrClosed
	}
	return zero, ErrEmpty
}

// Close shuts the mailbox from the consumer side. Producers, including
// those waiting in Send, observe ErrClosed; queued events are discarded and
// counted. Close is idempotent.
func (m *Mailbox[E]) Close() {
	q := m.q
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	dropped := q.n
	for q.n > 0 {
		q.pop()
	}
	q.mu.Unlock()

	close(q.done)
	for range dropped {
		<-q.slots
	}
	q.discarded.Add(uint64(dropped))
}

// Len returns the number of queued events.
func (m *Mailbox[E]) Len() int {
	m.q.mu.Lock()
	defer m.q.mu.Unlock()
	return m.q.n
}

// Cap returns the mailbox capacity.
func (m *Mailbox[E]) Cap() int {
	return len(m.q.buf)
}

// Senders returns the number of live Addresses.
func (m *Mailbox[E]) Senders() int {
	m.q.mu.Lock()
	defer m.q.mu.Unlock()
	return m.q.senders
}

// Discarded returns how many queued events Close dropped.
func (m *Mailbox[E]) Discarded() uint64 {
	return m.q.discarded.Load()
}

// Closed reports whether Close has been called.
func (m *Mailbox[E]) Closed() bool {
	return m.q.isDone()
}
