// Package realtime provides a cooperative, single-context runtime for
// statechart actors.
//
// The async runtime in package actor gives each actor its own goroutine. The
// Scheduler in this package instead drives a fixed set of actor slots from
// one caller-owned loop:
//   - Poll gives every live actor up to MaxEventsPerPoll events, in spawn
//     order
//   - Actors never block; a full cooperative mailbox yields back to the
//     scheduler instead of parking
//   - Handlers are static generic types, so a poll makes no heap allocations
//   - Run drives Poll from a fixed-rate ticker (e.g., 100 Hz)
//
// # Example Usage
//
//	s := realtime.NewScheduler(realtime.Config{TickRate: 10 * time.Millisecond})
//	addr, _ := realtime.Spawn(s, actor.NewMachineHandler(m), 8, "player")
//	addr.TrySend(statechart.NewEvent("play", nil))
//	s.RunUntilIdle()
//
// # Determinism
//
// Within one Scheduler, actors are visited in slot order and each mailbox is
// FIFO per producer, so the same sequence of sends and polls always yields
// the same sequence of handler calls.
//
// # Allocation Guard
//
// Setting Config.GuardAllocations wraps every Poll in AllocGuard, which
// panics if the process heap allocation counter moves while the poll runs.
// The guard reads runtime statistics with a stop-the-world call and is meant
// for tests and bring-up, not for production loops. Polls that report a
// fault are exempt, since building the fault report allocates.
//
// # Concurrency
//
// A Scheduler is not safe for concurrent use. Producers on other goroutines
// may call TrySend on its mailboxes; Send on a cooperative mailbox runs the
// scheduler and must only be called from the polling context.
package realtime
