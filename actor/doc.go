// Package actor pairs a message handler with a mailbox and drives it.
//
// An Actor dequeues one event at a time and runs its Handler to completion
// before taking the next, so the handler's state (typically a
// statechart.Machine and its context) is only ever touched by the drive
// loop. Producers interact with the actor exclusively through
// mailbox.Address values.
//
// An Actor has two drive modes:
//
//   - Run blocks in Mailbox.Receive and is used by the asynchronous System,
//     which runs each actor on its own goroutine.
//   - Step handles at most one already-queued event without waiting, for
//     callers that drive an actor by hand.
//
// The cooperative scheduler in package realtime does not use Actor. It keeps
// statically typed slots and delivers events through Invoke, which applies
// the same fault conversion without boxing the handler.
//
// A handler error or panic is a fault: it ends the actor, closes its
// mailbox and is reported as a *FaultError to whatever drives the loop.
package actor
