// Package mailbox provides the bounded, multi-producer single-consumer event
// queue that feeds one actor.
//
// New returns the consuming end (*Mailbox) and the first producer handle
// (*Address). Addresses are cloned to add producers and closed to release
// them; once every Address is released and the queue has drained, Receive
// reports ErrClosed and the actor winds down. An Address that becomes
// unreachable without being closed is released by the garbage collector.
//
//	mb, addr := mailbox.New[statechart.Event](2)
//	addr.TrySend(e1) // nil
//	addr.TrySend(e2) // nil
//	addr.TrySend(e3) // ErrFull
//	mb.TryReceive()  // e1
//	addr.TrySend(e3) // nil
//
// The buffer is a ring allocated once by New and guarded by a single mutex.
// TrySend, TryReceive and the non-waiting paths of Send and Receive do not
// allocate, which lets the cooperative runtime use the same type.
package mailbox
