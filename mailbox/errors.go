package mailbox

import "errors"

var (
	// ErrFull is returned by TrySend when the mailbox is at capacity. The
	// event was not enqueued.
	ErrFull = errors.New("mailbox: full")

	// ErrClosed is returned to producers once the consumer has shut the
	// mailbox or the handle has been released, and to the consumer once
	// every Address is released and the queue is empty.
	ErrClosed = errors.New("mailbox: closed")

	// ErrEmpty is returned by TryReceive when no event is queued.
	ErrEmpty = errors.New("mailbox: empty")

	// ErrWouldBlock is returned by Send on a cooperative mailbox when the
	// yield function made no progress and the mailbox is still full.
	ErrWouldBlock = errors.New("mailbox: would block")
)
