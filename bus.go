package spiopen

import (
	"context"
	"errors"
)

// Bus represents a point-to-point SpIOpen link which can send and
// receive frames. Implementations should be safe for concurrent use by
// multiple goroutines.
type Bus interface {
	// Send serializes and transmits frame. It may block until the
	// frame is queued or sent; context cancellation should abort the
	// operation and return the context error.
	Send(ctx context.Context, frame Frame) error

	// Receive retrieves the next frame recovered from the link,
	// including any that required bit-slip correction. It blocks
	// until a frame is available or ctx is done.
	Receive(ctx context.Context) (Frame, error)

	// Close releases resources held by the bus. Further Send/Receive
	// calls should return an error.
	Close() error
}

// ErrClosed indicates the bus or endpoint has been closed.
var ErrClosed = errors.New("spiopen: closed")
