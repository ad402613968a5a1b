// Package transport defines the boundary between chunk producers and the
// assembler: a source that a handler subscribes to exactly once, and two
// ready-made sources, an in-process Feed and a net.Conn backed ConnSource.
//
// Sources only notify. The subscriber never writes to or closes a source,
// and source level failures (disconnects, read errors) stay on this
// boundary; they are not visible through the assembler.
package transport

import (
	"github.com/brickingsoft/errors"
)

var (
	ErrSubscribed = errors.Define("transport: chunk handler already subscribed")
	ErrNilHandler = errors.Define("transport: chunk handler is nil")
)

// IsSubscribed reports whether err means a source already had its one
// subscription.
func IsSubscribed(err error) bool {
	return errors.Is(err, ErrSubscribed)
}

// ChunkHandler consumes one arrival's worth of bytes. Handlers are invoked
// one arrival at a time, in arrival order, and must not retain p.
type ChunkHandler func(p []byte)

// ChunkSource delivers ordered byte chunks of arbitrary, possibly zero,
// length to a single subscriber.
type ChunkSource interface {
	// OnChunk registers the handler for the source's whole lifetime.
	// A source accepts exactly one subscription; the second one fails
	// with ErrSubscribed.
	OnChunk(handler ChunkHandler) (err error)
}
