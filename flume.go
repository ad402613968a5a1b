// Package flume assembles exact-length byte deliveries out of an ordered,
// arbitrarily chunked byte source.
//
// A source hands over bytes in chunks of whatever size and timing it likes.
// The Assembler accumulates them and serves at most one outstanding request
// at a time, either as a single delivery of exactly the requested length
// (RequestBytes) or as a bounded stream of pushes whose lengths sum to
// exactly the requested length (StreamBytes). Bytes are never dropped,
// duplicated or reordered, and leftovers stay buffered for the next request.
//
// flume is built on the rxp.Executors asynchronous programming model, the
// same way rio is. A default executors instance is provided; use Startup at
// the beginning of the program to customize it.
package flume

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/brickingsoft/rxp"
)

var (
	executors     rxp.Executors = nil
	executorsOnce sync.Once
)

// Startup creates the shared executors with the given options.
// Must be called at program start, before any context is built with
// Background or Executors.
func Startup(options ...rxp.Option) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case error:
				err = e
				break
			case string:
				err = errors.New(e)
				break
			default:
				err = errors.New(fmt.Sprintf("%+v", r))
				break
			}
		}
	}()
	executors = rxp.New(options...)
	return
}

// Shutdown closes the shared executors without waiting for running
// goroutines. Use ShutdownGracefully to wait.
func Shutdown() error {
	exec := Executors()
	runtime.SetFinalizer(exec, nil)
	return exec.Close()
}

// ShutdownGracefully closes the shared executors and waits for running
// goroutines to finish. Set a close timeout via Startup when needed.
func ShutdownGracefully() error {
	exec := Executors()
	runtime.SetFinalizer(exec, nil)
	return exec.CloseGracefully()
}

// Executors returns the shared executors, creating a default instance when
// Startup was not called.
func Executors() rxp.Executors {
	executorsOnce.Do(func() {
		if executors == nil {
			executors = rxp.New()
			runtime.SetFinalizer(executors, rxp.Executors.CloseGracefully)
		}
	})
	return executors
}

// Background returns a background context carrying the shared executors.
func Background() context.Context {
	return rxp.With(context.Background(), Executors())
}
