package flume

import (
	"github.com/brickingsoft/errors"
)

var (
	ErrRequestPending = errors.Define("flume: cannot change an outstanding request")
	ErrInvalidCount   = errors.Define("flume: count must be a positive integer")
	ErrInvalidSource  = errors.Define("flume: not a valid chunk source")
	ErrBusy           = errors.Define("flume: system busy")
)

// IsRequestPending reports whether err means a request was issued while
// another one was still outstanding.
func IsRequestPending(err error) bool {
	return errors.Is(err, ErrRequestPending)
}

// IsInvalidCount reports whether err means a request carried a non-positive
// byte count.
func IsInvalidCount(err error) bool {
	return errors.Is(err, ErrInvalidCount)
}

// IsInvalidSource reports whether err means the assembler was constructed
// over an invalid chunk source.
func IsInvalidSource(err error) bool {
	return errors.Is(err, ErrInvalidSource)
}

// IsBusy reports whether err means the executors could not take the
// deferred fulfillment task.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "flume"
)

const (
	errMetaOpKey     = "op"
	errMetaOpNew     = "new"
	errMetaOpRequest = "request"
	errMetaOpStream  = "stream"
)
