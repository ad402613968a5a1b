// Package codec decodes length-field framed messages on top of a
// flume.Assembler: a fixed-size big-endian length header, then that many
// payload bytes, back to back. Each message is assembled with two event mode
// requests, so frames may be split across arrivals anywhere, header
// included.
package codec

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/flume"
	"github.com/brickingsoft/rxp/async"
)

var (
	ErrInvalidFieldSize = errors.Define("codec: length field size must be 1, 2, 4 or 8")
	ErrMessageTooLarge  = errors.Define("codec: message length exceeds int range")
)

// IsInvalidFieldSize reports whether err means the length field size was
// not one of 1, 2, 4 or 8.
func IsInvalidFieldSize(err error) bool {
	return errors.Is(err, ErrInvalidFieldSize)
}

// IsMessageTooLarge reports whether err means a decoded length does not fit
// in an int.
func IsMessageTooLarge(err error) bool {
	return errors.Is(err, ErrMessageTooLarge)
}

const (
	labelLength  = "length"
	labelPayload = "payload"
)

// LengthFieldDecode decodes messages as a stream future: one succeeded
// result per message, until a decode failure stops it. Zero-length messages
// come through as empty payloads.
func LengthFieldDecode(ctx context.Context, a *flume.Assembler, fieldSize int, options ...async.Option) (future async.Future[[]byte]) {
	if !validFieldSize(fieldSize) {
		future = async.FailedImmediately[[]byte](ctx, errors.From(ErrInvalidFieldSize))
		return
	}
	options = append(options, async.WithStream(), async.WithWait())
	promise, promiseErr := async.Make[[]byte](ctx, options...)
	if promiseErr != nil {
		future = async.FailedImmediately[[]byte](ctx, promiseErr)
		return
	}
	decode(a, fieldSize, true, promise)
	future = promise.Future()
	return
}

// LengthFieldDecodeOnce decodes a single message.
func LengthFieldDecodeOnce(ctx context.Context, a *flume.Assembler, fieldSize int, options ...async.Option) (future async.Future[[]byte]) {
	if !validFieldSize(fieldSize) {
		future = async.FailedImmediately[[]byte](ctx, errors.From(ErrInvalidFieldSize))
		return
	}
	promise, promiseErr := async.Make[[]byte](ctx, options...)
	if promiseErr != nil {
		future = async.FailedImmediately[[]byte](ctx, promiseErr)
		return
	}
	decode(a, fieldSize, false, promise)
	future = promise.Future()
	return
}

func decode(a *flume.Assembler, fieldSize int, stream bool, promise async.Promise[[]byte]) {
	a.RequestBytes(fieldSize, labelLength).OnComplete(func(ctx context.Context, header flume.Delivery, err error) {
		if err != nil {
			promise.Fail(err)
			if stream {
				promise.Cancel()
			}
			return
		}
		size, sizeErr := fieldLength(header.Bytes)
		if sizeErr != nil {
			promise.Fail(sizeErr)
			if stream {
				promise.Cancel()
			}
			return
		}
		if size == 0 {
			promise.Succeed([]byte{})
			if stream {
				decode(a, fieldSize, stream, promise)
			}
			return
		}
		a.RequestBytes(size, labelPayload).OnComplete(func(ctx context.Context, payload flume.Delivery, err error) {
			if err != nil {
				promise.Fail(err)
				if stream {
					promise.Cancel()
				}
				return
			}
			promise.Succeed(payload.Bytes)
			if stream {
				decode(a, fieldSize, stream, promise)
			}
		})
	})
}

func validFieldSize(fieldSize int) bool {
	switch fieldSize {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

func fieldLength(field []byte) (n int, err error) {
	var size uint64
	switch len(field) {
	case 1:
		size = uint64(field[0])
	case 2:
		size = uint64(binary.BigEndian.Uint16(field))
	case 4:
		size = uint64(binary.BigEndian.Uint32(field))
	case 8:
		size = binary.BigEndian.Uint64(field)
	}
	if size > math.MaxInt {
		err = errors.From(ErrMessageTooLarge)
		return
	}
	n = int(size)
	return
}
