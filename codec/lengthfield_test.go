package codec_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/brickingsoft/flume"
	"github.com/brickingsoft/flume/codec"
	"github.com/brickingsoft/flume/transport"
	"github.com/brickingsoft/rxp"
	"github.com/brickingsoft/rxp/async"
)

func frame(fieldSize int, payload []byte) []byte {
	p := make([]byte, fieldSize+len(payload))
	switch fieldSize {
	case 1:
		p[0] = byte(len(payload))
	case 2:
		binary.BigEndian.PutUint16(p, uint16(len(payload)))
	case 4:
		binary.BigEndian.PutUint32(p, uint32(len(payload)))
	case 8:
		binary.BigEndian.PutUint64(p, uint64(len(payload)))
	}
	copy(p[fieldSize:], payload)
	return p
}

func TestLengthFieldDecode(t *testing.T) {
	exec := rxp.New()
	defer exec.Close()
	ctx := rxp.With(context.Background(), exec)

	feed := transport.NewFeed()
	a, aErr := flume.New(ctx, feed)
	if aErr != nil {
		t.Fatal(aErr)
	}

	messages := [][]byte{
		[]byte("hello world"),
		{},
		[]byte("flume"),
	}
	wire := make([]byte, 0, 64)
	for _, m := range messages {
		wire = append(wire, frame(8, m)...)
	}

	var got [][]byte
	wg := new(sync.WaitGroup)
	wg.Add(len(messages))
	codec.LengthFieldDecode(ctx, a, 8).OnComplete(func(ctx context.Context, msg []byte, err error) {
		if err != nil {
			// the decode stream outlives the framed messages, closing the
			// executors may surface one trailing canceled result
			if async.IsCanceled(err) || errors.Is(err, async.ExecutorsClosed) {
				return
			}
			t.Error("decode failed:", err)
			return
		}
		got = append(got, msg)
		wg.Done()
	})

	// feed the framed stream in awkward slices, header seams included
	for len(wire) > 0 {
		n := 5
		if n > len(wire) {
			n = len(wire)
		}
		feed.Emit(wire[:n])
		wire = wire[n:]
	}
	wg.Wait()

	if len(got) < len(messages) {
		t.Fatal("messages:", len(got))
	}
	for i, m := range messages {
		if !bytes.Equal(got[i], m) {
			t.Error("message", i, ":", string(got[i]))
		}
	}
}

func TestLengthFieldDecodeOnce(t *testing.T) {
	exec := rxp.New()
	defer exec.Close()
	ctx := rxp.With(context.Background(), exec)

	feed := transport.NewFeed()
	a, aErr := flume.New(ctx, feed)
	if aErr != nil {
		t.Fatal(aErr)
	}

	b := []byte("hello world")
	wg := new(sync.WaitGroup)
	wg.Add(1)
	codec.LengthFieldDecodeOnce(ctx, a, 2).OnComplete(func(ctx context.Context, msg []byte, err error) {
		defer wg.Done()
		if err != nil {
			t.Error("decode failed:", err)
			return
		}
		if !bytes.Equal(msg, b) {
			t.Error("message:", string(msg))
		}
	})
	feed.Emit(frame(2, b))
	wg.Wait()
}

func TestLengthFieldDecode_InvalidFieldSize(t *testing.T) {
	exec := rxp.New()
	defer exec.Close()
	ctx := rxp.With(context.Background(), exec)

	feed := transport.NewFeed()
	a, aErr := flume.New(ctx, feed)
	if aErr != nil {
		t.Fatal(aErr)
	}

	fired := false
	codec.LengthFieldDecode(ctx, a, 3).OnComplete(func(ctx context.Context, msg []byte, err error) {
		fired = true
		if !codec.IsInvalidFieldSize(err) {
			t.Error("err:", err)
		}
	})
	if !fired {
		t.Error("invalid field size did not fail in the caller's stack")
	}
}
