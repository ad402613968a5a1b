package transport

import (
	"sync"
)

// Feed is an in-process chunk source. Emit hands the chunk to the
// subscriber synchronously in the emitter's goroutine, which makes Feed the
// source of choice for tests and for producers that already own the bytes.
type Feed struct {
	mu      sync.Mutex
	handler ChunkHandler
}

func NewFeed() *Feed {
	return &Feed{}
}

func (f *Feed) OnChunk(handler ChunkHandler) (err error) {
	if handler == nil {
		err = ErrNilHandler
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handler != nil {
		err = ErrSubscribed
		return
	}
	f.handler = handler
	return
}

// Emit delivers p to the subscriber and returns when the subscriber is done
// with it. Emits before subscription are dropped. Emit must not be called
// concurrently with itself; chunk order is the caller's to define.
func (f *Feed) Emit(p []byte) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler == nil {
		return
	}
	handler(p)
}
