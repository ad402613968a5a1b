package flume

import (
	"context"
	"sync"

	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/flume/pkg/bytequeue"
	"github.com/brickingsoft/flume/transport"
	"github.com/brickingsoft/rxp"
	"github.com/brickingsoft/rxp/async"
)

// Delivery is one event mode fulfillment: exactly the requested number of
// bytes under the label the request was issued with.
type Delivery struct {
	Label string
	Bytes []byte
}

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingEvent
	pendingStream
)

// pending is the at-most-one outstanding request slot. The kind tag decides
// which of the mode fields is live; completion resets the whole slot to the
// zero value.
type pending struct {
	kind      pendingKind
	count     int
	label     string
	delivered int
	event     async.Promise[Delivery]
	stream    async.Promise[[]byte]
}

// Assembler accumulates chunks from one source and serves one exact-length
// request at a time.
//
// The accumulator and the request slot are guarded by mu. Promise pushes
// happen under sendMu only, never under mu, so completion handlers are free
// to issue the next request. sendMu also serializes pushes, which is what
// keeps deliveries in byte order when the source and a consumer dispatch
// concurrently.
type Assembler struct {
	ctx          context.Context
	defaultLabel string
	sendMu       sync.Mutex
	mu           sync.Mutex
	acc          *bytequeue.Queue
	slot         pending
}

// New binds an assembler to source for the assembler's whole lifetime; there
// is no rebinding and no way to unsubscribe. When ctx carries no executors
// the shared ones are attached.
func New(ctx context.Context, source transport.ChunkSource, options ...Option) (a *Assembler, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, has := rxp.TryFrom(ctx); !has {
		ctx = rxp.With(ctx, Executors())
	}
	opts := Options{
		DefaultLabel: DefaultLabel,
	}
	for _, option := range options {
		if err = option(&opts); err != nil {
			return
		}
	}
	if source == nil {
		err = errors.From(ErrInvalidSource, errors.WithMeta(errMetaPkgKey, errMetaPkgVal), errors.WithMeta(errMetaOpKey, errMetaOpNew))
		return
	}
	a = &Assembler{
		ctx:          ctx,
		defaultLabel: opts.DefaultLabel,
		acc:          bytequeue.New(),
	}
	if subErr := source.OnChunk(a.handleChunk); subErr != nil {
		a = nil
		err = errors.From(ErrInvalidSource, errors.WithMeta(errMetaPkgKey, errMetaPkgVal), errors.WithMeta(errMetaOpKey, errMetaOpNew), errors.WithWrap(subErr))
		return
	}
	return
}

// RequestBytes asks for exactly count bytes delivered as one Delivery under
// label (empty label means the default one). At most one request may be
// outstanding; a second one fails with ErrRequestPending and leaves the
// outstanding request untouched. A non-positive count fails with
// ErrInvalidCount. Misuse failures complete the returned future in the
// caller's stack.
//
// When the accumulator already holds enough bytes the fulfillment check is
// submitted to the executors instead of running here, so a consumer may
// chain requests from inside a completion handler without growing its own
// stack. There is no way to cancel or time out a request once issued.
func (a *Assembler) RequestBytes(count int, label string) (future async.Future[Delivery]) {
	if count < 1 {
		future = async.FailedImmediately[Delivery](a.ctx, errors.From(ErrInvalidCount, errors.WithMeta(errMetaOpKey, errMetaOpRequest)))
		return
	}
	if label == "" {
		label = a.defaultLabel
	}
	a.mu.Lock()
	if a.slot.kind != pendingNone {
		a.mu.Unlock()
		future = async.FailedImmediately[Delivery](a.ctx, errors.From(ErrRequestPending, errors.WithMeta(errMetaOpKey, errMetaOpRequest)))
		return
	}
	promise, promiseErr := async.Make[Delivery](a.ctx)
	if promiseErr != nil {
		a.mu.Unlock()
		future = async.FailedImmediately[Delivery](a.ctx, promiseErr)
		return
	}
	a.slot = pending{kind: pendingEvent, count: count, label: label, event: promise}
	satisfiable := a.acc.Len() >= count
	a.mu.Unlock()
	if satisfiable {
		task := fulfillTask{a: a}
		if !rxp.TryExecute(a.ctx, &task) {
			// an arrival may have fulfilled the request in the meantime,
			// only fail it while it is still ours
			a.mu.Lock()
			mine := a.slot.kind == pendingEvent && a.slot.event == promise
			if mine {
				a.slot = pending{}
			}
			a.mu.Unlock()
			if mine {
				promise.Fail(errors.From(ErrBusy, errors.WithWrap(rxp.ErrBusy)))
			}
		}
	}
	future = promise.Future()
	return
}

// StreamBytes asks for exactly count bytes delivered as a bounded stream:
// zero or more pushes whose lengths sum to count, then exactly one
// async.EOF result after the last push. Validation and the single-request
// guard match RequestBytes.
//
// Unlike RequestBytes there is no deferral: bytes already accumulated, up to
// count, are pushed before StreamBytes returns. Leftover bytes beyond count
// stay accumulated for the next request.
func (a *Assembler) StreamBytes(count int) (future async.Future[[]byte]) {
	if count < 1 {
		future = async.FailedImmediately[[]byte](a.ctx, errors.From(ErrInvalidCount, errors.WithMeta(errMetaOpKey, errMetaOpStream)))
		return
	}
	a.mu.Lock()
	if a.slot.kind != pendingNone {
		a.mu.Unlock()
		future = async.FailedImmediately[[]byte](a.ctx, errors.From(ErrRequestPending, errors.WithMeta(errMetaOpKey, errMetaOpStream)))
		return
	}
	promise, promiseErr := async.Make[[]byte](a.ctx, async.WithStream(), async.WithWait())
	if promiseErr != nil {
		a.mu.Unlock()
		future = async.FailedImmediately[[]byte](a.ctx, promiseErr)
		return
	}
	a.slot = pending{kind: pendingStream, count: count, stream: promise}
	a.mu.Unlock()
	a.dispatchStream()
	future = promise.Future()
	return
}

// handleChunk is the source subscription: accumulate, then hand off to the
// at-most-one pending consumer. Event fulfillment runs in the arrival path,
// in contrast with the deferred check in RequestBytes.
func (a *Assembler) handleChunk(p []byte) {
	a.mu.Lock()
	a.acc.Append(p)
	kind := a.slot.kind
	a.mu.Unlock()
	switch kind {
	case pendingEvent:
		a.dispatchEvent()
	case pendingStream:
		a.dispatchStream()
	}
}

// dispatchEvent delivers an event request when the accumulator covers it:
// exactly count bytes leave the head, the slot resets before the promise is
// pushed, leftovers stay for the next request.
func (a *Assembler) dispatchEvent() {
	a.sendMu.Lock()
	defer a.sendMu.Unlock()
	a.mu.Lock()
	if a.slot.kind != pendingEvent || a.acc.Len() < a.slot.count {
		a.mu.Unlock()
		return
	}
	promise, label := a.slot.event, a.slot.label
	b := a.acc.Take(a.slot.count)
	a.slot = pending{}
	a.mu.Unlock()
	promise.Succeed(Delivery{Label: label, Bytes: b})
}

// dispatchStream pushes one slice of min(count-delivered, accumulated)
// bytes per call. The terminal async.EOF goes out in the same critical
// section as the final push, so it can never interleave with a later
// request's pushes.
func (a *Assembler) dispatchStream() {
	a.sendMu.Lock()
	defer a.sendMu.Unlock()
	a.mu.Lock()
	if a.slot.kind != pendingStream {
		a.mu.Unlock()
		return
	}
	take := a.slot.count - a.slot.delivered
	if n := a.acc.Len(); n < take {
		take = n
	}
	if take == 0 {
		a.mu.Unlock()
		return
	}
	promise := a.slot.stream
	b := a.acc.Take(take)
	a.slot.delivered += take
	done := a.slot.delivered == a.slot.count
	if done {
		a.slot = pending{}
	}
	a.mu.Unlock()
	promise.Succeed(b)
	if done {
		promise.Fail(async.EOF)
		promise.Cancel()
	}
}

type fulfillTask struct {
	a *Assembler
}

func (task *fulfillTask) Handle(ctx context.Context) {
	task.a.dispatchEvent()
}
