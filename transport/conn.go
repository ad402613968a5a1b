package transport

import (
	"net"
	"sync"

	"github.com/rs/zerolog"
)

const defaultReadBufferSize = 4096

type ConnSourceOptions struct {
	Logger         zerolog.Logger
	ReadBufferSize int
	OnClose        func(err error)
}

type ConnSourceOption func(options *ConnSourceOptions)

// WithLogger sets the logger used by the read loop. Logging is off by
// default.
func WithLogger(logger zerolog.Logger) ConnSourceOption {
	return func(options *ConnSourceOptions) {
		options.Logger = logger
	}
}

// WithReadBufferSize sets the size of the read buffer, which caps the chunk
// size. Defaults to 4096.
func WithReadBufferSize(size int) ConnSourceOption {
	return func(options *ConnSourceOptions) {
		if size > 0 {
			options.ReadBufferSize = size
		}
	}
}

// WithOnClose sets a callback invoked once when the read loop stops, with
// the error that stopped it (io.EOF included).
func WithOnClose(fn func(err error)) ConnSourceOption {
	return func(options *ConnSourceOptions) {
		options.OnClose = fn
	}
}

// ConnSource adapts a net.Conn into a chunk source. Subscription starts a
// read loop that emits every successful read as one chunk, preserving
// arrival order. The loop stops on the first read error; the connection's
// lifecycle stays with its owner.
type ConnSource struct {
	conn    net.Conn
	logger  zerolog.Logger
	bufSize int
	onClose func(err error)
	mu      sync.Mutex
	started bool
}

func NewConnSource(conn net.Conn, options ...ConnSourceOption) *ConnSource {
	opts := ConnSourceOptions{
		Logger:         zerolog.Nop(),
		ReadBufferSize: defaultReadBufferSize,
	}
	for _, option := range options {
		option(&opts)
	}
	return &ConnSource{
		conn:    conn,
		logger:  opts.Logger,
		bufSize: opts.ReadBufferSize,
		onClose: opts.OnClose,
	}
}

func (s *ConnSource) OnChunk(handler ChunkHandler) (err error) {
	if handler == nil {
		err = ErrNilHandler
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		err = ErrSubscribed
		return
	}
	s.started = true
	go s.readLoop(handler)
	return
}

func (s *ConnSource) readLoop(handler ChunkHandler) {
	buf := make([]byte, s.bufSize)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.logger.Debug().Int("bytes", n).Msg("chunk received")
			handler(buf[:n])
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("read loop stopped")
			if s.onClose != nil {
				s.onClose(err)
			}
			return
		}
	}
}
