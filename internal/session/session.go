package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"otprelay/internal/domain"
	"otprelay/internal/protocol/frame"
)

// DefaultBuffer is the capacity of the Messages channel.
const DefaultBuffer = 16

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the log entry; the session adds its own fields.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxPayload caps the payload length accepted from the peer.
func WithMaxPayload(n uint32) Option {
	return func(s *Session) { s.maxPayload = n }
}

// WithBuffer sets the capacity of the Messages channel.
func WithBuffer(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.buffer = n
		}
	}
}

// WithName overrides the generated session id used in logs.
func WithName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.name = name
		}
	}
}

// Session is one logical, single-use connection over an adopted stream.
type Session struct {
	name       string
	log        *logrus.Entry
	maxPayload uint32
	buffer     int

	mu      sync.Mutex
	state   domain.State
	stream  domain.Stream
	started bool
	err     error

	writeMu sync.Mutex

	msgs       chan domain.Message
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	finishOnce sync.Once
}

// New returns an Idle session.
func New(opts ...Option) *Session {
	s := &Session{
		name:       uuid.NewString(),
		log:        logrus.NewEntry(logrus.StandardLogger()),
		maxPayload: frame.DefaultMaxPayload,
		buffer:     DefaultBuffer,
		state:      domain.StateIdle,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.msgs = make(chan domain.Message, s.buffer)
	s.log = s.log.WithFields(logrus.Fields{
		"component": "session",
		"session":   s.name,
	})
	return s
}

// Name returns the session id.
func (s *Session) Name() string { return s.name }

// State returns the current lifecycle state.
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages delivers decoded frames in arrival order. It is closed once the
// read loop has stopped.
func (s *Session) Messages() <-chan domain.Message { return s.msgs }

// Done is closed once the read loop has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the error that stopped the read loop. It is nil while the loop
// runs, after a clean peer close, and after Close.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Open adopts an established stream and starts the read loop. The session
// owns stream from then on, even when Open fails: a rejected stream is closed.
func (s *Session) Open(stream domain.Stream) error {
	if stream == nil {
		return errors.New("session: nil stream")
	}
	return s.adopt(stream, domain.StateIdle)
}

// Connect acquires a stream from d and adopts it. On failure the session is
// left Closed and a *ConnectionError is returned; there is no retry.
func (s *Session) Connect(ctx context.Context, d domain.Dialer) error {
	s.mu.Lock()
	switch s.state {
	case domain.StateIdle:
	case domain.StateConnecting, domain.StateOpen:
		s.mu.Unlock()
		return ErrAlreadyOpen
	default:
		s.mu.Unlock()
		return ErrClosed
	}
	s.state = domain.StateConnecting
	s.mu.Unlock()

	s.log.Debug("connecting")
	stream, err := d.Dial(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = domain.StateClosed
		s.mu.Unlock()
		s.finish(nil)
		s.log.WithError(err).Warn("connect failed")
		return &ConnectionError{Op: "dial", Err: err}
	}
	return s.adopt(stream, domain.StateConnecting)
}

func (s *Session) adopt(stream domain.Stream, from domain.State) error {
	s.mu.Lock()
	if s.state != from {
		st := s.state
		s.mu.Unlock()
		_ = stream.Close()
		if st == domain.StateClosing || st == domain.StateClosed {
			return ErrClosed
		}
		return ErrAlreadyOpen
	}
	s.stream = stream
	s.state = domain.StateOpen
	s.started = true
	s.mu.Unlock()

	s.log.Info("session open")
	go s.readLoop(stream)
	return nil
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Send encodes m and writes it as one frame. Success means the frame was
// handed to the transport, not that the peer received it.
//
// If ctx carries a deadline and the stream supports write deadlines, the
// write is bounded by it.
func (s *Session) Send(ctx context.Context, m domain.Message) error {
	s.mu.Lock()
	if s.state != domain.StateOpen {
		s.mu.Unlock()
		return ErrNotConnected
	}
	stream := s.stream
	s.mu.Unlock()

	b, err := frame.Encode(m)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if dl, ok := ctx.Deadline(); ok {
		if wd, ok := stream.(writeDeadliner); ok {
			_ = wd.SetWriteDeadline(dl)
			defer func() { _ = wd.SetWriteDeadline(time.Time{}) }()
		}
	}

	n, err := stream.Write(b)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		s.log.WithError(err).WithField("kind", m.Kind.String()).Warn("send failed")
		return &WriteError{Err: err}
	}
	s.log.WithFields(logrus.Fields{
		"kind":  m.Kind.String(),
		"bytes": len(m.Payload),
	}).Debug("frame sent")
	return nil
}

// Close stops the read loop and releases the stream. It is idempotent and
// always returns nil.
func (s *Session) Close() error {
	s.mu.Lock()
	switch s.state {
	case domain.StateClosing, domain.StateClosed:
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.state = domain.StateClosing
	stream := s.stream
	started := s.started
	s.mu.Unlock()

	// The stop signal must precede closing the stream so the read loop can
	// tell cancellation from a transport failure.
	s.stopOnce.Do(func() { close(s.stop) })
	if stream != nil {
		if err := stream.Close(); err != nil {
			s.log.WithError(err).Debug("stream close")
		}
	}
	if !started {
		s.finish(nil)
	}
	<-s.done

	s.mu.Lock()
	s.state = domain.StateClosed
	s.mu.Unlock()
	s.log.Info("session closed")
	return nil
}

func (s *Session) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

func (s *Session) readLoop(stream domain.Stream) {
	var loopErr error
	defer func() { s.finish(loopErr) }()

	fr := frame.NewReader(stream, s.maxPayload)
	for {
		m, err := fr.Next()
		if err != nil {
			switch {
			case s.stopped():
				s.log.Debug("read loop cancelled")
			case errors.Is(err, frame.ErrPeerClosed):
				s.log.Info("peer closed")
			case errors.Is(err, frame.ErrMalformedFrame):
				loopErr = err
				s.log.WithError(err).Warn("malformed frame, dropping connection")
				s.abort(stream)
			default:
				loopErr = err
				s.log.WithError(err).Warn("read failed")
			}
			return
		}

		s.log.WithFields(logrus.Fields{
			"kind":  m.Kind.String(),
			"bytes": len(m.Payload),
		}).Debug("frame received")

		select {
		case s.msgs <- m:
		case <-s.stop:
			return
		}
	}
}

// abort closes the stream after a frame the protocol cannot resynchronise from.
func (s *Session) abort(stream domain.Stream) {
	s.mu.Lock()
	if s.state == domain.StateOpen {
		s.state = domain.StateClosed
	}
	s.mu.Unlock()
	_ = stream.Close()
}

func (s *Session) finish(err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.msgs)
		close(s.done)
	})
}
