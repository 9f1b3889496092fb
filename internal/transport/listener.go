package transport

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"otprelay/internal/domain"
	"otprelay/internal/session"
)

// ErrServing is returned by Serve when the listener is already serving or
// has served before.
var ErrServing = errors.New("transport: listener already served")

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithListenerLogger sets the log entry used by the listener and its sessions.
func WithListenerLogger(l *logrus.Entry) ListenerOption {
	return func(ln *Listener) {
		if l != nil {
			ln.log = l
		}
	}
}

// WithSessionOptions appends options applied to every accepted session.
func WithSessionOptions(opts ...session.Option) ListenerOption {
	return func(ln *Listener) { ln.sessionOpts = append(ln.sessionOpts, opts...) }
}

// Listener accepts inbound streams and keeps only the most recent one open.
type Listener struct {
	provider    domain.Provider
	serviceID   string
	log         *logrus.Entry
	sessionOpts []session.Option

	sessions chan *session.Session

	mu      sync.Mutex
	ln      domain.StreamListener
	current *session.Session
	served  bool
	closed  bool
}

// NewListener returns a listener that will bind serviceID on p once Serve is
// called.
func NewListener(p domain.Provider, serviceID string, opts ...ListenerOption) *Listener {
	l := &Listener{
		provider:  p,
		serviceID: serviceID,
		log:       logrus.NewEntry(logrus.StandardLogger()),
		sessions:  make(chan *session.Session, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.WithFields(logrus.Fields{
		"component": "listener",
		"service":   serviceID,
		"transport": p.Type().String(),
	})
	return l
}

// Sessions delivers each newly accepted session. Only the latest undelivered
// session is kept; the channel is closed when Serve returns.
func (l *Listener) Sessions() <-chan *session.Session { return l.sessions }

// Current returns the active session, or nil.
func (l *Listener) Current() *session.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Serve binds the service and accepts streams until ctx is cancelled or
// Close is called, in which case it returns ctx.Err() or nil respectively.
// Bind and accept failures are returned as *session.ConnectionError.
func (l *Listener) Serve(ctx context.Context) error {
	l.mu.Lock()
	if l.served {
		l.mu.Unlock()
		return ErrServing
	}
	l.served = true
	closed := l.closed
	l.mu.Unlock()

	defer close(l.sessions)
	if closed {
		return nil
	}

	ln, err := l.provider.Listen(ctx, l.serviceID)
	if err != nil {
		l.log.WithError(err).Warn("bind failed")
		return &session.ConnectionError{Op: "listen", Err: err}
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	l.ln = ln
	l.mu.Unlock()
	defer l.Close()

	l.log.Info("listening")
	for {
		stream, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if l.isClosed() {
				return nil
			}
			l.log.WithError(err).Warn("accept failed")
			return &session.ConnectionError{Op: "accept", Err: err}
		}
		if err := l.adopt(stream); err != nil {
			return nil
		}
	}
}

// adopt wraps stream in a fresh session and retires the previous one.
func (l *Listener) adopt(stream domain.Stream) error {
	log := l.log
	if addr := remoteAddr(stream); addr != "" {
		log = log.WithField("remote", addr)
	}
	opts := append([]session.Option{session.WithLogger(log)}, l.sessionOpts...)
	s := session.New(opts...)
	if err := s.Open(stream); err != nil {
		_ = stream.Close()
		return err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		_ = s.Close()
		return session.ErrClosed
	}
	prev := l.current
	l.current = s
	l.mu.Unlock()

	if prev != nil {
		log.WithField("replaced", prev.Name()).Info("new connection replaces active session")
		_ = prev.Close()
	}
	l.publish(s)
	return nil
}

// publish hands s to Sessions, discarding an undelivered older session.
func (l *Listener) publish(s *session.Session) {
	for {
		select {
		case l.sessions <- s:
			return
		default:
		}
		select {
		case <-l.sessions:
		default:
		}
	}
}

func (l *Listener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close stops accepting, closes the active session and releases the bound
// service. It is idempotent.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	ln := l.ln
	cur := l.current
	l.current = nil
	l.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	if cur != nil {
		_ = cur.Close()
	}
	l.log.Info("listener closed")
	return err
}

func remoteAddr(stream domain.Stream) string {
	if c, ok := stream.(interface{ RemoteAddr() net.Addr }); ok && c.RemoteAddr() != nil {
		return c.RemoteAddr().String()
	}
	return ""
}
