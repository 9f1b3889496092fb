package tcp

import (
	"context"
	"net"
	"time"

	"otprelay/internal/domain"
)

// Provider dials and listens on a single TCP address.
type Provider struct {
	Addr string

	dialer net.Dialer
}

// New returns a provider for addr ("host:port").
func New(addr string) *Provider {
	return &Provider{Addr: addr}
}

// Dial connects to Addr.
func (p *Provider) Dial(ctx context.Context) (domain.Stream, error) {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Listen binds Addr. serviceID only labels the listener; TCP has no service
// discovery.
func (p *Provider) Listen(ctx context.Context, serviceID string) (domain.StreamListener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", p.Addr)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln.(*net.TCPListener), id: serviceID}, nil
}

// Type reports domain.TransportWifi.
func (p *Provider) Type() domain.TransportType { return domain.TransportWifi }

// Listener is a bound TCP service.
type Listener struct {
	ln *net.TCPListener
	id string
}

var aLongTimeAgo = time.Unix(1, 0)

// Accept waits for the next connection or for ctx to end.
func (l *Listener) Accept(ctx context.Context) (domain.Stream, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = l.ln.SetDeadline(aLongTimeAgo)
	})
	conn, err := l.ln.AcceptTCP()
	if !stop() {
		// The deadline fired or is about to; clear it for the next Accept.
		_ = l.ln.SetDeadline(time.Time{})
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}

// Addr returns the bound address, useful when listening on port 0.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// ServiceID returns the label given to Listen.
func (l *Listener) ServiceID() string { return l.id }

// Close releases the socket and unblocks a pending Accept.
func (l *Listener) Close() error { return l.ln.Close() }

var (
	_ domain.Provider       = (*Provider)(nil)
	_ domain.StreamListener = (*Listener)(nil)
)
