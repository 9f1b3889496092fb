package exchange

import (
	"context"
	"fmt"

	"otprelay/internal/domain"
)

// Conn is the part of a session the exchange uses.
type Conn interface {
	Send(ctx context.Context, m domain.Message) error
	Messages() <-chan domain.Message
	Err() error
}

// next returns the next message, or an error once ctx ends or the
// session stops delivering.
func next(ctx context.Context, conn Conn) (domain.Message, error) {
	select {
	case m, ok := <-conn.Messages():
		if !ok {
			return domain.Message{}, lost(conn)
		}
		return m, nil
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	}
}

func lost(conn Conn) error {
	if err := conn.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionLost, err)
	}
	return ErrConnectionLost
}

// Ping sends a Test frame carrying payload.
func Ping(ctx context.Context, conn Conn, payload []byte) error {
	return conn.Send(ctx, domain.NewMessage(domain.KindTest, payload))
}
