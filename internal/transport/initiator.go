package transport

import (
	"context"

	"github.com/sirupsen/logrus"

	"otprelay/internal/domain"
	"otprelay/internal/session"
)

// Initiator opens sessions to a known peer.
type Initiator struct {
	Dialer         domain.Dialer
	Logger         *logrus.Entry
	SessionOptions []session.Option
}

// Connect dials the peer and returns an open session. A failed dial is
// reported as a *session.ConnectionError and is not retried.
func (i *Initiator) Connect(ctx context.Context) (*session.Session, error) {
	log := i.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	opts := append([]session.Option{
		session.WithLogger(log.WithField("role", "initiator")),
	}, i.SessionOptions...)

	s := session.New(opts...)
	if err := s.Connect(ctx, i.Dialer); err != nil {
		return nil, err
	}
	return s, nil
}
