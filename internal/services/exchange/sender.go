package exchange

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"otprelay/internal/crypto"
	"otprelay/internal/domain"
)

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSenderLogger sets the log entry.
func WithSenderLogger(l *logrus.Entry) SenderOption {
	return func(s *Sender) {
		if l != nil {
			s.log = l
		}
	}
}

// WithExpectedFingerprint rejects announced keys whose fingerprint differs
// from fp.
func WithExpectedFingerprint(fp domain.Fingerprint) SenderOption {
	return func(s *Sender) { s.expect = fp }
}

// Sender is the initiator side of the exchange.
type Sender struct {
	cipher *crypto.Cipher
	expect domain.Fingerprint
	log    *logrus.Entry
}

// NewSender returns a Sender that imports announced keys into c.
func NewSender(c *crypto.Cipher, opts ...SenderOption) *Sender {
	s := &Sender{
		cipher: c,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "sender")
	return s
}

// Relay waits for the peer's key announcement, encrypts otp to it and sends
// the result as an EncryptedOtp frame. Announcements already queued behind
// the first are imported too, so the last one received wins.
func (s *Sender) Relay(ctx context.Context, conn Conn, otp string) error {
	if otp == "" {
		return ErrEmptyOTP
	}

	if err := s.awaitKey(ctx, conn); err != nil {
		return err
	}

	fp, err := s.cipher.PeerFingerprint()
	if err != nil {
		return err
	}
	log := s.log.WithField("fingerprint", fp.String())
	if s.expect != "" && fp != s.expect {
		log.WithField("expected", s.expect.String()).Warn("announced key rejected")
		return fmt.Errorf("%w: got %s, want %s", ErrFingerprintMismatch, fp, s.expect)
	}

	ct, err := s.cipher.Encrypt(otp)
	if err != nil {
		return err
	}
	if err := conn.Send(ctx, domain.NewMessage(domain.KindEncryptedOtp, []byte(ct))); err != nil {
		return err
	}
	log.Info("otp relayed")
	return nil
}

// RelayFrom is Relay with the OTP taken from src.
func (s *Sender) RelayFrom(ctx context.Context, conn Conn, src domain.OTPSource) error {
	otp, err := src.OTP(ctx)
	if err != nil {
		return err
	}
	return s.Relay(ctx, conn, otp)
}

func (s *Sender) awaitKey(ctx context.Context, conn Conn) error {
	for {
		m, err := next(ctx, conn)
		if err != nil {
			return err
		}
		if m.Kind != domain.KindPublicKeyAnnouncement {
			s.log.WithField("kind", m.Kind.String()).Debug("ignoring frame while waiting for key")
			continue
		}
		if err := s.cipher.ImportPublicKey(m.Payload); err != nil {
			return err
		}
		s.log.Debug("public key imported")
		return s.drainKeys(conn)
	}
}

// drainKeys imports any announcements that are already queued.
func (s *Sender) drainKeys(conn Conn) error {
	for {
		select {
		case m, ok := <-conn.Messages():
			if !ok {
				return nil
			}
			if m.Kind != domain.KindPublicKeyAnnouncement {
				continue
			}
			if err := s.cipher.ImportPublicKey(m.Payload); err != nil {
				return err
			}
			s.log.Debug("newer public key imported")
		default:
			return nil
		}
	}
}
