package exchange

import (
	"context"
	"crypto/rsa"

	"github.com/sirupsen/logrus"

	"otprelay/internal/crypto"
	"otprelay/internal/domain"
)

// ReceiverOption configures a Receiver.
type ReceiverOption func(*Receiver)

// WithReceiverLogger sets the log entry.
func WithReceiverLogger(l *logrus.Entry) ReceiverOption {
	return func(r *Receiver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithPinnedKey makes Announce reuse key instead of generating a new one.
func WithPinnedKey(key *rsa.PrivateKey) ReceiverOption {
	return func(r *Receiver) { r.pinned = key }
}

// Receiver is the listener side of the exchange.
type Receiver struct {
	cipher *crypto.Cipher
	pinned *rsa.PrivateKey
	log    *logrus.Entry
}

// NewReceiver returns a Receiver that keeps its keypair in c.
func NewReceiver(c *crypto.Cipher, opts ...ReceiverOption) *Receiver {
	r := &Receiver{
		cipher: c,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("component", "receiver")
	return r
}

// Announce installs a keypair and sends its public half. Without a pinned
// key a fresh keypair is generated on every call, invalidating whatever was
// announced before.
func (r *Receiver) Announce(ctx context.Context, conn Conn) (domain.Fingerprint, error) {
	if r.pinned != nil {
		if err := r.cipher.SetKeypair(r.pinned); err != nil {
			return "", err
		}
	} else if err := r.cipher.GenerateKeypair(); err != nil {
		return "", err
	}

	pub, err := r.cipher.ExportPublicKey()
	if err != nil {
		return "", err
	}
	fp, err := r.cipher.Fingerprint()
	if err != nil {
		return "", err
	}
	if err := conn.Send(ctx, domain.NewMessage(domain.KindPublicKeyAnnouncement, pub)); err != nil {
		return "", err
	}
	r.log.WithFields(logrus.Fields{
		"fingerprint": fp.String(),
		"pinned":      r.pinned != nil,
	}).Info("public key announced")
	return fp, nil
}

// Await consumes messages until an EncryptedOtp arrives and returns its
// plaintext. Other kinds are logged and skipped.
func (r *Receiver) Await(ctx context.Context, conn Conn) (string, error) {
	for {
		m, err := next(ctx, conn)
		if err != nil {
			return "", err
		}
		log := r.log.WithFields(logrus.Fields{
			"kind":  m.Kind.String(),
			"bytes": len(m.Payload),
		})
		switch m.Kind {
		case domain.KindEncryptedOtp:
			if !r.cipher.HasKeypair() {
				log.Warn("encrypted otp before any key was announced")
				return "", crypto.ErrNotInitialized
			}
			otp, err := r.cipher.Decrypt(string(m.Payload))
			if err != nil {
				log.WithError(err).Warn("decrypt failed")
				return "", err
			}
			log.Info("otp received")
			return otp, nil
		case domain.KindTest:
			log.Info("test frame")
		default:
			if !m.Kind.Known() {
				log.Debug("ignoring frame of unknown kind")
				continue
			}
			log.Debug("ignoring frame")
		}
	}
}

// Receive announces a key and waits for the OTP encrypted to it.
func (r *Receiver) Receive(ctx context.Context, conn Conn) (string, error) {
	if _, err := r.Announce(ctx, conn); err != nil {
		return "", err
	}
	return r.Await(ctx, conn)
}
