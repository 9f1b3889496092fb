package domain

import (
	"context"
	"crypto/rsa"
	"io"
)

// Stream is one established bidirectional byte stream. Close must unblock a
// pending Read.
type Stream = io.ReadWriteCloser

// Dialer opens an outbound stream to a known peer (initiator role).
type Dialer interface {
	Dial(ctx context.Context) (Stream, error)
}

// StreamListener accepts inbound streams on a bound service (listener role).
type StreamListener interface {
	Accept(ctx context.Context) (Stream, error)
	ServiceID() string
	Close() error
}

// Provider acquires streams for both roles over one transport.
type Provider interface {
	Dialer
	Listen(ctx context.Context, serviceID string) (StreamListener, error)
	Type() TransportType
}

// KeyStore persists the listener's pinned private key, sealed with a passphrase.
type KeyStore interface {
	SaveKey(passphrase string, key *rsa.PrivateKey) error
	LoadKey(passphrase string) (*rsa.PrivateKey, error)
	HasKey() (bool, error)
}

// OTPSource supplies the plaintext OTP to relay.
type OTPSource interface {
	OTP(ctx context.Context) (string, error)
}

// IdentityService creates, retrieves, and inspects the pinned listener key.
type IdentityService interface {
	GenerateIdentity(passphrase string) (*rsa.PrivateKey, Fingerprint, error)
	LoadIdentity(passphrase string) (*rsa.PrivateKey, error)
	FingerprintIdentity(passphrase string) (Fingerprint, error)
}

// TrustStore remembers which listener key fingerprint to expect per peer.
type TrustStore interface {
	Trust(peer string, fp Fingerprint) error
	Trusted(peer string) (Fingerprint, bool, error)
	Forget(peer string) error
}
