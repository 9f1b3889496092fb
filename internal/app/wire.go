package app

import (
	"crypto/rsa"
	"fmt"

	"github.com/sirupsen/logrus"

	"otprelay/internal/crypto"
	"otprelay/internal/domain"
	"otprelay/internal/services/exchange"
	identitysvc "otprelay/internal/services/identity"
	"otprelay/internal/session"
	"otprelay/internal/store"
	"otprelay/internal/transport"
	"otprelay/internal/transport/rfcomm"
	"otprelay/internal/transport/tcp"
)

// Wire bundles the provider, stores and services for the CLIs.
type Wire struct {
	Config   Config
	Log      *logrus.Logger
	Provider domain.Provider
	Keys     domain.KeyStore
	Trust    domain.TrustStore
	Identity domain.IdentityService
}

// NewWire validates cfg and constructs the dependency graph.
func NewWire(cfg Config) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	keys := store.NewKeyFileStore(cfg.Home)

	return &Wire{
		Config:   cfg,
		Log:      log,
		Provider: provider,
		Keys:     keys,
		Trust:    store.NewTrustFileStore(cfg.Home),
		Identity: identitysvc.New(keys, cfg.KeyBits),
	}, nil
}

func newProvider(cfg Config) (domain.Provider, error) {
	switch cfg.Transport {
	case TransportRFCOMM:
		return rfcomm.New(cfg.Addr, cfg.Channel), nil
	case TransportTCP:
		return tcp.New(cfg.Addr), nil
	}
	return nil, fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, cfg.Transport)
}

// Entry returns a log entry tagged with the transport in use.
func (w *Wire) Entry() *logrus.Entry {
	return w.Log.WithField("transport", w.Provider.Type().String())
}

// SessionOptions returns the options every session is created with.
func (w *Wire) SessionOptions() []session.Option {
	return []session.Option{session.WithMaxPayload(w.Config.MaxPayload)}
}

// NewCipher returns an empty cipher sized per Config.KeyBits.
func (w *Wire) NewCipher() *crypto.Cipher {
	return crypto.NewCipher(crypto.WithKeyBits(w.Config.KeyBits))
}

// Initiator returns a role adapter that dials the configured peer.
func (w *Wire) Initiator() *transport.Initiator {
	return &transport.Initiator{
		Dialer:         w.Provider,
		Logger:         w.Entry(),
		SessionOptions: w.SessionOptions(),
	}
}

// Listener returns a role adapter bound to the configured service.
func (w *Wire) Listener() *transport.Listener {
	return transport.NewListener(w.Provider, w.Config.Service,
		transport.WithListenerLogger(w.Entry()),
		transport.WithSessionOptions(w.SessionOptions()...),
	)
}

// Receiver returns the listener-side exchange. With a non-nil pinned key it
// announces that key instead of generating a fresh one.
func (w *Wire) Receiver(pinned *rsa.PrivateKey) *exchange.Receiver {
	opts := []exchange.ReceiverOption{exchange.WithReceiverLogger(w.Entry())}
	if pinned != nil {
		opts = append(opts, exchange.WithPinnedKey(pinned))
	}
	return exchange.NewReceiver(w.NewCipher(), opts...)
}

// ExpectedFingerprint resolves the fingerprint the listener must announce:
// explicit wins over the trust store entry for Config.Addr. An empty result
// accepts any key.
func (w *Wire) ExpectedFingerprint(explicit string) (domain.Fingerprint, error) {
	if explicit != "" {
		return crypto.ParseFingerprint(explicit)
	}
	fp, ok, err := w.Trust.Trusted(w.Config.Addr)
	if err != nil || !ok {
		return "", err
	}
	return fp, nil
}

// Sender returns the initiator-side exchange. A non-empty fingerprint pins
// the key the listener must announce.
func (w *Wire) Sender(expect domain.Fingerprint) *exchange.Sender {
	opts := []exchange.SenderOption{exchange.WithSenderLogger(w.Entry())}
	if expect != "" {
		opts = append(opts, exchange.WithExpectedFingerprint(expect))
	}
	return exchange.NewSender(w.NewCipher(), opts...)
}
