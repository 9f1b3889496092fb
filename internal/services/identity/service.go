package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"unicode"

	"otprelay/internal/crypto"
	"otprelay/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
)

// Service manages the pinned listener keypair using a backing store.
type Service struct {
	store domain.KeyStore
	bits  int
}

// New returns an identity service backed by the given store. bits selects the
// RSA modulus size of generated keys; zero means crypto.DefaultKeyBits.
func New(s domain.KeyStore, bits int) *Service {
	if bits <= 0 {
		bits = crypto.DefaultKeyBits
	}
	return &Service{store: s, bits: bits}
}

// GenerateIdentity creates a new keypair, saves it sealed with the passphrase,
// and returns it with the fingerprint of its public half. Any previous pinned
// key is replaced.
func (s *Service) GenerateIdentity(passphrase string) (*rsa.PrivateKey, domain.Fingerprint, error) {
	if !isSecurePassphrase(passphrase) {
		return nil, "", ErrWeakPassphrase
	}

	key, err := rsa.GenerateKey(rand.Reader, s.bits)
	if err != nil {
		return nil, "", fmt.Errorf("generate identity: %w", err)
	}
	if err := s.store.SaveKey(passphrase, key); err != nil {
		return nil, "", err
	}
	fp, err := crypto.PublicKeyFingerprint(&key.PublicKey)
	if err != nil {
		return nil, "", err
	}
	return key, fp, nil
}

// LoadIdentity unseals and returns the pinned keypair.
func (s *Service) LoadIdentity(passphrase string) (*rsa.PrivateKey, error) {
	return s.store.LoadKey(passphrase)
}

// FingerprintIdentity returns the fingerprint of the pinned public key.
func (s *Service) FingerprintIdentity(passphrase string) (domain.Fingerprint, error) {
	key, err := s.store.LoadKey(passphrase)
	if err != nil {
		return "", err
	}
	return crypto.PublicKeyFingerprint(&key.PublicKey)
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
