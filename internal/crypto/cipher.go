package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"

	"otprelay/internal/domain"
	"otprelay/internal/util/memzero"
)

// DefaultKeyBits is the RSA modulus size used by GenerateKeypair.
const DefaultKeyBits = 2048

const pemPublicKey = "PUBLIC KEY"

// Option configures a Cipher.
type Option func(*Cipher)

// WithKeyBits sets the modulus size of generated keypairs.
func WithKeyBits(bits int) Option {
	return func(c *Cipher) {
		if bits > 0 {
			c.bits = bits
		}
	}
}

// WithRandom sets the entropy source for key generation, padding and salt.
func WithRandom(r io.Reader) Option {
	return func(c *Cipher) {
		if r != nil {
			c.rand = r
		}
	}
}

// Cipher holds our keypair and the peer's public key.
type Cipher struct {
	bits int
	rand io.Reader

	own  *rsa.PrivateKey
	peer *rsa.PublicKey
}

// NewCipher returns a Cipher with both key slots empty.
func NewCipher(opts ...Option) *Cipher {
	c := &Cipher{bits: DefaultKeyBits, rand: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateKeypair creates a fresh keypair, replacing (and so invalidating)
// any keypair generated or announced before.
func (c *Cipher) GenerateKeypair() error {
	k, err := rsa.GenerateKey(c.rand, c.bits)
	if err != nil {
		return fmt.Errorf("crypto: generate keypair: %w", err)
	}
	c.own = k
	return nil
}

// SetKeypair adopts an existing keypair, e.g. one loaded from a keystore.
func (c *Cipher) SetKeypair(k *rsa.PrivateKey) error {
	if k == nil {
		return ErrNoKeypair
	}
	if err := k.Validate(); err != nil {
		return fmt.Errorf("crypto: set keypair: %w", err)
	}
	c.own = k
	return nil
}

// HasKeypair reports whether our keypair slot is filled.
func (c *Cipher) HasKeypair() bool { return c.own != nil }

// HasPeerKey reports whether a peer public key has been imported.
func (c *Cipher) HasPeerKey() bool { return c.peer != nil }

// ExportPublicKey serialises our public key for a PublicKeyAnnouncement.
func (c *Cipher) ExportPublicKey() ([]byte, error) {
	if c.own == nil {
		return nil, ErrNoKeypair
	}
	return MarshalPublicKey(&c.own.PublicKey)
}

// ImportPublicKey parses a key announced by the peer and adopts it for
// Encrypt, discarding any key imported before. If we hold no keypair yet,
// one is generated first so that both slots are usable.
func (c *Cipher) ImportPublicKey(b []byte) error {
	if c.own == nil {
		if err := c.GenerateKeypair(); err != nil {
			return err
		}
	}
	pub, err := ParsePublicKey(b)
	if err != nil {
		return err
	}
	c.peer = pub
	return nil
}

// Fingerprint returns the fingerprint of our public key.
func (c *Cipher) Fingerprint() (domain.Fingerprint, error) {
	if c.own == nil {
		return "", ErrNoKeypair
	}
	return PublicKeyFingerprint(&c.own.PublicKey)
}

// PeerFingerprint returns the fingerprint of the imported peer key.
func (c *Cipher) PeerFingerprint() (domain.Fingerprint, error) {
	if c.peer == nil {
		return "", ErrNotInitialized
	}
	return PublicKeyFingerprint(c.peer)
}

// Encrypt salts plaintext and encrypts it to the peer key with
// RSA-OAEP/SHA-512, returning base64 text. An empty plaintext yields an
// empty ciphertext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if c.peer == nil {
		return "", ErrNotInitialized
	}
	if plaintext == "" {
		return "", nil
	}

	salt, err := randomSalt(c.rand, saltLength(plaintext))
	if err != nil {
		return "", fmt.Errorf("crypto: salt: %w", err)
	}
	buf := []byte(plaintext + salt)
	defer memzero.Zero(buf)

	ct, err := rsa.EncryptOAEP(sha512.New(), c.rand, c.peer, buf, nil)
	if err != nil {
		return "", fmt.Errorf("crypto: encrypt: %w", err)
	}
	return B64(ct), nil
}

// Decrypt reverses Encrypt with our private key and strips the trailing salt.
// An empty ciphertext yields an empty plaintext.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if c.own == nil {
		return "", ErrNotInitialized
	}
	if ciphertext == "" {
		return "", nil
	}

	ct, err := UnB64(ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	pt, err := rsa.DecryptOAEP(sha512.New(), nil, c.own, ct, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	defer memzero.Zero(pt)
	return stripSalt(string(pt)), nil
}

// MarshalPublicKey encodes pub as a PEM "PUBLIC KEY" block (PKIX).
func MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("crypto: marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemPublicKey, Bytes: der}), nil
}

// ParsePublicKey accepts a PEM "PUBLIC KEY" (PKIX) or "RSA PUBLIC KEY"
// (PKCS#1) block, or bare PKIX DER.
func ParsePublicKey(b []byte) (*rsa.PublicKey, error) {
	if len(b) == 0 {
		return nil, ErrInvalidPublicKey
	}

	der, typ := b, pemPublicKey
	if block, _ := pem.Decode(b); block != nil {
		der, typ = block.Bytes, block.Type
	}

	switch typ {
	case pemPublicKey:
		key, err := x509.ParsePKIXPublicKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an RSA key", ErrInvalidPublicKey, key)
		}
		return pub, nil
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrInvalidPublicKey, typ)
	}
}

// MarshalPrivateKey encodes k as PKCS#8 DER.
func MarshalPrivateKey(k *rsa.PrivateKey) ([]byte, error) {
	return x509.MarshalPKCS8PrivateKey(k)
}

// ParsePrivateKey decodes a PKCS#8 DER RSA key.
func ParsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	k, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("crypto: stored key is not RSA")
	}
	return k, nil
}
