package crypto

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"strings"

	"otprelay/internal/domain"
)

const fingerprintLen = 10

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(pub []byte) domain.Fingerprint {
	sum := sha256.Sum256(pub)
	return domain.Fingerprint(hex.EncodeToString(sum[:fingerprintLen]))
}

// PublicKeyFingerprint fingerprints the PKIX DER encoding of pub.
func PublicKeyFingerprint(pub *rsa.PublicKey) (domain.Fingerprint, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return Fingerprint(der), nil
}

// ParseFingerprint normalises a user-supplied fingerprint. Colons and spaces
// are ignored; the result must be 20 hex characters.
func ParseFingerprint(s string) (domain.Fingerprint, error) {
	clean := strings.ToLower(strings.NewReplacer(":", "", " ", "").Replace(s))
	b, err := hex.DecodeString(clean)
	if err != nil || len(b) != fingerprintLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidFingerprint, s)
	}
	return domain.Fingerprint(clean), nil
}
