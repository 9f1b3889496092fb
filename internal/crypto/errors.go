package crypto

import "errors"

var (
	// ErrNoKeypair is returned when our keypair is needed but none exists.
	ErrNoKeypair = errors.New("crypto: no keypair")

	// ErrNotInitialized is returned by Encrypt without an imported peer key and
	// by Decrypt without our own keypair.
	ErrNotInitialized = errors.New("crypto: key not initialized")

	// ErrInvalidPublicKey is returned by ImportPublicKey for malformed key material.
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")

	// ErrInvalidFingerprint is returned by ParseFingerprint.
	ErrInvalidFingerprint = errors.New("crypto: invalid fingerprint")

	// ErrDecryptionFailed covers every Decrypt failure after the key check,
	// whichever step failed.
	ErrDecryptionFailed = errors.New("crypto: decryption failed")
)
