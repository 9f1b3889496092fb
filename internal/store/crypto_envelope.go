package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"otprelay/internal/util/memzero"
)

const (
	// The current supported version of the sealed key format stored on disk.
	keystoreFormatVersion = 1

	// Bound into the AEAD so a blob cannot be replayed as another record type.
	listenerKeyPurpose = "otprelay/listener-key"
)

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// sealed blob has been modified.
	ErrWrongPassphrase = errors.New("store: wrong passphrase or corrupted key file")
)

// blob is the on-disk JSON structure holding the ciphertext and KDF parameters.
type blob struct {
	V       int    `json:"v"`
	Purpose string `json:"purpose"`
	Salt    []byte `json:"salt"`
	N       int    `json:"scrypt_N"`
	R       int    `json:"scrypt_r"`
	P       int    `json:"scrypt_p"`
	Cipher  []byte `json:"cipher"`
}

type kdfParams struct{ N, R, P int }

// Tunables for scrypt key derivation.
func scryptParamsDefault() kdfParams { return kdfParams{N: 1 << 15, R: 8, P: 1} }

// seal derives a key from passphrase and seals raw into a JSON blob.
func seal(passphrase, purpose string, raw []byte, kp kdfParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], kp.N, kp.R, kp.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; the salt makes every key unique
	ct := aead.Seal(nil, nonce[:], raw, additionalData(purpose, salt[:]))

	return json.Marshal(blob{
		V:       keystoreFormatVersion,
		Purpose: purpose,
		Salt:    salt[:],
		N:       kp.N,
		R:       kp.R,
		P:       kp.P,
		Cipher:  ct,
	})
}

// open reverses seal.
func open(passphrase, purpose string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, fmt.Errorf("store: decode key file: %w", err)
	}
	if bl.V > keystoreFormatVersion {
		return nil, fmt.Errorf("store: unsupported keystore version %d", bl.V)
	}
	if bl.Purpose != purpose {
		return nil, fmt.Errorf("store: key file holds %q, want %q", bl.Purpose, purpose)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, additionalData(purpose, bl.Salt))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

func additionalData(purpose string, salt []byte) []byte {
	return append([]byte(purpose), salt...)
}
