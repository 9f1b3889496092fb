package store

import (
	"crypto/rsa"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"otprelay/internal/crypto"
	"otprelay/internal/domain"
	"otprelay/internal/util/memzero"
)

const keyFilename = "listener_key.enc"

// ErrNoKey is returned by LoadKey when nothing has been saved yet.
var ErrNoKey = errors.New("store: no listener key saved")

// KeyFileStore persists the listener's pinned RSA key, sealed with a passphrase.
type KeyFileStore struct {
	dir string
	kdf kdfParams
	mu  sync.Mutex
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir string) *KeyFileStore {
	return &KeyFileStore{dir: dir, kdf: scryptParamsDefault()}
}

// Path returns the location of the sealed key file.
func (s *KeyFileStore) Path() string { return filepath.Join(s.dir, keyFilename) }

// SaveKey seals key as PKCS#8 and writes it to disk, replacing any previous key.
func (s *KeyFileStore) SaveKey(passphrase string, key *rsa.PrivateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := crypto.MarshalPrivateKey(key)
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)

	b, err := seal(passphrase, listenerKeyPurpose, raw, s.kdf)
	if err != nil {
		return err
	}
	return writeFile(s.Path(), b, 0o600)
}

// LoadKey reads and unseals the key.
func (s *KeyFileStore) LoadKey(passphrase string) (*rsa.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.Path())
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNoKey
	}
	raw, err := open(passphrase, listenerKeyPurpose, b)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(raw)
	return crypto.ParsePrivateKey(raw)
}

// HasKey reports whether a sealed key file exists.
func (s *KeyFileStore) HasKey() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Compile-time assertion that KeyFileStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyFileStore)(nil)
