package store

import (
	"path/filepath"
	"strings"
	"sync"

	"otprelay/internal/domain"
)

const trustFile = "trusted_peers.json"

// TrustFileStore remembers the key fingerprint expected from each listener,
// keyed by the peer's address.
type TrustFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewTrustFileStore returns a TrustFileStore rooted at dir.
func NewTrustFileStore(dir string) *TrustFileStore {
	return &TrustFileStore{dir: dir}
}

func (s *TrustFileStore) path() string { return filepath.Join(s.dir, trustFile) }

// peerKey normalises addresses so "aa:bb:.." and "AA:BB:.." match.
func peerKey(peer string) string { return strings.ToUpper(strings.TrimSpace(peer)) }

func (s *TrustFileStore) load() (map[string]domain.Fingerprint, error) {
	m := map[string]domain.Fingerprint{}
	if err := readJSON(s.path(), &m); err != nil {
		return nil, err
	}
	// A file holding JSON null decodes to a nil map.
	if m == nil {
		m = map[string]domain.Fingerprint{}
	}
	return m, nil
}

// Trust records fp as the expected fingerprint for peer, replacing any
// earlier entry.
func (s *TrustFileStore) Trust(peer string, fp domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	m[peerKey(peer)] = domain.Fingerprint(strings.ToLower(fp.String()))
	return writeJSON(s.path(), m, 0o600)
}

// Trusted returns the fingerprint recorded for peer and whether one exists.
func (s *TrustFileStore) Trusted(peer string) (domain.Fingerprint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return "", false, err
	}
	fp, ok := m[peerKey(peer)]
	return fp, ok, nil
}

// Forget drops the entry for peer. Forgetting an unknown peer is not an error.
func (s *TrustFileStore) Forget(peer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := m[peerKey(peer)]; !ok {
		return nil
	}
	delete(m, peerKey(peer))
	return writeJSON(s.path(), m, 0o600)
}

// Compile-time assertion that TrustFileStore implements domain.TrustStore.
var _ domain.TrustStore = (*TrustFileStore)(nil)
