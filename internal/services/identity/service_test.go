package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otprelay/internal/crypto"
	"otprelay/internal/services/identity"
	"otprelay/internal/store"
)

const strong = "Pinned-Desktop-42!"

func TestGenerateIdentity_WeakPassphrase(t *testing.T) {
	svc := identity.New(store.NewKeyFileStore(t.TempDir()), 0)
	for _, p := range []string{"", "short1!A", "alllowercase-123", "NoDigitsHere!!", "NoSymbols12345"} {
		_, _, err := svc.GenerateIdentity(p)
		assert.ErrorIs(t, err, identity.ErrWeakPassphrase, p)
	}
}

func TestGenerateLoadFingerprint(t *testing.T) {
	svc := identity.New(store.NewKeyFileStore(t.TempDir()), 0)

	key, fp, err := svc.GenerateIdentity(strong)
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Len(t, fp.String(), 20)

	loaded, err := svc.LoadIdentity(strong)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(key))

	got, err := svc.FingerprintIdentity(strong)
	require.NoError(t, err)
	assert.Equal(t, fp, got)

	// The announced key carries the same fingerprint.
	c := crypto.NewCipher()
	require.NoError(t, c.SetKeypair(loaded))
	announced, err := c.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp, announced)
}
