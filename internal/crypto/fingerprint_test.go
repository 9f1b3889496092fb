package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otprelay/internal/crypto"
)

func TestFingerprint_Stable(t *testing.T) {
	a := crypto.Fingerprint([]byte("key material"))
	b := crypto.Fingerprint([]byte("key material"))
	assert.Equal(t, a, b)
	assert.Len(t, a.String(), 20)
	assert.NotEqual(t, a, crypto.Fingerprint([]byte("other material")))
}

func TestParseFingerprint(t *testing.T) {
	fp, err := crypto.ParseFingerprint("0A:1B:2C:3D:4E 5F:60:71:82:93")
	require.NoError(t, err)
	assert.Equal(t, "0a1b2c3d4e5f60718293", fp.String())

	for _, bad := range []string{"", "0a1b", "zz1b2c3d4e5f60718293", "0a1b2c3d4e5f6071829300"} {
		_, err := crypto.ParseFingerprint(bad)
		assert.ErrorIs(t, err, crypto.ErrInvalidFingerprint, bad)
	}
}

func TestParseFingerprint_MatchesCipher(t *testing.T) {
	d := desktop(t)
	fp, err := d.Fingerprint()
	require.NoError(t, err)
	parsed, err := crypto.ParseFingerprint(fp.String())
	require.NoError(t, err)
	assert.Equal(t, fp, parsed)
}
