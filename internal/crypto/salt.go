package crypto

import (
	"encoding/base64"
	"io"
	"unicode/utf8"
)

// saltLength is the number of salt characters Encrypt appends.
func saltLength(plaintext string) int {
	return utf8.RuneCountInString(plaintext) / 2
}

// stripLength is the number of trailing characters Decrypt removes. It is
// computed from the decrypted text, independently of saltLength.
func stripLength(decrypted string) int {
	return utf8.RuneCountInString(decrypted) / 3
}

func stripSalt(decrypted string) string {
	runes := []rune(decrypted)
	return string(runes[:len(runes)-stripLength(decrypted)])
}

// randomSalt returns n printable characters: n non-zero random bytes,
// base64-encoded and truncated.
func randomSalt(r io.Reader, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	var one [1]byte
	for i := range b {
		for b[i] == 0 {
			if _, err := io.ReadFull(r, one[:]); err != nil {
				return "", err
			}
			b[i] = one[0]
		}
	}
	return base64.StdEncoding.EncodeToString(b)[:n], nil
}
