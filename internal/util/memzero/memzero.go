// Package memzero wipes sensitive buffers such as decrypted OTPs and
// serialised private keys.
package memzero

import "crypto/subtle"

// Zero overwrites every buffer with zeros in a constant-time friendly way.
// It is best-effort: copies made elsewhere are not reached.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		subtle.XORBytes(b, b, b)
	}
}
