package exchange

import "errors"

var (
	// ErrEmptyOTP is returned by Relay when there is nothing to send.
	ErrEmptyOTP = errors.New("exchange: empty otp")

	// ErrConnectionLost is returned when the session ends before the
	// exchange completes. The session's own error, if any, is wrapped too.
	ErrConnectionLost = errors.New("exchange: connection lost")

	// ErrFingerprintMismatch is returned when the announced key does not
	// match the expected fingerprint.
	ErrFingerprintMismatch = errors.New("exchange: announced key fingerprint mismatch")
)
