// Package main runs the otpd listener: it binds the configured service,
// accepts one initiator at a time and prints every OTP it receives.
//
// Behaviour
//
//   - A new inbound connection closes the active one; only the latest peer
//     is served.
//   - Each accepted session gets its own exchange: a key announcement
//     followed by a wait for the encrypted OTP.
//   - Without --pinned a fresh keypair is generated for every session. With
//     --pinned the key created by "otprelay keygen" is unsealed once with
//     --passphrase and announced every time, so initiators can pin its
//     fingerprint.
//   - OTPs go to stdout, one per line. Logs go to stderr.
//   - --once exits after the first OTP.
//
// The listener never retries a failed bind; restart the process instead.
package main
