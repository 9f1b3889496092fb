// Package crypto implements the OTP handshake and cipher.
//
// Contents
//
//   - Cipher, holding two independent key slots: our RSA keypair (used to
//     decrypt what the peer sends) and the peer's imported public key (used
//     to encrypt what we send)
//   - Public key interchange as PEM-encoded PKIX (ExportPublicKey,
//     ImportPublicKey)
//   - Salted RSA-OAEP/SHA-512 encryption of short strings (Encrypt, Decrypt)
//   - Short public-key fingerprints for display and pinning (Fingerprint)
//   - Base64 helpers (B64, UnB64)
//
// # Salt
//
// Encrypt appends floor(n/2) random printable characters to an n-character
// plaintext; Decrypt removes floor(m/3) characters from an m-character
// decryption. The salt only varies the ciphertext of repeated short inputs.
// It is not a MAC.
//
// # Notes
//
// A Cipher is not safe for concurrent use. Callers that share one across
// goroutines must serialise access.
package crypto
