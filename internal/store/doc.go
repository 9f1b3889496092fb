// Package store provides file-based persistence for otprelay.
//
// Two records live under the configured home directory:
//
//   - listener_key.enc: the listener's pinned RSA private key, sealed with a
//     key derived from a passphrase (scrypt) under ChaCha20-Poly1305.
//   - trusted_peers.json: the key fingerprint expected from each listener
//     the initiator talks to, keyed by peer address.
//
// Files are written atomically (temp file then rename). Methods are
// concurrency-safe via internal locking.
package store
