// Package identity manages the listener's optional pinned keypair.
//
// By default the listener announces a fresh keypair per exchange. A pinned
// keypair is generated once, sealed with a passphrase via the
// domain.KeyStore, and announced instead, so the initiator can check its
// fingerprint out of band.
package identity
