// Package app wires application dependencies for the CLIs.
//
// It validates Config, builds the logger, the stream provider, the keystore
// and the identity service, and hands out per-exchange ciphers, sessions
// and role adapters through the Wire struct.
package app
