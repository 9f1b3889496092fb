// Package commands defines the otprelay CLI and wires dependencies for subcommands.
//
// Commands
//
//   - send           Connect to the listener and relay an OTP
//   - ping           Connect to the listener and send a test frame
//   - keygen         Create or replace the pinned listener key
//   - fingerprint    Print the pinned listener key fingerprint
//   - trust          Remember the fingerprint to expect from --addr
//   - untrust        Forget the fingerprint remembered for --addr
//
// # Implementation
//
// The root command validates the shared flags and builds the dependency graph
// (provider, keystore, identity service, logger) before any subcommand runs.
// send and ping take the initiator role; keygen and fingerprint manage the key
// that otpd announces when started with --pinned.
package commands
