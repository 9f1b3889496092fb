// Package exchange sequences the key announcement and OTP transfer over an
// open session.
//
// The listener side runs a Receiver: it announces a public key and waits for
// the encrypted OTP. The initiator side runs a Sender: it waits for the
// announcement, encrypts the OTP to that key and sends it back. Neither side
// touches the stream directly; both work through Conn.
package exchange
