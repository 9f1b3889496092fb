// Package session owns one live connection over an adopted stream.
//
// A Session is single-use: it starts Idle, becomes Open once a stream is
// adopted (Open) or acquired (Connect), and ends Closed. One goroutine per
// open Session runs the read loop, which is the sole producer on the
// Messages channel. Send may be called from any goroutine; concurrent sends
// never interleave within a frame. Close may be called at any time, any
// number of times.
//
// # Termination
//
// The read loop stops when:
//
//   - the peer closes the stream at a frame boundary (Err returns nil),
//   - Close is called (Err returns nil),
//   - a frame header is malformed (Err matches frame.ErrMalformedFrame and the
//     session closes its stream itself), or
//   - the stream fails mid-read (Err returns the read error).
//
// In every case Messages is closed after the last message and Done is closed.
package session
