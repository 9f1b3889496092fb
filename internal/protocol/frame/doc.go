// Package frame implements the wire codec shared by both roles.
//
// Wire format
//
//	byte 0      kind (uint8)
//	bytes 1..4  payload length (uint32, big-endian)
//	bytes 5..N  payload, exactly length bytes
//
// There is no delimiter, version byte or checksum. A corrupt length cannot be
// recovered from, so Decode reports it as a malformed frame and callers must
// drop the connection.
package frame
