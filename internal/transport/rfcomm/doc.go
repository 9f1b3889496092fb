// Package rfcomm provides relay streams over Bluetooth RFCOMM sockets.
//
// Only Linux (BlueZ, AF_BLUETOOTH) is supported; on other systems Dial and
// Listen return ErrUnsupported. Service discovery records are not published:
// a service identifier is a UUID that maps onto the configured channel, and
// the peer is expected to know that channel.
package rfcomm
