// Package tcp provides relay streams over TCP, for hosts that share a local
// network instead of a Bluetooth link.
package tcp
