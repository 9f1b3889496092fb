// Package transport adapts stream providers to the two relay roles.
//
// An Initiator dials a known peer and hands back an open session. A Listener
// binds a service, accepts inbound streams and keeps at most one session
// alive: each new connection closes the previous one.
package transport
