package irc

import "errors"

// Sentinel errors returned by the session engine. Callers should compare
// against these with errors.Is, since some are wrapped with additional
// context before being returned.
var (
	// ErrNotConnected is returned when an operation that requires an open
	// connection is attempted before Connect or after Disconnect.
	ErrNotConnected = errors.New("irc: not connected")

	// ErrDisconnected is returned to callers waiting on a pending
	// operation (registration, an in-flight aggregator) when the
	// connection is torn down before that operation resolves.
	ErrDisconnected = errors.New("irc: disconnected")

	// ErrBusy is returned by a query method (Whois, Names, ...) when
	// another query for the same key is already in flight.
	ErrBusy = errors.New("irc: request already in flight for this key")

	// ErrTimeout is returned when an aggregator's deadline elapses before
	// the server sends a terminating reply.
	ErrTimeout = errors.New("irc: request timed out waiting for server reply")

	// ErrPingTimeout is delivered as an error event, and used to trigger
	// disconnection, when the server stops answering keepalive pings.
	ErrPingTimeout = errors.New("irc: server did not respond to PING before timeout")

	// ErrSASLFailed indicates the server rejected SASL authentication.
	ErrSASLFailed = errors.New("irc: SASL authentication failed")

	// ErrTransportOpen wraps a failure to establish the underlying
	// connection.
	ErrTransportOpen = errors.New("irc: transport open failed")

	// ErrTransportRead wraps a failure reading from the underlying
	// connection.
	ErrTransportRead = errors.New("irc: transport read failed")

	// ErrTransportWrite wraps a failure writing to the underlying
	// connection.
	ErrTransportWrite = errors.New("irc: transport write failed")
)
