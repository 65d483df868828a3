package interfaces

// Connection is the duplex message channel of one client as seen by the
// matchmaking core.
type Connection interface {
	// WriteJSON queues v for delivery to the client. Implementations must
	// not block the caller on a slow peer; a full buffer is reported as an
	// error and the message is dropped.
	WriteJSON(v any) error

	// Close closes the channel. Repeated calls are no-ops.
	Close() error

	// RemoteAddr identifies the client in logs.
	RemoteAddr() string
}
