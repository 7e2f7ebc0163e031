package core

// Frame is one encoded message for a client.
type Frame []byte

// SessionID identifies one client connection (the client token cookie).
type SessionID string

// SignalConnection abstracts the messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
