package signaling

import "errors"

var (
	// ErrUnknownConnection is returned when delivering to an id that is not live.
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrConnectionClosed is returned when delivering to a closing connection.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrSendBufferFull is returned when a connection does not drain its queue.
	ErrSendBufferFull = errors.New("send buffer full")

	// ErrAlreadyInRoom is returned when joining while still in another room.
	ErrAlreadyInRoom = errors.New("connection already in another room")

	// ErrUnknownEventType is returned when decoding a frame with an unsupported type.
	ErrUnknownEventType = errors.New("unknown event type")
)
