package core

import "errors"

// Frame is one encoded signaling message.
type Frame []byte

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection is the outbound half of a client's signaling transport.
// TrySend never blocks; a full queue reports ErrBackpressure.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
