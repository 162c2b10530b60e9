package signal

import "github.com/dkeye/Office/internal/domain"

type Action int

const (
	ActionDrop Action = iota
	ActionKick
)

// Policy decides what happens to a client whose send queue is full.
type Policy interface {
	OnBackpressure(id domain.ParticipantID) Action
}

// KickSlowConsumer closes the socket; the client reconnects and starts
// again from a fresh snapshot.
type KickSlowConsumer struct{}

func (KickSlowConsumer) OnBackpressure(domain.ParticipantID) Action { return ActionKick }

// DropFrame keeps the connection and discards the frame.
type DropFrame struct{}

func (DropFrame) OnBackpressure(domain.ParticipantID) Action { return ActionDrop }

// SetPolicy replaces the backpressure policy. Call before serving.
func (h *Hub) SetPolicy(p Policy) { h.policy = p }
