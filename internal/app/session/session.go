package session

import (
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
)

// Session is one entry of the active set. Only the owning loop touches it.
type Session struct {
	Peer      domain.ParticipantID
	Address   domain.CallAddress
	Initiator bool

	gen      uint64
	handle   core.SessionHandle
	playback core.Playback
	gain     float64
}

// SetGain records the gain and applies it to the playback resource if one
// exists. Before remote media arrives it only records the value, which is
// applied when the playback attaches.
func (s *Session) SetGain(g float64) {
	s.gain = g
	if s.playback == nil {
		return
	}
	s.playback.SetGain(g)
}

func (s *Session) Gain() float64 { return s.gain }

func (s *Session) HasPlayback() bool { return s.playback != nil }
