package session

import (
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
)

type EventKind int

const (
	EventIncoming EventKind = iota
	EventRemoteMedia
	EventClosed
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventIncoming:
		return "incoming"
	case EventRemoteMedia:
		return "remote_media"
	case EventClosed:
		return "closed"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Event is a call primitive callback turned into a message for the owning
// loop. Gen identifies which session of Peer produced it.
type Event struct {
	Kind     EventKind
	Peer     domain.ParticipantID
	Gen      uint64
	Playback core.Playback
	Call     core.IncomingCall
	Err      error
}

// release frees whatever resource an undelivered event carries.
func (ev Event) release() {
	if ev.Playback != nil {
		ev.Playback.Release()
	}
	if ev.Call != nil {
		ev.Call.Close()
	}
}
