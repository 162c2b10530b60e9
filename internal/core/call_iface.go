package core

import (
	"github.com/dkeye/Office/internal/domain"
	"github.com/pion/webrtc/v4"
)

// LocalMedia is the outbound audio attached to every dialed or answered call.
type LocalMedia = webrtc.TrackLocal

// Playback is the per-peer output resource created when remote media arrives.
type Playback interface {
	// SetGain takes a value in [0,1].
	SetGain(gain float64)
	// Release stops playout and frees the resource. Safe to call twice.
	Release()
}

// SessionHandle is one voice session as seen by its owner. Callbacks may run
// on any goroutine. A callback registered after the event already happened
// fires immediately.
type SessionHandle interface {
	RemoteAddress() domain.CallAddress
	// Close is idempotent and fires OnClose once.
	Close()
	OnRemoteMedia(func(Playback))
	OnClose(func())
	OnError(func(error))
}

type IncomingCall interface {
	SessionHandle
	Answer(media LocalMedia) error
}

// Caller is the call-establishment primitive. Dial must not block on
// negotiation; progress is reported through the handle callbacks.
type Caller interface {
	Address() domain.CallAddress
	Dial(addr domain.CallAddress, media LocalMedia) (SessionHandle, error)
	OnIncoming(func(IncomingCall))
}
