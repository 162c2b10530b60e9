package rtc

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

type TrackState int32

const (
	TrackStateOk TrackState = iota
	TrackStateMuted
	TrackStateDelete
)

// Sink receives the remote packets of one peer while it is audible.
type Sink interface {
	WriteRTP(*rtp.Packet) error
}

type discard struct{}

func (discard) WriteRTP(*rtp.Packet) error { return nil }

// ReadFunc yields the next RTP packet of a remote track.
type ReadFunc func() (*rtp.Packet, error)

func TrackReader(track *webrtc.TrackRemote) ReadFunc {
	return func() (*rtp.Packet, error) {
		pkt, _, err := track.ReadRTP()
		return pkt, err
	}
}

// Playback drains one remote audio track. Gain 0 mutes it; after Release
// returns nothing more reaches the sink.
type Playback struct {
	read ReadFunc
	sink Sink

	state atomic.Int32
	gain  atomic.Uint64

	mu       sync.Mutex
	received atomic.Uint64
	written  atomic.Uint64
	done     chan struct{}
}

func NewPlayback(read ReadFunc, sink Sink) *Playback {
	if sink == nil {
		sink = discard{}
	}
	p := &Playback{read: read, sink: sink, done: make(chan struct{})}
	p.state.Store(int32(TrackStateMuted))
	return p
}

func (p *Playback) State() TrackState { return TrackState(p.state.Load()) }

func (p *Playback) Gain() float64 { return math.Float64frombits(p.gain.Load()) }

func (p *Playback) SetGain(gain float64) {
	gain = max(0, min(1, gain))
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.State() == TrackStateDelete {
		return
	}
	p.gain.Store(math.Float64bits(gain))
	if gain == 0 {
		p.state.Store(int32(TrackStateMuted))
	} else {
		p.state.Store(int32(TrackStateOk))
	}
}

func (p *Playback) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Store(int32(TrackStateDelete))
}

// Run reads until the track ends or the playback is released.
func (p *Playback) Run() {
	defer close(p.done)
	for {
		pkt, err := p.read()
		if err != nil {
			p.Release()
			return
		}
		p.received.Add(1)
		if !p.forward(pkt) {
			return
		}
	}
}

func (p *Playback) forward(pkt *rtp.Packet) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.State() {
	case TrackStateDelete:
		return false
	case TrackStateMuted:
	case TrackStateOk:
		if err := p.sink.WriteRTP(pkt); err != nil {
			p.state.Store(int32(TrackStateDelete))
			return false
		}
		p.written.Add(1)
	}
	return true
}

// Done is closed when Run returns.
func (p *Playback) Done() <-chan struct{} { return p.done }

func (p *Playback) Stats() (received, written uint64) {
	return p.received.Load(), p.written.Load()
}
