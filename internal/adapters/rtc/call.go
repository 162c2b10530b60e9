package rtc

import (
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

// Call is one peer connection. Callbacks registered after the matching
// event fire immediately on the registering goroutine.
type Call struct {
	caller    *Caller
	id        string
	remote    domain.CallAddress
	pc        *webrtc.PeerConnection
	initiator bool
	offer     string
	logger    zerolog.Logger

	mu       sync.Mutex
	closed   bool
	err      error
	playback *Playback
	onMedia  func(core.Playback)
	onClose  func()
	onError  func(error)
}

var (
	_ core.SessionHandle = (*Call)(nil)
	_ core.IncomingCall  = (*Call)(nil)
)

func (c *Caller) newCall(id string, remote domain.CallAddress, initiator bool) (*Call, error) {
	pc, err := webrtc.NewPeerConnection(c.cfg)
	if err != nil {
		return nil, err
	}
	call := &Call{
		caller:    c,
		id:        id,
		remote:    remote,
		pc:        pc,
		initiator: initiator,
		logger:    c.logger.With().Str("call", id).Str("remote", string(remote)).Logger(),
	}

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		call.logger.Debug().Str("peer_connection_state", s.String()).Msg("Peer state")
		switch s {
		case webrtc.PeerConnectionStateFailed:
			call.fail(fmt.Errorf("call %s: %w", id, ErrConnectionFailed))
		case webrtc.PeerConnectionStateClosed:
			call.close(false)
		}
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		call.logger.Info().
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")
		if track.Kind() != webrtc.RTPCodecTypeAudio {
			return
		}
		call.attach(TrackReader(track))
	})

	return call, nil
}

func (c *Call) ID() string { return c.id }

func (c *Call) RemoteAddress() domain.CallAddress { return c.remote }

func (c *Call) OnRemoteMedia(fn func(core.Playback)) {
	c.mu.Lock()
	c.onMedia = fn
	pb := c.playback
	c.mu.Unlock()
	if pb != nil {
		fn(pb)
	}
}

func (c *Call) OnClose(fn func()) {
	c.mu.Lock()
	c.onClose = fn
	closed := c.closed
	c.mu.Unlock()
	if closed {
		fn()
	}
}

func (c *Call) OnError(fn func(error)) {
	c.mu.Lock()
	c.onError = fn
	err := c.err
	c.mu.Unlock()
	if err != nil {
		fn(err)
	}
}

// Answer accepts an incoming call. The answer SDP goes out once gathering
// completes.
func (c *Call) Answer(media core.LocalMedia) error {
	if c.initiator {
		return ErrNotIncoming
	}
	if c.isClosed() {
		return ErrCallClosed
	}
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: c.offer}
	if err := c.pc.SetRemoteDescription(offer); err != nil {
		return fmt.Errorf("answer %s: apply offer: %w", c.id, err)
	}
	if err := c.addMedia(media); err != nil {
		return fmt.Errorf("answer %s: %w", c.id, err)
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("answer %s: create answer: %w", c.id, err)
	}
	gather := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("answer %s: set local description: %w", c.id, err)
	}
	go c.sendWhenGathered(gather, wire.SignalAnswer)
	return nil
}

func (c *Call) Close() { c.close(true) }

func (c *Call) close(notifyRemote bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pb := c.playback
	fn := c.onClose
	c.mu.Unlock()

	if notifyRemote {
		if err := c.caller.send(wire.CallSignal{Kind: wire.SignalBye, CallID: c.id, To: c.remote}); err != nil {
			c.logger.Debug().Err(err).Msg("bye not delivered")
		}
	}
	if pb != nil {
		pb.Release()
	}
	if err := c.pc.Close(); err != nil {
		c.logger.Error().Err(err).Msg("close error")
	}
	c.caller.forget(c.id)
	c.logger.Info().Bool("local", notifyRemote).Msg("closed")
	if fn != nil {
		fn()
	}
}

func (c *Call) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fail reports the first error only.
func (c *Call) fail(err error) {
	c.mu.Lock()
	if c.closed || c.err != nil {
		c.mu.Unlock()
		return
	}
	c.err = err
	fn := c.onError
	c.mu.Unlock()
	c.logger.Warn().Err(err).Msg("call failed")
	if fn != nil {
		fn(err)
	}
}

// attach keeps the first audio track only; a second stream from the same
// peer is ignored.
func (c *Call) attach(read ReadFunc) {
	c.mu.Lock()
	if c.closed || c.playback != nil {
		c.mu.Unlock()
		c.logger.Debug().Msg("duplicate remote stream ignored")
		return
	}
	pb := NewPlayback(read, c.caller.sinkFor(c.remote))
	c.playback = pb
	fn := c.onMedia
	c.mu.Unlock()

	go pb.Run()
	if fn != nil {
		fn(pb)
	}
}

func (c *Call) addMedia(media core.LocalMedia) error {
	if media == nil {
		_, err := c.pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		})
		return err
	}
	_, err := c.pc.AddTrack(media)
	return err
}

func (c *Call) sendWhenGathered(gather <-chan struct{}, kind string) {
	timer := time.NewTimer(c.caller.GatherTimeout)
	defer timer.Stop()
	select {
	case <-gather:
	case <-timer.C:
		c.fail(fmt.Errorf("call %s: %w", c.id, ErrGatherTimeout))
		return
	}
	if c.isClosed() {
		return
	}
	desc := c.pc.LocalDescription()
	if desc == nil {
		c.fail(fmt.Errorf("call %s: no local description", c.id))
		return
	}
	msg := wire.CallSignal{Kind: kind, CallID: c.id, To: c.remote, SDP: desc.SDP}
	if err := c.caller.send(msg); err != nil {
		c.fail(fmt.Errorf("call %s: send %s: %w", c.id, kind, err))
	}
}
