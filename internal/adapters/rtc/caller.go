// Package rtc implements the call primitive on top of pion/webrtc with
// vanilla ICE: each side sends one SDP after gathering completes.
package rtc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Office/internal/adapters/wire"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

var (
	ErrNoAddress        = errors.New("empty call address")
	ErrCallerClosed     = errors.New("caller closed")
	ErrCallClosed       = errors.New("call closed")
	ErrNotIncoming      = errors.New("answer on an outgoing call")
	ErrGatherTimeout    = errors.New("ice gathering timed out")
	ErrConnectionFailed = errors.New("peer connection failed")
)

const DefaultGatherTimeout = 10 * time.Second

// Signaler delivers call negotiation to the peer owning msg.To.
type Signaler interface {
	SendSignal(msg wire.CallSignal) error
}

type Caller struct {
	cfg      webrtc.Configuration
	signaler Signaler
	addr     domain.CallAddress
	logger   zerolog.Logger
	sink     func(domain.CallAddress) Sink

	GatherTimeout time.Duration

	mu         sync.Mutex
	calls      map[string]*Call
	onIncoming func(core.IncomingCall)
	closed     bool
}

func NewCaller(cfg webrtc.Configuration, signaler Signaler, logger zerolog.Logger) *Caller {
	addr := domain.CallAddress(uuid.NewString())
	return &Caller{
		cfg:           cfg,
		signaler:      signaler,
		addr:          addr,
		logger:        logger.With().Str("module", "adapters.rtc").Str("address", string(addr)).Logger(),
		GatherTimeout: DefaultGatherTimeout,
		calls:         make(map[string]*Call),
	}
}

var _ core.Caller = (*Caller)(nil)

func (c *Caller) Address() domain.CallAddress { return c.addr }

func (c *Caller) OnIncoming(fn func(core.IncomingCall)) {
	c.mu.Lock()
	c.onIncoming = fn
	c.mu.Unlock()
}

// SetSink chooses where audible packets of each peer go. Without one they
// are discarded after being counted.
func (c *Caller) SetSink(fn func(domain.CallAddress) Sink) {
	c.mu.Lock()
	c.sink = fn
	c.mu.Unlock()
}

// Dial starts negotiation and returns at once; the offer is sent when ICE
// gathering completes.
func (c *Caller) Dial(addr domain.CallAddress, media core.LocalMedia) (core.SessionHandle, error) {
	if addr == "" {
		return nil, ErrNoAddress
	}
	call, err := c.newCall(uuid.NewString(), addr, true)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if err := call.addMedia(media); err != nil {
		call.close(false)
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	offer, err := call.pc.CreateOffer(nil)
	if err != nil {
		call.close(false)
		return nil, fmt.Errorf("dial %s: create offer: %w", addr, err)
	}
	gather := webrtc.GatheringCompletePromise(call.pc)
	if err := call.pc.SetLocalDescription(offer); err != nil {
		call.close(false)
		return nil, fmt.Errorf("dial %s: set local description: %w", addr, err)
	}
	if err := c.track(call); err != nil {
		call.close(false)
		return nil, err
	}
	c.logger.Debug().Str("call", call.id).Str("to", string(addr)).Msg("dialing")
	go call.sendWhenGathered(gather, wire.SignalOffer)
	return call, nil
}

// HandleSignal consumes negotiation addressed to this caller.
func (c *Caller) HandleSignal(msg wire.CallSignal) {
	switch msg.Kind {
	case wire.SignalOffer:
		c.handleOffer(msg)
	case wire.SignalAnswer:
		call, ok := c.lookup(msg)
		if !ok {
			return
		}
		desc := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: msg.SDP}
		if err := call.pc.SetRemoteDescription(desc); err != nil {
			call.fail(fmt.Errorf("call %s: apply answer: %w", call.id, err))
		}
	case wire.SignalBye:
		if call, ok := c.lookup(msg); ok {
			c.logger.Debug().Str("call", call.id).Msg("remote hung up")
			call.close(false)
		}
	default:
		c.logger.Warn().Str("kind", msg.Kind).Msg("unknown call signal")
	}
}

func (c *Caller) handleOffer(msg wire.CallSignal) {
	if msg.From == "" || msg.CallID == "" {
		return
	}
	c.mu.Lock()
	_, dup := c.calls[msg.CallID]
	closed := c.closed
	fn := c.onIncoming
	c.mu.Unlock()
	if dup || closed {
		return
	}

	call, err := c.newCall(msg.CallID, msg.From, false)
	if err != nil {
		c.logger.Error().Err(err).Str("call", msg.CallID).Msg("incoming call setup")
		_ = c.send(wire.CallSignal{Kind: wire.SignalBye, CallID: msg.CallID, To: msg.From})
		return
	}
	call.offer = msg.SDP
	if err := c.track(call); err != nil || fn == nil {
		call.Close()
		return
	}
	c.logger.Debug().Str("call", call.id).Str("from", string(msg.From)).Msg("incoming call")
	fn(call)
}

// Close hangs up every call.
func (c *Caller) Close() {
	c.mu.Lock()
	c.closed = true
	calls := make([]*Call, 0, len(c.calls))
	for _, call := range c.calls {
		calls = append(calls, call)
	}
	c.mu.Unlock()

	var wg conc.WaitGroup
	for _, call := range calls {
		wg.Go(call.Close)
	}
	wg.Wait()
}

// Calls reports the number of live calls.
func (c *Caller) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *Caller) track(call *Call) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCallerClosed
	}
	c.calls[call.id] = call
	return nil
}

func (c *Caller) forget(id string) {
	c.mu.Lock()
	delete(c.calls, id)
	c.mu.Unlock()
}

// lookup accepts a message only from the address the call was made with.
func (c *Caller) lookup(msg wire.CallSignal) (*Call, bool) {
	c.mu.Lock()
	call, ok := c.calls[msg.CallID]
	c.mu.Unlock()
	if !ok || call.remote != msg.From {
		c.logger.Debug().Str("call", msg.CallID).Str("kind", msg.Kind).Msg("signal for unknown call")
		return nil, false
	}
	return call, true
}

func (c *Caller) sinkFor(addr domain.CallAddress) Sink {
	c.mu.Lock()
	fn := c.sink
	c.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(addr)
}

func (c *Caller) send(msg wire.CallSignal) error {
	msg.Type = wire.TypeSignal
	msg.From = c.addr
	return c.signaler.SendSignal(msg)
}
