package session

import (
	"errors"
	"fmt"

	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
)

type fakeHandle struct {
	addr      domain.CallAddress
	closed    int
	answered  int
	answerErr error

	onMedia func(core.Playback)
	onClose func()
	onErr   func(error)
}

func (h *fakeHandle) RemoteAddress() domain.CallAddress { return h.addr }

func (h *fakeHandle) Close() {
	h.closed++
	if h.closed == 1 && h.onClose != nil {
		h.onClose()
	}
}

func (h *fakeHandle) OnRemoteMedia(fn func(core.Playback)) { h.onMedia = fn }
func (h *fakeHandle) OnClose(fn func())                    { h.onClose = fn }
func (h *fakeHandle) OnError(fn func(error))               { h.onErr = fn }

func (h *fakeHandle) Answer(core.LocalMedia) error {
	h.answered++
	return h.answerErr
}

type fakePlayback struct {
	gains    []float64
	released int
}

func (p *fakePlayback) SetGain(g float64) { p.gains = append(p.gains, g) }
func (p *fakePlayback) Release()          { p.released++ }

func (p *fakePlayback) lastGain() float64 {
	if len(p.gains) == 0 {
		return -1
	}
	return p.gains[len(p.gains)-1]
}

// fakeNet connects fakeCallers in memory: a dial creates a linked pair of
// handles and hands the far end to the callee's incoming handler.
type fakeNet struct {
	callers map[domain.CallAddress]*fakeCaller
	dials   int
}

func newFakeNet() *fakeNet {
	return &fakeNet{callers: make(map[domain.CallAddress]*fakeCaller)}
}

func (n *fakeNet) caller(addr domain.CallAddress) *fakeCaller {
	c := &fakeCaller{net: n, addr: addr}
	n.callers[addr] = c
	return c
}

type fakeCaller struct {
	net      *fakeNet
	addr     domain.CallAddress
	incoming func(core.IncomingCall)
}

func (c *fakeCaller) Address() domain.CallAddress         { return c.addr }
func (c *fakeCaller) OnIncoming(fn func(core.IncomingCall)) { c.incoming = fn }

func (c *fakeCaller) Dial(addr domain.CallAddress, _ core.LocalMedia) (core.SessionHandle, error) {
	remote, ok := c.net.callers[addr]
	if !ok {
		return nil, errors.New("no route")
	}
	c.net.dials++
	local := &fakeHandle{addr: addr}
	far := &fakeHandle{addr: c.addr}
	remote.incoming(far)
	return local, nil
}

func addr(id domain.ParticipantID) domain.CallAddress {
	return domain.CallAddress(fmt.Sprintf("addr-%d", id))
}

func dialable(id domain.ParticipantID, room domain.RoomID) domain.Participant {
	return domain.Participant{ID: id, RoomID: room, CallAddress: addr(id)}
}
