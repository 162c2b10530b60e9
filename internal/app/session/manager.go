// Package session keeps the set of live voice sessions of one participant in
// line with the resolver's target set.
package session

import (
	"maps"
	"slices"
	"sync"

	"github.com/dkeye/Office/internal/app/topology"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog"
)

const eventBuffer = 64

// Report lists what one Reconcile pass changed.
type Report struct {
	Dialed []domain.ParticipantID
	Closed []domain.ParticipantID
	Failed []domain.ParticipantID
}

func (r Report) Empty() bool {
	return len(r.Dialed) == 0 && len(r.Closed) == 0 && len(r.Failed) == 0
}

// Manager is not safe for concurrent use. Reconcile, Handle and Close must
// be called from one loop; call primitive callbacks only enqueue Events.
type Manager struct {
	self   domain.ParticipantID
	caller core.Caller
	media  core.LocalMedia
	logger zerolog.Logger

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	active  map[domain.ParticipantID]*Session
	peers   map[domain.ParticipantID]domain.Participant
	pending []core.IncomingCall
	lastGen uint64
}

func NewManager(self domain.ParticipantID, caller core.Caller, media core.LocalMedia, logger zerolog.Logger) *Manager {
	m := &Manager{
		self:   self,
		caller: caller,
		media:  media,
		logger: logger.With().Str("module", "app.session").Stringer("self", self).Logger(),
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
		active: make(map[domain.ParticipantID]*Session),
		peers:  make(map[domain.ParticipantID]domain.Participant),
	}
	caller.OnIncoming(func(call core.IncomingCall) {
		m.post(Event{Kind: EventIncoming, Call: call})
	})
	return m
}

// Events delivers call primitive callbacks; feed each one to Handle.
func (m *Manager) Events() <-chan Event { return m.events }

func (m *Manager) Active(id domain.ParticipantID) bool {
	_, ok := m.active[id]
	return ok
}

func (m *Manager) Len() int { return len(m.active) }

func (m *Manager) Session(id domain.ParticipantID) (*Session, bool) {
	s, ok := m.active[id]
	return s, ok
}

// Sessions returns the active sessions in ascending peer order.
func (m *Manager) Sessions() []*Session {
	out := make([]*Session, 0, len(m.active))
	for _, id := range slices.Sorted(maps.Keys(m.active)) {
		out = append(out, m.active[id])
	}
	return out
}

// Reconcile brings the active set in line with targets. Incoming calls held
// back for an unknown address are resolved against snap first. Sessions
// whose peer is missing from snap or changed call address are closed as
// stale, then untargeted sessions are closed, then targets this side
// initiates are dialed. Running it twice with the same inputs changes
// nothing.
func (m *Manager) Reconcile(snap domain.Snapshot, targets topology.TargetSet) Report {
	m.peers = snap.Index()
	var rep Report

	held := m.pending
	m.pending = nil
	for _, call := range held {
		if _, ok := m.byAddress(call.RemoteAddress()); !ok {
			m.logger.Debug().Str("call_address", string(call.RemoteAddress())).Msg("dropping incoming call from unknown address")
			call.Close()
			continue
		}
		m.accept(call)
	}

	for _, id := range slices.Sorted(maps.Keys(m.active)) {
		s := m.active[id]
		p, ok := m.peers[id]
		switch {
		case !ok:
			m.drop(id, "peer gone")
		case p.CallAddress != s.Address:
			m.drop(id, "peer call address changed")
		case !targets.Has(id):
			m.drop(id, "no longer warranted")
		default:
			continue
		}
		rep.Closed = append(rep.Closed, id)
	}

	for _, id := range targets.Sorted() {
		if _, ok := m.active[id]; ok || !topology.ShouldInitiate(m.self, id) {
			continue
		}
		p, ok := m.peers[id]
		if !ok || !p.Dialable() {
			continue
		}
		if err := m.dial(p); err != nil {
			rep.Failed = append(rep.Failed, id)
			continue
		}
		rep.Dialed = append(rep.Dialed, id)
	}

	if !rep.Empty() {
		m.logger.Debug().
			Int("dialed", len(rep.Dialed)).
			Int("closed", len(rep.Closed)).
			Int("failed", len(rep.Failed)).
			Int("active", len(m.active)).
			Msg("reconciled")
	}
	return rep
}

// Handle merges one callback event into the active set.
func (m *Manager) Handle(ev Event) {
	switch ev.Kind {
	case EventIncoming:
		m.accept(ev.Call)
	case EventRemoteMedia:
		s := m.lookup(ev.Peer, ev.Gen)
		if s == nil || s.playback != nil {
			ev.Playback.Release()
			return
		}
		s.playback = ev.Playback
		s.playback.SetGain(s.gain)
		m.logger.Info().Stringer("peer", ev.Peer).Msg("remote media attached")
	case EventClosed:
		if m.lookup(ev.Peer, ev.Gen) != nil {
			m.drop(ev.Peer, "closed by transport")
		}
	case EventFailed:
		if m.lookup(ev.Peer, ev.Gen) != nil {
			m.logger.Warn().Err(ev.Err).Stringer("peer", ev.Peer).Msg("session error")
			m.drop(ev.Peer, "transport error")
		}
	}
}

// Close tears down every session and stops event delivery.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		for _, id := range slices.Sorted(maps.Keys(m.active)) {
			m.drop(id, "shutdown")
		}
		for _, call := range m.pending {
			call.Close()
		}
		m.pending = nil
	})
}

func (m *Manager) dial(p domain.Participant) error {
	handle, err := m.caller.Dial(p.CallAddress, m.media)
	if err != nil {
		m.logger.Warn().Err(err).Stringer("peer", p.ID).Msg("dial failed")
		return err
	}
	m.register(p.ID, p.CallAddress, handle, true)
	m.logger.Info().Stringer("peer", p.ID).Msg("dialed")
	return nil
}

func (m *Manager) accept(call core.IncomingCall) {
	addr := call.RemoteAddress()
	p, ok := m.byAddress(addr)
	switch {
	case !ok:
		// The caller may be newer than our last snapshot; hold the call
		// until the next Reconcile.
		m.logger.Debug().Str("call_address", string(addr)).Msg("holding incoming call from unknown address")
		m.pending = append(m.pending, call)
		return
	case p.ID == m.self:
		call.Close()
		return
	case m.Active(p.ID):
		m.logger.Debug().Stringer("peer", p.ID).Msg("incoming call duplicates an active session")
		call.Close()
		return
	}
	if err := call.Answer(m.media); err != nil {
		m.logger.Warn().Err(err).Stringer("peer", p.ID).Msg("answer failed")
		call.Close()
		return
	}
	m.register(p.ID, addr, call, false)
	m.logger.Info().Stringer("peer", p.ID).Msg("answered")
}

func (m *Manager) register(peer domain.ParticipantID, addr domain.CallAddress, h core.SessionHandle, initiator bool) {
	m.lastGen++
	s := &Session{Peer: peer, Address: addr, Initiator: initiator, gen: m.lastGen, handle: h}
	m.active[peer] = s

	gen := s.gen
	h.OnRemoteMedia(func(pb core.Playback) {
		m.post(Event{Kind: EventRemoteMedia, Peer: peer, Gen: gen, Playback: pb})
	})
	h.OnClose(func() {
		m.post(Event{Kind: EventClosed, Peer: peer, Gen: gen})
	})
	h.OnError(func(err error) {
		m.post(Event{Kind: EventFailed, Peer: peer, Gen: gen, Err: err})
	})
}

// drop removes the entry and releases its playback before closing the
// handle, all within the caller's pass.
func (m *Manager) drop(id domain.ParticipantID, reason string) {
	s, ok := m.active[id]
	if !ok {
		return
	}
	delete(m.active, id)
	if s.playback != nil {
		s.playback.Release()
		s.playback = nil
	}
	s.handle.Close()
	m.logger.Info().Stringer("peer", id).Str("reason", reason).Msg("session closed")
}

func (m *Manager) lookup(peer domain.ParticipantID, gen uint64) *Session {
	s, ok := m.active[peer]
	if !ok || s.gen != gen {
		return nil
	}
	return s
}

func (m *Manager) byAddress(addr domain.CallAddress) (domain.Participant, bool) {
	if addr == "" {
		return domain.Participant{}, false
	}
	for _, p := range m.peers {
		if p.CallAddress == addr {
			return p, true
		}
	}
	return domain.Participant{}, false
}

// post never blocks the caller: callbacks may fire on the loop goroutine
// itself when a handle was already finished at registration.
func (m *Manager) post(ev Event) {
	select {
	case <-m.done:
		ev.release()
		return
	default:
	}
	select {
	case m.events <- ev:
	default:
		go func() {
			select {
			case m.events <- ev:
			case <-m.done:
				ev.release()
			}
		}()
	}
}
