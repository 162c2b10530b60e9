// Package agent runs the client side of one participant: it turns presence
// snapshots into voice sessions and keeps their volume current.
package agent

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Office/internal/app/gain"
	"github.com/dkeye/Office/internal/app/session"
	"github.com/dkeye/Office/internal/app/topology"
	"github.com/dkeye/Office/internal/app/zone"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog"
)

var (
	ErrStopped         = errors.New("agent stopped")
	ErrSnapshotsClosed = errors.New("snapshot stream closed")
)

const (
	DefaultReconcilePeriod = 1500 * time.Millisecond
	DefaultGainPeriod      = 200 * time.Millisecond
)

// Presence is the agent's view of the signaling server.
type Presence interface {
	Move(pos domain.Position) error
	JoinRoom(ctx context.Context, room domain.RoomID) error
	LeaveRoom() error
	SetCallAddress(addr domain.CallAddress) error
}

type Options struct {
	ReconcilePeriod time.Duration
	GainPeriod      time.Duration
}

// Agent owns the resolver, the session manager and the gain controller of
// one participant. Everything except JoinRoom and LeaveRoom runs on the
// goroutine that called Run.
type Agent struct {
	id       domain.ParticipantID
	layout   domain.Layout
	presence Presence
	caller   core.Caller
	resolver *topology.Resolver
	gain     *gain.Controller
	manager  *session.Manager
	logger   zerolog.Logger
	opts     Options

	snapshots <-chan domain.Snapshot
	commands  chan func()
	done      chan struct{}

	local    topology.Local
	placed   bool
	snap     domain.Snapshot
	haveSnap bool
}

func New(
	id domain.ParticipantID,
	layout domain.Layout,
	presence Presence,
	caller core.Caller,
	media core.LocalMedia,
	snapshots <-chan domain.Snapshot,
	logger zerolog.Logger,
	opts Options,
) (*Agent, error) {
	zones, err := zone.New(layout.Zones)
	if err != nil {
		return nil, err
	}
	resolver, err := topology.NewResolver(zones, layout.Thresholds)
	if err != nil {
		return nil, err
	}
	if opts.ReconcilePeriod <= 0 {
		opts.ReconcilePeriod = DefaultReconcilePeriod
	}
	if opts.GainPeriod <= 0 {
		opts.GainPeriod = DefaultGainPeriod
	}
	logger = logger.With().Str("module", "app.agent").Stringer("participant", id).Logger()
	return &Agent{
		id:        id,
		layout:    layout,
		presence:  presence,
		caller:    caller,
		resolver:  resolver,
		gain:      gain.New(zones, layout.Thresholds),
		manager:   session.NewManager(id, caller, media, logger),
		logger:    logger,
		opts:      opts,
		snapshots: snapshots,
		commands:  make(chan func()),
		done:      make(chan struct{}),
		local:     topology.Local{ID: id},
	}, nil
}

// Run publishes the call address and processes input until ctx ends or the
// snapshot stream closes. Every session is closed on return.
func (a *Agent) Run(ctx context.Context) error {
	defer close(a.done)
	defer a.manager.Close()

	if err := a.presence.SetCallAddress(a.caller.Address()); err != nil {
		return err
	}
	a.logger.Info().Str("call_address", string(a.caller.Address())).Msg("call address published")

	reconcile := time.NewTicker(a.opts.ReconcilePeriod)
	defer reconcile.Stop()
	volumes := time.NewTicker(a.opts.GainPeriod)
	defer volumes.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-a.snapshots:
			if !ok {
				return ErrSnapshotsClosed
			}
			a.onSnapshot(snap)
		case <-reconcile.C:
			a.reconcile()
		case <-volumes.C:
			a.applyGain()
		case ev := <-a.manager.Events():
			a.manager.Handle(ev)
			a.applyGain()
		case cmd := <-a.commands:
			cmd()
		}
	}
}

// Move updates the local position at once, re-evaluates volumes and sends
// the move to the server.
func (a *Agent) Move(ctx context.Context, pos domain.Position) error {
	if !pos.Valid() {
		return domain.ErrInvalidPosition
	}
	var err error
	if cerr := a.do(ctx, func() { err = a.move(pos) }); cerr != nil {
		return cerr
	}
	return err
}

// JoinRoom blocks until the server answers. The room itself takes effect
// with the next snapshot.
func (a *Agent) JoinRoom(ctx context.Context, room domain.RoomID) error {
	return a.presence.JoinRoom(ctx, room)
}

func (a *Agent) LeaveRoom() error {
	return a.presence.LeaveRoom()
}

// Status is a copy of the loop state for display.
type Status struct {
	Local    topology.Local
	Version  uint64
	Sessions []SessionStatus
}

type SessionStatus struct {
	Peer      domain.ParticipantID
	Initiator bool
	Gain      float64
	Audio     bool
}

func (a *Agent) Status(ctx context.Context) (Status, error) {
	var st Status
	err := a.do(ctx, func() {
		st.Local = a.local
		st.Version = a.snap.Version
		for _, s := range a.manager.Sessions() {
			st.Sessions = append(st.Sessions, SessionStatus{
				Peer:      s.Peer,
				Initiator: s.Initiator,
				Gain:      s.Gain(),
				Audio:     s.HasPlayback(),
			})
		}
	})
	return st, err
}

// do runs fn on the loop goroutine and waits for it.
func (a *Agent) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case a.commands <- func() { fn(); close(finished) }:
	case <-a.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// onSnapshot drops snapshots that are not newer than the last one. The
// local position stays authoritative on the open floor; the server's
// placement is adopted until the first local move and whenever the room
// changes.
func (a *Agent) onSnapshot(snap domain.Snapshot) {
	if a.haveSnap && snap.Version <= a.snap.Version {
		a.logger.Debug().Uint64("version", snap.Version).Uint64("last", a.snap.Version).Msg("stale snapshot dropped")
		return
	}
	a.snap = snap
	a.haveSnap = true

	if self, ok := snap.Find(a.id); ok {
		switch {
		case self.RoomID != a.local.RoomID:
			a.logger.Info().Str("room", string(self.RoomID)).Msg("room changed")
			a.local.RoomID = self.RoomID
			a.local.Position = self.Position
		case !a.placed:
			a.local.Position = self.Position
		}
	}
	a.reconcile()
	a.applyGain()
}

func (a *Agent) move(pos domain.Position) error {
	bounds := a.layout.World
	for _, r := range a.layout.Rooms {
		if r.ID == a.local.RoomID {
			bounds = r.Bounds
			break
		}
	}
	a.local.Position = bounds.Clamp(pos, a.layout.Margin)
	a.placed = true
	a.applyGain()
	return a.presence.Move(a.local.Position)
}

func (a *Agent) reconcile() {
	if !a.haveSnap {
		return
	}
	targets := a.resolver.Resolve(a.local, a.snap, a.manager.Active)
	rep := a.manager.Reconcile(a.snap, targets)
	if len(rep.Failed) > 0 {
		a.logger.Warn().Int("failed", len(rep.Failed)).Msg("some dials failed, retrying next tick")
	}
}

func (a *Agent) applyGain() {
	sessions := a.manager.Sessions()
	if len(sessions) == 0 {
		return
	}
	targets := make(map[domain.ParticipantID]gain.Target, len(sessions))
	for _, s := range sessions {
		targets[s.Peer] = s
	}
	a.gain.Apply(a.local, a.snap, targets)
}
