// Package presence is the authoritative store of connected participants.
package presence

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dkeye/Office/internal/app/rooms"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultDisplayName = "guest"

// Placement controls where participants appear and how far they may walk.
type Placement struct {
	World  domain.Rect
	Margin float64
	Spawn  domain.Position
	Lobby  domain.Position
}

// Registry serializes every mutation through one lock and publishes the
// resulting snapshot before releasing it, so subscribers see snapshots in
// mutation order.
type Registry struct {
	mu           sync.RWMutex
	rooms        *rooms.Directory
	place        Placement
	publisher    core.SnapshotPublisher
	participants map[domain.ParticipantID]*domain.Participant
	lastID       domain.ParticipantID
	version      uint64
}

func NewRegistry(dir *rooms.Directory, place Placement) *Registry {
	return &Registry{
		rooms:        dir,
		place:        place,
		participants: make(map[domain.ParticipantID]*domain.Participant),
	}
}

// SetPublisher must be called before the first connection is accepted.
func (r *Registry) SetPublisher(p core.SnapshotPublisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publisher = p
}

func (r *Registry) Rooms() *rooms.Directory { return r.rooms }

func (r *Registry) Connect(displayName string) (domain.ParticipantID, error) {
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	if err := domain.ValidateDisplayName(displayName); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	p := &domain.Participant{
		ID:          r.lastID,
		Position:    r.place.World.Clamp(r.place.Spawn, r.place.Margin),
		DisplayName: displayName,
	}
	r.participants[p.ID] = p
	log.Info().Str("module", "app.presence").Stringer("participant", p.ID).Str("name", displayName).Msg("participant connected")
	r.publishLocked()
	return p.ID, nil
}

// UpdatePosition clamps the target to the world, or to the current room
// while the participant is in one.
func (r *Registry) UpdatePosition(id domain.ParticipantID, pos domain.Position) error {
	if !pos.Valid() {
		return domain.ErrInvalidPosition
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.ErrUnknownParticipant
	}
	bounds := r.place.World
	if room, ok := r.rooms.Get(p.RoomID); ok {
		bounds = room.Bounds
	}
	next := bounds.Clamp(pos, r.place.Margin)
	if next == p.Position {
		return nil
	}
	p.Position = next
	log.Debug().Str("module", "app.presence").Stringer("participant", id).Float64("x", next.X).Float64("y", next.Y).Msg("moved")
	r.publishLocked()
	return nil
}

// JoinRoom admits the participant only while the room has a free seat at
// evaluation time. A rejected join changes nothing and publishes nothing.
func (r *Registry) JoinRoom(id domain.ParticipantID, roomID domain.RoomID) error {
	room, ok := r.rooms.Get(roomID)
	if !ok {
		return fmt.Errorf("join %q: %w", roomID, domain.ErrUnknownRoom)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.ErrUnknownParticipant
	}
	if p.RoomID == roomID {
		return nil
	}
	if occ := r.occupancyLocked(roomID); occ >= room.Capacity {
		log.Info().Str("module", "app.presence").Stringer("participant", id).Str("room", string(roomID)).Int("occupancy", occ).Msg("room full")
		return fmt.Errorf("join %q: %w", roomID, domain.ErrRoomFull)
	}
	p.RoomID = roomID
	p.Position = room.Bounds.Center()
	log.Info().Str("module", "app.presence").Stringer("participant", id).Str("room", string(roomID)).Msg("joined room")
	r.publishLocked()
	return nil
}

// LeaveRoom returns the participant to the lobby point on the open floor.
func (r *Registry) LeaveRoom(id domain.ParticipantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.ErrUnknownParticipant
	}
	if !p.InRoom() {
		return nil
	}
	log.Info().Str("module", "app.presence").Stringer("participant", id).Str("room", string(p.RoomID)).Msg("left room")
	p.RoomID = ""
	p.Position = r.place.World.Clamp(r.place.Lobby, r.place.Margin)
	r.publishLocked()
	return nil
}

func (r *Registry) SetCallAddress(id domain.ParticipantID, addr domain.CallAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.ErrUnknownParticipant
	}
	if p.CallAddress == addr {
		return nil
	}
	p.CallAddress = addr
	log.Info().Str("module", "app.presence").Stringer("participant", id).Str("call_address", string(addr)).Msg("call address set")
	r.publishLocked()
	return nil
}

func (r *Registry) Rename(id domain.ParticipantID, name string) error {
	if err := domain.ValidateDisplayName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.ErrUnknownParticipant
	}
	if p.DisplayName == name {
		return nil
	}
	p.DisplayName = name
	log.Info().Str("module", "app.presence").Stringer("participant", id).Str("name", name).Msg("renamed")
	r.publishLocked()
	return nil
}

// Disconnect removes the record; unknown ids are ignored.
func (r *Registry) Disconnect(id domain.ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[id]; !ok {
		return
	}
	delete(r.participants, id)
	log.Info().Str("module", "app.presence").Stringer("participant", id).Msg("participant disconnected")
	r.publishLocked()
}

func (r *Registry) Get(id domain.ParticipantID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	return *p, true
}

// ByCallAddress resolves the owner of a call address.
func (r *Registry) ByCallAddress(addr domain.CallAddress) (domain.Participant, bool) {
	if addr == "" {
		return domain.Participant{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.participants {
		if p.CallAddress == addr {
			return *p, true
		}
	}
	return domain.Participant{}, false
}

func (r *Registry) Occupancy(roomID domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.occupancyLocked(roomID)
}

func (r *Registry) Snapshot() domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) occupancyLocked(roomID domain.RoomID) int {
	n := 0
	for _, p := range r.participants {
		if p.RoomID == roomID {
			n++
		}
	}
	return n
}

func (r *Registry) snapshotLocked() domain.Snapshot {
	out := make([]domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b domain.Participant) int {
		switch {
		case a.ID.Less(b.ID):
			return -1
		case b.ID.Less(a.ID):
			return 1
		}
		return 0
	})
	return domain.Snapshot{Version: r.version, Participants: out}
}

func (r *Registry) publishLocked() {
	r.version++
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(r.snapshotLocked())
}
