// Package rooms holds the static meeting room definitions and derives
// occupancy from presence state.
package rooms

import (
	"fmt"

	"github.com/dkeye/Office/internal/domain"
)

// Directory is immutable after New.
type Directory struct {
	rooms []domain.Room
	byID  map[domain.RoomID]domain.Room
}

func New(rooms []domain.Room) (*Directory, error) {
	d := &Directory{
		rooms: make([]domain.Room, 0, len(rooms)),
		byID:  make(map[domain.RoomID]domain.Room, len(rooms)),
	}
	for _, r := range rooms {
		if r.ID == "" {
			return nil, fmt.Errorf("room %q: empty id", r.Name)
		}
		if _, dup := d.byID[r.ID]; dup {
			return nil, fmt.Errorf("room %q: duplicate id", r.ID)
		}
		if r.Capacity <= 0 {
			return nil, fmt.Errorf("room %q: capacity must be positive", r.ID)
		}
		if r.Bounds.Empty() {
			return nil, fmt.Errorf("room %q: empty bounds", r.ID)
		}
		d.rooms = append(d.rooms, r)
		d.byID[r.ID] = r
	}
	return d, nil
}

func (d *Directory) Get(id domain.RoomID) (domain.Room, bool) {
	r, ok := d.byID[id]
	return r, ok
}

func (d *Directory) List() []domain.Room {
	return append([]domain.Room(nil), d.rooms...)
}

// At returns the first room whose bounds contain p.
func (d *Directory) At(p domain.Position) (domain.Room, bool) {
	for _, r := range d.rooms {
		if r.Bounds.Contains(p) {
			return r, true
		}
	}
	return domain.Room{}, false
}

// Occupancy counts participants per room. Rooms nobody is in are absent.
func (d *Directory) Occupancy(participants []domain.Participant) map[domain.RoomID]int {
	out := make(map[domain.RoomID]int)
	for _, p := range participants {
		if p.InRoom() {
			out[p.RoomID]++
		}
	}
	return out
}

func (d *Directory) Infos(snap domain.Snapshot) []domain.RoomInfo {
	occ := d.Occupancy(snap.Participants)
	out := make([]domain.RoomInfo, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, domain.RoomInfo{
			ID:        r.ID,
			Name:      r.Name,
			Capacity:  r.Capacity,
			Occupancy: occ[r.ID],
		})
	}
	return out
}
