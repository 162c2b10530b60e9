// Package topology decides which peers a participant should be in a voice
// session with. Every client runs it independently on its own view of the
// presence snapshot.
package topology

import (
	"fmt"
	"slices"

	"github.com/dkeye/Office/internal/app/zone"
	"github.com/dkeye/Office/internal/domain"
)

// Local is the resolving participant's own view of itself. It may be ahead
// of the snapshot when the participant moved since the last broadcast.
type Local struct {
	ID       domain.ParticipantID
	Position domain.Position
	RoomID   domain.RoomID
}

func (l Local) InRoom() bool { return l.RoomID != "" }

type TargetSet map[domain.ParticipantID]struct{}

func (t TargetSet) Has(id domain.ParticipantID) bool {
	_, ok := t[id]
	return ok
}

// Sorted returns the members in ascending id order.
func (t TargetSet) Sorted() []domain.ParticipantID {
	out := make([]domain.ParticipantID, 0, len(t))
	for id := range t {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

type Resolver struct {
	zones      *zone.Classifier
	thresholds domain.Thresholds
}

func NewResolver(zones *zone.Classifier, th domain.Thresholds) (*Resolver, error) {
	if th.Connect <= 0 || th.Disconnect <= th.Connect {
		return nil, fmt.Errorf("thresholds: need 0 < connect < disconnect, got %v/%v", th.Connect, th.Disconnect)
	}
	return &Resolver{zones: zones, thresholds: th}, nil
}

func (r *Resolver) Thresholds() domain.Thresholds { return r.thresholds }

func (r *Resolver) Zones() *zone.Classifier { return r.zones }

// Resolve computes the target set. active reports whether a session with a
// peer already exists; such peers keep qualifying on the open floor up to
// the disconnect threshold.
func (r *Resolver) Resolve(local Local, snap domain.Snapshot, active func(domain.ParticipantID) bool) TargetSet {
	out := make(TargetSet)
	if local.InRoom() {
		for _, p := range snap.Participants {
			if p.ID != local.ID && p.Dialable() && p.RoomID == local.RoomID {
				out[p.ID] = struct{}{}
			}
		}
		return out
	}

	if !r.zones.AllowsAmbientVoice(local.Position) {
		return out
	}
	for _, p := range snap.Participants {
		if p.ID == local.ID || !p.Dialable() || p.InRoom() {
			continue
		}
		if !r.zones.AllowsAmbientVoice(p.Position) {
			continue
		}
		limit := r.thresholds.Connect
		if active != nil && active(p.ID) {
			limit = r.thresholds.Disconnect
		}
		if local.Position.DistanceTo(p.Position) <= limit {
			out[p.ID] = struct{}{}
		}
	}
	return out
}

// ShouldInitiate reports whether self dials peer. Exactly one side of any
// pair of distinct ids gets true.
func ShouldInitiate(self, peer domain.ParticipantID) bool {
	return peer.Less(self)
}
