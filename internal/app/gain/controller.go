// Package gain derives per-session playback volume from where participants
// stand. It never opens or closes sessions.
package gain

import (
	"github.com/dkeye/Office/internal/app/topology"
	"github.com/dkeye/Office/internal/app/zone"
	"github.com/dkeye/Office/internal/domain"
)

const (
	Muted = 0.0
	Full  = 1.0
)

// Target is a session whose volume the controller drives.
type Target interface {
	SetGain(float64)
}

type Controller struct {
	zones  *zone.Classifier
	cutoff float64
}

// New uses the connect threshold as the audibility cutoff: a session kept
// alive inside the hysteresis band is silent.
func New(zones *zone.Classifier, th domain.Thresholds) *Controller {
	return &Controller{zones: zones, cutoff: th.Connect}
}

// Gain is either Full or Muted. Room co-members are always Full; on the open
// floor a peer is Full within the cutoff when both positions allow ambient
// voice.
func (c *Controller) Gain(local topology.Local, peer domain.Participant) float64 {
	if local.InRoom() {
		if peer.RoomID == local.RoomID {
			return Full
		}
		return Muted
	}
	if peer.InRoom() {
		return Muted
	}
	if !c.zones.AllowsAmbientVoice(local.Position) || !c.zones.AllowsAmbientVoice(peer.Position) {
		return Muted
	}
	if local.Position.DistanceTo(peer.Position) <= c.cutoff {
		return Full
	}
	return Muted
}

// Apply sets the gain of every target. Targets whose peer is missing from
// the snapshot are muted; the next reconcile closes them.
func (c *Controller) Apply(local topology.Local, snap domain.Snapshot, targets map[domain.ParticipantID]Target) {
	if len(targets) == 0 {
		return
	}
	index := snap.Index()
	for id, t := range targets {
		p, ok := index[id]
		if !ok {
			t.SetGain(Muted)
			continue
		}
		t.SetGain(c.Gain(local, p))
	}
}
