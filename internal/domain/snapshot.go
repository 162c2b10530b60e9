package domain

// Snapshot is the full presence state published after every registry
// mutation. Version increases strictly with every publication.
type Snapshot struct {
	Version      uint64        `json:"version"`
	Participants []Participant `json:"participants"`
}

func (s Snapshot) Index() map[ParticipantID]Participant {
	out := make(map[ParticipantID]Participant, len(s.Participants))
	for _, p := range s.Participants {
		out[p.ID] = p
	}
	return out
}

func (s Snapshot) Find(id ParticipantID) (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// Layout is the static office description every client needs to evaluate
// zones, rooms and thresholds the same way.
type Layout struct {
	World      Rect       `json:"world"`
	Margin     float64    `json:"margin"`
	Rooms      []Room     `json:"rooms"`
	Zones      []Zone     `json:"zones"`
	Thresholds Thresholds `json:"thresholds"`
}

// Thresholds are the hysteresis distances. A session opens within Connect
// and survives until Disconnect.
type Thresholds struct {
	Connect    float64 `json:"connect" mapstructure:"connect"`
	Disconnect float64 `json:"disconnect" mapstructure:"disconnect"`
}
