package domain

import "fmt"

type ZoneKind string

const (
	// ZoneOpen allows proximity conversations.
	ZoneOpen ZoneKind = "open"
	// ZoneQuiet is a focus area: nobody inside it is heard or hears ambient voice.
	ZoneQuiet ZoneKind = "quiet"
)

var ambientVoice = map[ZoneKind]bool{
	ZoneOpen:  true,
	ZoneQuiet: false,
}

func (k ZoneKind) Valid() bool {
	_, ok := ambientVoice[k]
	return ok
}

func (k ZoneKind) AllowsAmbientVoice() bool { return ambientVoice[k] }

func ParseZoneKind(s string) (ZoneKind, error) {
	k := ZoneKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown zone kind %q", s)
	}
	return k, nil
}

// Zone is one entry of the ordered zone table. A CatchAll zone matches every
// position and its Bounds are ignored.
type Zone struct {
	Label    string   `json:"label" mapstructure:"label"`
	Kind     ZoneKind `json:"kind" mapstructure:"kind"`
	Bounds   Rect     `json:"bounds" mapstructure:"bounds"`
	CatchAll bool     `json:"catch_all,omitempty" mapstructure:"catch_all"`
}

func (z Zone) Matches(p Position) bool {
	return z.CatchAll || z.Bounds.Contains(p)
}
