// Package zone maps a position to the ambient-voice zone it falls in.
package zone

import (
	"errors"
	"fmt"

	"github.com/dkeye/Office/internal/domain"
)

var ErrNoCatchAll = errors.New("zone table has no catch-all zone")

type Classification struct {
	Label              string `json:"label"`
	AllowsAmbientVoice bool   `json:"allows_ambient_voice"`
}

// Classifier evaluates an ordered zone table. It is immutable after New and
// safe to call from any goroutine.
type Classifier struct {
	zones []domain.Zone
}

// New validates the table: every kind must be known, only the last zone may
// be a catch-all and there must be one.
func New(zones []domain.Zone) (*Classifier, error) {
	if len(zones) == 0 || !zones[len(zones)-1].CatchAll {
		return nil, ErrNoCatchAll
	}
	for i, z := range zones {
		if !z.Kind.Valid() {
			return nil, fmt.Errorf("zone %q: unknown kind %q", z.Label, z.Kind)
		}
		if z.CatchAll && i != len(zones)-1 {
			return nil, fmt.Errorf("zone %q: catch-all must be last", z.Label)
		}
		if !z.CatchAll && z.Bounds.Empty() {
			return nil, fmt.Errorf("zone %q: empty bounds", z.Label)
		}
	}
	return &Classifier{zones: append([]domain.Zone(nil), zones...)}, nil
}

func (c *Classifier) Classify(p domain.Position) Classification {
	for _, z := range c.zones {
		if z.Matches(p) {
			return Classification{Label: z.Label, AllowsAmbientVoice: z.Kind.AllowsAmbientVoice()}
		}
	}
	// unreachable: New guarantees a trailing catch-all
	return Classification{}
}

func (c *Classifier) AllowsAmbientVoice(p domain.Position) bool {
	return c.Classify(p).AllowsAmbientVoice
}

func (c *Classifier) Zones() []domain.Zone {
	return append([]domain.Zone(nil), c.zones...)
}
