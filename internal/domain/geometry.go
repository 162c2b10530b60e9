package domain

import "math"

type Position struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

func (p Position) DistanceTo(q Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (p Position) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Rect is an axis-aligned region anchored at its top-left corner.
type Rect struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
	W float64 `json:"w" mapstructure:"w"`
	H float64 `json:"h" mapstructure:"h"`
}

// Contains is inclusive on every edge.
func (r Rect) Contains(p Position) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

func (r Rect) Center() Position {
	return Position{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Clamp pulls p inside r shrunk by margin on every side. A margin larger
// than half the rect collapses to its center on that axis.
func (r Rect) Clamp(p Position, margin float64) Position {
	return Position{
		X: clamp(p.X, r.X+margin, r.X+r.W-margin),
		Y: clamp(p.Y, r.Y+margin, r.Y+r.H-margin),
	}
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(v, hi))
}
