package mocap

import (
	"math"
	"slices"
)

// Sample is one frame of a tracked marker or rigid body. Numeric fields are
// NaN when the row could not be read.
type Sample struct {
	Time  float64
	Color string
	RotY  float64
	X     float64
	Y     float64
	Z     float64
}

// Valid reports whether the sample carries a position.
func (s Sample) Valid() bool {
	return !math.IsNaN(s.Time) && !math.IsNaN(s.X) && !math.IsNaN(s.Y) && !math.IsNaN(s.Z)
}

// Trajectory holds one sample per data row; index is the frame number.
type Trajectory []Sample

// Valid returns the number of frames that carry a position.
func (t Trajectory) Valid() int {
	n := 0
	for _, s := range t {
		if s.Valid() {
			n++
		}
	}
	return n
}

// Palette assigns display colors by marker classification.
type Palette struct {
	Marker    string
	Highlight string
	RigidBody string
}

// DefaultPalette returns the conventional linkage visualization colors.
func DefaultPalette() Palette {
	return Palette{
		Marker:    "#606060",
		Highlight: "#000000",
		RigidBody: "#FF0000",
	}
}

// Classify returns the color of tag. Highlight membership is checked first.
func (p Palette) Classify(tag Tag, highlight []Tag) string {
	switch {
	case slices.Contains(highlight, tag):
		return p.Highlight
	case !tag.Qualified():
		return p.RigidBody
	default:
		return p.Marker
	}
}
