package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"

	"mocapToolkit/src/mocap"
)

// Point is one marker projected onto the linkage plane.
type Point struct {
	H, V  float64
	Color color.Color
	Big   bool
}

// Scene is everything drawn for one frame.
type Scene struct {
	Frame   int
	Time    float64
	Points  []Point
	Linkage plotter.XYs
	Trail   plotter.XYs
}

// Projector turns aligned trajectories into per-frame scenes. Points follow
// tags order and the linkage follows chain order.
type Projector struct {
	trajectories map[mocap.Tag]mocap.Trajectory
	tags         []mocap.Tag
	chain        []mocap.Tag
	colors       map[mocap.Tag]color.Color
	frames       int

	trail      plotter.XYs
	trailUntil []int
}

// NewProjector validates that every tag and chain entry has a trajectory of
// the same length. With systemCOM set, scenes carry the trail of the rigid
// bodies' mean position.
func NewProjector(trajectories map[mocap.Tag]mocap.Trajectory, tags, chain []mocap.Tag, systemCOM bool) (*Projector, error) {
	p := &Projector{
		trajectories: trajectories,
		tags:         tags,
		chain:        chain,
		colors:       make(map[mocap.Tag]color.Color, len(tags)),
		frames:       -1,
	}

	for _, tag := range append(append([]mocap.Tag{}, tags...), chain...) {
		trajectory, ok := trajectories[tag]
		if !ok {
			return nil, &mocap.UnknownTagError{Tag: tag}
		}
		if p.frames < 0 {
			p.frames = len(trajectory)
		} else if len(trajectory) != p.frames {
			return nil, fmt.Errorf("trajectory %q has %d frames, expected %d", tag, len(trajectory), p.frames)
		}
		if _, done := p.colors[tag]; done || len(trajectory) == 0 {
			continue
		}
		c, err := ParseColor(trajectory[0].Color)
		if err != nil {
			return nil, fmt.Errorf("trajectory %q: %w", tag, err)
		}
		p.colors[tag] = c
	}
	if p.frames < 0 {
		p.frames = 0
	}

	if systemCOM {
		p.buildTrail(RigidBodies(tags))
	}
	return p, nil
}

// Frames returns the number of frames available.
func (p *Projector) Frames() int {
	return p.frames
}

// Scene projects frame f.
func (p *Projector) Scene(f int) Scene {
	scene := Scene{Frame: f, Time: math.NaN()}
	for _, tag := range p.tags {
		s := p.trajectories[tag][f]
		if !math.IsNaN(s.Time) {
			scene.Time = s.Time
		}
		scene.Points = append(scene.Points, Point{
			H:     s.Z,
			V:     s.X,
			Color: p.colors[tag],
			Big:   !tag.Qualified(),
		})
	}
	for _, tag := range p.chain {
		s := p.trajectories[tag][f]
		scene.Linkage = append(scene.Linkage, plotter.XY{X: s.Z, Y: s.X})
	}
	if p.trailUntil != nil {
		scene.Trail = p.trail[:p.trailUntil[f]]
	}
	return scene
}

func (p *Projector) buildTrail(bodies []mocap.Tag) {
	p.trailUntil = make([]int, p.frames)
	for f := 0; f < p.frames; f++ {
		if com, ok := CenterOfMass(p.trajectories, bodies, f); ok {
			p.trail = append(p.trail, com)
		}
		p.trailUntil[f] = len(p.trail)
	}
}

// RigidBodies returns the unqualified tags.
func RigidBodies(tags []mocap.Tag) []mocap.Tag {
	var bodies []mocap.Tag
	for _, tag := range tags {
		if !tag.Qualified() {
			bodies = append(bodies, tag)
		}
	}
	return bodies
}

// CenterOfMass returns the mean (z, x) position of bodies at frame f. It
// reports false when there are no bodies or any of them is occluded.
func CenterOfMass(trajectories map[mocap.Tag]mocap.Trajectory, bodies []mocap.Tag, f int) (plotter.XY, bool) {
	if len(bodies) == 0 {
		return plotter.XY{}, false
	}
	hs := make([]float64, 0, len(bodies))
	vs := make([]float64, 0, len(bodies))
	for _, tag := range bodies {
		trajectory := trajectories[tag]
		if f >= len(trajectory) {
			return plotter.XY{}, false
		}
		hs = append(hs, trajectory[f].Z)
		vs = append(vs, trajectory[f].X)
	}
	com := plotter.XY{X: stat.Mean(hs, nil), Y: stat.Mean(vs, nil)}
	if math.IsNaN(com.X) || math.IsNaN(com.Y) {
		return plotter.XY{}, false
	}
	return com, true
}
