// Package joint computes planar joint angles along a chain of tracked markers.
//
// Positions are projected onto the linkage plane with the motion-capture axis
// remap used by linkage modelling tools: world z is the horizontal axis and
// world x the vertical one.
package joint

import (
	"fmt"
	"math"
	"strconv"

	"mocapToolkit/src/mocap"
)

// MinChain is the shortest chain that has an interior joint.
const MinChain = 3

// ChainError reports a chain that cannot produce angles.
type ChainError struct {
	Length int
	Reason string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("invalid linkage chain of length %d: %s", e.Length, e.Reason)
}

// Series holds one row per frame: the time followed by one angle per
// interior joint, in radians.
type Series [][]float64

// Vec is a vector in the (horizontal, vertical) linkage plane.
type Vec struct {
	H, V float64
}

// Project maps a sample onto the linkage plane.
func Project(s mocap.Sample) Vec {
	return Vec{H: s.Z, V: s.X}
}

// Sub returns v - w.
func (v Vec) Sub(w Vec) Vec {
	return Vec{H: v.H - w.H, V: v.V - w.V}
}

// SignedAngle returns the angle that turns v1 onto v2 in (-pi, pi],
// positive counter-clockwise. NaN components propagate.
func SignedAngle(v1, v2 Vec) float64 {
	cross := v1.H*v2.V - v1.V*v2.H
	dot := v1.H*v2.H + v1.V*v2.V
	return math.Atan2(cross, dot)
}

// Angle returns the bend at b of the links a-b and b-c.
func Angle(a, b, c mocap.Sample) float64 {
	pa, pb, pc := Project(a), Project(b), Project(c)
	return SignedAngle(pb.Sub(pa), pc.Sub(pb))
}

// ComputeAngles returns the joint angles of chain for every frame. The first
// tag is the chain start, the last the chain end, and every tag in between a
// joint. Times come from the first tag's trajectory.
func ComputeAngles(trajectories map[mocap.Tag]mocap.Trajectory, chain []mocap.Tag) (Series, error) {
	if len(chain) < MinChain {
		return nil, &ChainError{Length: len(chain), Reason: "need a start, at least one joint and an end"}
	}

	links := make([]mocap.Trajectory, len(chain))
	for i, tag := range chain {
		trajectory, ok := trajectories[tag]
		if !ok {
			return nil, &mocap.UnknownTagError{Tag: tag}
		}
		links[i] = trajectory
	}
	frames := len(links[0])
	for i, trajectory := range links {
		if len(trajectory) != frames {
			return nil, &ChainError{
				Length: len(chain),
				Reason: fmt.Sprintf("%q has %d frames, %q has %d", chain[i], len(trajectory), chain[0], frames),
			}
		}
	}

	joints := len(chain) - 2
	series := make(Series, frames)
	for f := 0; f < frames; f++ {
		row := make([]float64, 0, joints+1)
		row = append(row, links[0][f].Time)
		for j := 1; j <= joints; j++ {
			row = append(row, Angle(links[j-1][f], links[j][f], links[j+1][f]))
		}
		series[f] = row
	}
	return series, nil
}

// Header returns the column names of a Series computed over chain.
func Header(chain []mocap.Tag) []string {
	header := []string{"Time"}
	for j := 1; j <= len(chain)-2; j++ {
		header = append(header, "Joint Angle "+strconv.Itoa(j))
	}
	return header
}
