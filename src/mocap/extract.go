package mocap

import (
	"math"
	"sync"
)

const noChannel = -1

// channelLayout holds column offsets relative to the tag's header column.
type channelLayout struct {
	rotY, x, y, z int
}

var (
	// Markers are point samples: position only.
	markerLayout = channelLayout{rotY: noChannel, x: 0, y: 1, z: 2}
	// Rigid bodies carry rotation X, Y, Z followed by position X, Y, Z.
	bodyLayout = channelLayout{rotY: 1, x: 3, y: 4, z: 5}
)

func layoutOf(tag Tag) channelLayout {
	if tag.Qualified() {
		return markerLayout
	}
	return bodyLayout
}

// Extract reads the trajectory of tag. The returned trajectory always has
// one sample per declared frame; rows that fail to parse are kept with NaN
// fields.
func Extract(doc *Document, tag Tag, highlight []Tag, palette Palette) (Trajectory, int, error) {
	frames, err := doc.NFrames()
	if err != nil {
		return nil, 0, err
	}
	column, err := doc.Column(tag)
	if err != nil {
		return nil, 0, err
	}

	layout := layoutOf(tag)
	color := palette.Classify(tag, highlight)

	trajectory := make(Trajectory, frames)
	for f := range trajectory {
		sample := readSample(doc, DataRow+f, column, layout)
		sample.Color = color
		trajectory[f] = sample
	}
	return trajectory, frames, nil
}

// readSample reads every channel of one row and blanks the whole sample if
// any of them failed.
func readSample(doc *Document, row, column int, layout channelLayout) Sample {
	time, okTime := doc.field(row, TimeColumn)
	rotY, okRot := math.NaN(), true
	if layout.rotY != noChannel {
		rotY, okRot = doc.field(row, column+layout.rotY)
	}
	x, okX := doc.field(row, column+layout.x)
	y, okY := doc.field(row, column+layout.y)
	z, okZ := doc.field(row, column+layout.z)

	if !(okTime && okRot && okX && okY && okZ) {
		return blankSample()
	}
	return Sample{Time: time, RotY: rotY, X: x, Y: y, Z: z}
}

func blankSample() Sample {
	nan := math.NaN()
	return Sample{Time: nan, RotY: nan, X: nan, Y: nan, Z: nan}
}

// ExtractAll extracts every tag concurrently. Any structural error aborts the
// whole call and no trajectories are returned.
func ExtractAll(doc *Document, tags []Tag, highlight []Tag, palette Palette) (map[Tag]Trajectory, int, error) {
	frames, err := doc.NFrames()
	if err != nil {
		return nil, 0, err
	}

	results := make([]Trajectory, len(tags))
	errCh := make(chan error, len(tags))
	var wg sync.WaitGroup

	for i, tag := range tags {
		wg.Add(1)
		go func(i int, tag Tag) {
			defer wg.Done()
			trajectory, _, err := Extract(doc, tag, highlight, palette)
			if err != nil {
				errCh <- err
				return
			}
			results[i] = trajectory
		}(i, tag)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return nil, 0, err
		}
	}

	trajectories := make(map[Tag]Trajectory, len(tags))
	for i, tag := range tags {
		trajectories[tag] = results[i]
	}
	return trajectories, frames, nil
}
