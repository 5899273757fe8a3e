// Package convent writes trajectories and joint angles as flat CSV tables.
package convent

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"mocapToolkit/src/joint"
	"mocapToolkit/src/logging"
	"mocapToolkit/src/mocap"
)

const valueFormat = "%.5f"

// WriteJointAngles writes the angle series under header, one row per frame.
func WriteJointAngles(series joint.Series, header []string, filePath string) error {
	for i, row := range series {
		if len(row) != len(header) {
			return fmt.Errorf("angle row %d has %d values, header has %d", i, len(row), len(header))
		}
	}
	return writeTable(filePath, header, series)
}

// WriteTrajectories writes the time column followed by the x, y and z of
// every tag in order.
func WriteTrajectories(trajectories map[mocap.Tag]mocap.Trajectory, tags []mocap.Tag, filePath string) error {
	startTime := time.Now()

	frames, err := frameCount(trajectories, tags)
	if err != nil {
		return err
	}

	header := []string{"time"}
	for _, tag := range tags {
		for _, axis := range []string{"x", "y", "z"} {
			header = append(header, fmt.Sprintf("%s.%s", tag, axis))
		}
	}

	data := make([][]float64, frames)
	for f := range data {
		row := make([]float64, 0, len(header))
		row = append(row, trajectories[tags[0]][f].Time)
		for _, tag := range tags {
			s := trajectories[tag][f]
			row = append(row, s.X, s.Y, s.Z)
		}
		data[f] = row
	}

	logging.Logger.Debug().Dur("elapsed", time.Since(startTime)).Msg("positions")
	return writeTable(filePath, header, data)
}

// WriteRotations writes the time column followed by the Y rotation of every
// rigid body among tags. Qualified marker tags carry no rotation and are
// skipped.
func WriteRotations(trajectories map[mocap.Tag]mocap.Trajectory, tags []mocap.Tag, filePath string) error {
	startTime := time.Now()

	var bodies []mocap.Tag
	for _, tag := range tags {
		if !tag.Qualified() {
			bodies = append(bodies, tag)
		}
	}
	if len(bodies) == 0 {
		return fmt.Errorf("no rigid bodies among %d tags", len(tags))
	}
	frames, err := frameCount(trajectories, bodies)
	if err != nil {
		return err
	}

	header := []string{"time"}
	for _, tag := range bodies {
		header = append(header, fmt.Sprintf("%s.rot_y", tag))
	}

	data := make([][]float64, frames)
	for f := range data {
		row := make([]float64, 0, len(header))
		row = append(row, trajectories[bodies[0]][f].Time)
		for _, tag := range bodies {
			row = append(row, trajectories[tag][f].RotY)
		}
		data[f] = row
	}

	logging.Logger.Debug().Dur("elapsed", time.Since(startTime)).Msg("rotations")
	return writeTable(filePath, header, data)
}

func frameCount(trajectories map[mocap.Tag]mocap.Trajectory, tags []mocap.Tag) (int, error) {
	if len(tags) == 0 {
		return 0, fmt.Errorf("no tags to write")
	}
	frames := -1
	for _, tag := range tags {
		trajectory, ok := trajectories[tag]
		if !ok {
			return 0, &mocap.UnknownTagError{Tag: tag}
		}
		if frames < 0 {
			frames = len(trajectory)
		} else if len(trajectory) != frames {
			return 0, fmt.Errorf("trajectory %q has %d frames, expected %d", tag, len(trajectory), frames)
		}
	}
	return frames, nil
}

func writeTable(filePath string, header []string, data [][]float64) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("could not write to file %s: %w", filePath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	record := make([]string, 0, len(header))
	for _, row := range data {
		record = record[:0]
		for _, v := range row {
			record = append(record, fmt.Sprintf(valueFormat, v))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
