package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"mocapToolkit/src/joint"
)

// PlotAngles plots every joint angle of series against time and saves the
// figure to path.
func PlotAngles(series joint.Series, header []string, path string, width, height vg.Length) error {
	if len(header) < 2 {
		return fmt.Errorf("no joint angles to plot")
	}

	p := plot.New()
	p.Title.Text = "Joint Angles"
	p.X.Label.Text = header[0] + " (seconds)"
	p.Y.Label.Text = "Angle (radians)"
	p.Add(plotter.NewGrid())

	var lines []interface{}
	for j := 1; j < len(header); j++ {
		var pts plotter.XYs
		for _, row := range series {
			if j >= len(row) || math.IsNaN(row[0]) || math.IsNaN(row[j]) {
				continue
			}
			pts = append(pts, plotter.XY{X: row[0], Y: row[j]})
		}
		if len(pts) == 0 {
			continue
		}
		lines = append(lines, header[j], pts)
	}
	if len(lines) > 0 {
		if err := plotutil.AddLines(p, lines...); err != nil {
			return err
		}
	}

	p.Y.Min, p.Y.Max = -math.Pi, math.Pi
	return p.Save(width, height, path)
}
