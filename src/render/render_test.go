package render

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"mocapToolkit/src/joint"
	"mocapToolkit/src/mocap"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#606060", want: color.RGBA{0x60, 0x60, 0x60, 0xff}},
		{in: "#FF0000", want: color.RGBA{0xff, 0, 0, 0xff}},
		{in: "#0f0", want: color.RGBA{0, 0xff, 0, 0xff}},
		{in: "r", want: color.RGBA{255, 0, 0, 255}},
		{in: "Black", want: color.RGBA{0, 0, 0, 255}},
		{in: "cornflowerblue", want: color.RGBA{100, 149, 237, 255}},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
		{in: "chartreuse-ish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette("#606060", "#000000", "#FF0000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x60, 0x60, 0x60, 0xff}, p.Marker)

	_, err = ParsePalette("#606060", "nope", "#FF0000")
	require.Error(t, err)
}

func sample(t, h, v float64, c string) mocap.Sample {
	return mocap.Sample{Time: t, Z: h, X: v, RotY: math.NaN(), Color: c}
}

func testTrajectories() map[mocap.Tag]mocap.Trajectory {
	nan := math.NaN()
	return map[mocap.Tag]mocap.Trajectory{
		"RB1":    {sample(0, 0, 0, "#FF0000"), sample(1, 1, 1, "#FF0000"), sample(2, 2, 2, "#FF0000")},
		"RB2":    {sample(0, 2, 0, "#FF0000"), sample(1, 3, 1, "#FF0000"), {Time: nan, X: nan, Y: nan, Z: nan, Color: "#FF0000"}},
		"RB1:M1": {sample(0, 0.5, 0.1, "#000000"), sample(1, 0.6, 0.2, "#000000"), sample(2, 0.7, 0.3, "#000000")},
		"RB2:M1": {sample(0, 1.5, 0.1, "#606060"), sample(1, 1.6, 0.2, "#606060"), sample(2, 1.7, 0.3, "#606060")},
	}
}

func TestProjector_SceneOrder(t *testing.T) {
	tags := []mocap.Tag{"RB1", "RB2", "RB1:M1", "RB2:M1"}
	chain := []mocap.Tag{"RB2:M1", "RB1:M1"}

	p, err := NewProjector(testTrajectories(), tags, chain, false)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Frames())

	scene := p.Scene(1)
	require.Len(t, scene.Points, 4)
	assert.Equal(t, Point{H: 1, V: 1, Color: color.RGBA{255, 0, 0, 255}, Big: true}, scene.Points[0])
	assert.Equal(t, Point{H: 0.6, V: 0.2, Color: color.RGBA{0, 0, 0, 255}, Big: false}, scene.Points[2])
	assert.Equal(t, plotter.XYs{{X: 1.6, Y: 0.2}, {X: 0.6, Y: 0.2}}, scene.Linkage)
	assert.Equal(t, 1.0, scene.Time)
	assert.Nil(t, scene.Trail)
}

func TestProjector_Trail(t *testing.T) {
	tags := []mocap.Tag{"RB1", "RB2", "RB1:M1"}

	p, err := NewProjector(testTrajectories(), tags, nil, true)
	require.NoError(t, err)

	assert.Equal(t, plotter.XYs{{X: 1, Y: 0}}, p.Scene(0).Trail)
	assert.Equal(t, plotter.XYs{{X: 1, Y: 0}, {X: 2, Y: 1}}, p.Scene(1).Trail)
	// RB2 is occluded in frame 2 so the trail does not grow.
	assert.Len(t, p.Scene(2).Trail, 2)
}

func TestNewProjector_Errors(t *testing.T) {
	trajs := testTrajectories()

	_, err := NewProjector(trajs, []mocap.Tag{"RB1"}, []mocap.Tag{"missing"}, false)
	require.Error(t, err)

	trajs["short"] = mocap.Trajectory{sample(0, 0, 0, "#000000")}
	_, err = NewProjector(trajs, []mocap.Tag{"RB1", "short"}, nil, false)
	require.Error(t, err)

	trajs["badcolor"] = mocap.Trajectory{sample(0, 0, 0, "??"), sample(0, 0, 0, "??"), sample(0, 0, 0, "??")}
	_, err = NewProjector(trajs, []mocap.Tag{"RB1", "badcolor"}, nil, false)
	require.Error(t, err)
}

func TestCenterOfMass(t *testing.T) {
	trajs := testTrajectories()

	com, ok := CenterOfMass(trajs, []mocap.Tag{"RB1", "RB2"}, 0)
	require.True(t, ok)
	assert.InDelta(t, 1.0, com.X, 1e-12)
	assert.InDelta(t, 0.0, com.Y, 1e-12)

	_, ok = CenterOfMass(trajs, []mocap.Tag{"RB1", "RB2"}, 2)
	assert.False(t, ok)

	_, ok = CenterOfMass(trajs, nil, 0)
	assert.False(t, ok)
}

func TestRigidBodies(t *testing.T) {
	assert.Equal(t, []mocap.Tag{"RB1", "RB2"}, RigidBodies([]mocap.Tag{"RB1", "RB1:M1", "RB2"}))
}

func testOptions(t *testing.T) Options {
	palette, err := ParsePalette("#606060", "#000000", "#FF0000")
	require.NoError(t, err)
	return Options{
		Title:     "MoCap Post Processing from: take.csv",
		Width:     4 * vg.Inch,
		Height:    3 * vg.Inch,
		DPI:       50,
		RangeMin:  -0.75,
		RangeMax:  0.2,
		DomainMin: -1,
		DomainMax: 1,
		Palette:   palette,
	}
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer(testOptions(t))
	require.NoError(t, err)

	p, err := NewProjector(testTrajectories(), []mocap.Tag{"RB1", "RB2", "RB1:M1"}, []mocap.Tag{"RB1", "RB1:M1"}, true)
	require.NoError(t, err)

	for f := 0; f < p.Frames(); f++ {
		img, err := r.Render(p.Scene(f))
		require.NoError(t, err)
		assert.Equal(t, 200, img.Bounds().Dx())
		assert.Equal(t, 150, img.Bounds().Dy())
	}
}

func TestRenderer_PlotKeepsAxisWindow(t *testing.T) {
	r, err := NewRenderer(testOptions(t))
	require.NoError(t, err)

	p, err := r.Plot(Scene{Points: []Point{{H: 50, V: 50, Color: color.Black}}})
	require.NoError(t, err)
	assert.Equal(t, -1.0, p.X.Min)
	assert.Equal(t, 1.0, p.X.Max)
	assert.Equal(t, -0.75, p.Y.Min)
	assert.Equal(t, 0.2, p.Y.Max)
}

func TestRenderer_Save(t *testing.T) {
	r, err := NewRenderer(testOptions(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, r.Save(Scene{}, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestNewRenderer_Invalid(t *testing.T) {
	opts := testOptions(t)
	opts.RangeMin, opts.RangeMax = 1, 1
	_, err := NewRenderer(opts)
	require.Error(t, err)

	opts = testOptions(t)
	opts.Width = 0
	_, err = NewRenderer(opts)
	require.Error(t, err)
}

func TestGroupPoints(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	groups := groupPoints([]Point{
		{H: 0, V: 0, Color: red, Big: true},
		{H: math.NaN(), V: 0, Color: red, Big: true},
		{H: 1, V: 1, Color: color.Black},
		{H: 2, V: 2, Color: red, Big: true},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, plotter.XYs{{X: 0, Y: 0}, {X: 2, Y: 2}}, groups[0].xys)
	assert.Len(t, groups[1].xys, 1)
}

func TestPlotAngles(t *testing.T) {
	series := joint.Series{
		{0, 0.1, math.NaN()},
		{0.1, 0.2, 0.3},
		{0.2, 0.3, 0.4},
	}
	path := filepath.Join(t.TempDir(), "angles.png")

	require.NoError(t, PlotAngles(series, []string{"Time", "Joint Angle 1", "Joint Angle 2"}, path, 4*vg.Inch, 3*vg.Inch))
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.Error(t, PlotAngles(series, []string{"Time"}, path, 4*vg.Inch, 3*vg.Inch))
}
