package animate

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mocapToolkit/src/mocap"
)

func testTrajectories() map[mocap.Tag]mocap.Trajectory {
	nan := math.NaN()
	blank := mocap.Sample{Time: nan, RotY: nan, X: nan, Y: nan, Z: nan, Color: "#606060"}
	return map[mocap.Tag]mocap.Trajectory{
		"RB1":    {{Time: 0, X: 0.1, Z: 0.2, Color: "#FF0000"}, {Time: 0.5, X: 0.3, Z: 0.4, Color: "#FF0000"}, {Time: 1, X: 0.5, Z: 0.6, Color: "#FF0000"}},
		"RB1:M1": {{Time: 0, X: 1, Z: 2, Color: "#000000"}, {Time: 0.5, X: 3, Z: 4, Color: "#000000"}, {Time: 1, X: 5, Z: 6, Color: "#000000"}},
		"RB1:M2": {{Time: 0, X: -1, Z: -2, Color: "#606060"}, blank, {Time: 1, X: -5, Z: -6, Color: "#606060"}},
	}
}

func testOptions() Options {
	return Options{Title: "take", Stride: 1, FrameDurationMs: 8, RangeMin: -2.5, RangeMax: 2.5, DomainMin: -2.5, DomainMax: 2.5}
}

func TestBuild_Frames(t *testing.T) {
	tags := []mocap.Tag{"RB1", "RB1:M1", "RB1:M2"}
	chain := []mocap.Tag{"RB1:M1", "RB1"}

	fig, err := build(testTrajectories(), tags, chain, testOptions())
	require.NoError(t, err)
	require.Len(t, fig.Frames, 3)
	require.Len(t, fig.Data, 2)

	first := fig.Frames[1].Data[0]
	assert.Equal(t, []number{0.4, 4}, first.X[:2])
	assert.True(t, math.IsNaN(float64(first.X[2])))
	assert.Equal(t, []string{"RB1", "RB1:M1", "RB1:M2"}, first.Text)
	assert.Equal(t, []int{13, 6, 6}, first.Marker.Size)
	assert.Equal(t, []string{"#FF0000", "#000000", "#606060"}, first.Marker.Color)

	link := fig.Frames[2].Data[1]
	assert.Equal(t, "lines", link.Mode)
	assert.Equal(t, []number{6, 0.6}, link.X)
	assert.Equal(t, []number{5, 0.5}, link.Y)
}

func TestBuild_Stride(t *testing.T) {
	opts := testOptions()
	opts.Stride = 2

	fig, err := build(testTrajectories(), []mocap.Tag{"RB1"}, nil, opts)
	require.NoError(t, err)
	require.Len(t, fig.Frames, 2)
	assert.Equal(t, "0", fig.Frames[0].Name)
	assert.Equal(t, "2", fig.Frames[1].Name)
	assert.Len(t, fig.Frames[0].Data, 1, "no linkage without a chain")
}

func TestBuild_Errors(t *testing.T) {
	_, err := build(testTrajectories(), nil, nil, testOptions())
	require.Error(t, err)

	_, err = build(testTrajectories(), []mocap.Tag{"RB1"}, []mocap.Tag{"RB9"}, testOptions())
	require.Error(t, err)

	trajs := testTrajectories()
	trajs["short"] = mocap.Trajectory{{}}
	_, err = build(trajs, []mocap.Tag{"RB1", "short"}, nil, testOptions())
	require.Error(t, err)
}

func TestNumber_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]number{1.5, number(math.NaN()), number(math.Inf(1)), -2})
	require.NoError(t, err)
	assert.Equal(t, "[1.5,null,null,-2]", string(data))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, testTrajectories(), []mocap.Tag{"RB1:M2", "RB1"}, nil, testOptions())
	require.NoError(t, err)

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, PlotlyURL)
	assert.Contains(t, html, "Plotly.newPlot")
	assert.Contains(t, html, `"frames":[`)
	assert.Contains(t, html, "null", "occluded sample is a gap")
	assert.Contains(t, html, `"label":"0.000"`)
	assert.Contains(t, html, `"label":"#1"`)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.html")
	require.NoError(t, WriteFile(path, testTrajectories(), []mocap.Tag{"RB1"}, nil, testOptions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>take</title>")
}
