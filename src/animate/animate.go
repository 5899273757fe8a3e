// Package animate exports trajectories as a standalone interactive scatter
// animation with a frame slider.
package animate

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"strconv"

	"mocapToolkit/src/mocap"
)

// PlotlyURL is the script the page loads its plotting library from.
const PlotlyURL = "https://cdn.plot.ly/plotly-2.27.0.min.js"

// Options configures the animation.
type Options struct {
	Title           string
	Stride          int
	FrameDurationMs int
	RangeMin        float64
	RangeMax        float64
	DomainMin       float64
	DomainMax       float64
}

// number marshals NaN as null so occluded samples become gaps.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

type marker struct {
	Color []string `json:"color"`
	Size  []int    `json:"size"`
}

type line struct {
	Color string `json:"color"`
	Width int    `json:"width"`
}

type trace struct {
	Type   string   `json:"type"`
	Mode   string   `json:"mode"`
	Name   string   `json:"name"`
	X      []number `json:"x"`
	Y      []number `json:"y"`
	Text   []string `json:"text,omitempty"`
	Marker *marker  `json:"marker,omitempty"`
	Line   *line    `json:"line,omitempty"`
}

type frame struct {
	Name string  `json:"name"`
	Data []trace `json:"data"`
}

type figure struct {
	Data   []trace        `json:"data"`
	Layout map[string]any `json:"layout"`
	Frames []frame        `json:"frames"`
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
</head>
<body>
<div id="mocap" style="width:100%;height:95vh;"></div>
<script>
const figure = {{.Figure}};
Plotly.newPlot("mocap", figure.data, figure.layout).then(function () {
  return Plotly.addFrames("mocap", figure.frames);
});
</script>
</body>
</html>
`))

// Write renders the animation page for tags, drawing chain as the linkage.
func Write(w io.Writer, trajectories map[mocap.Tag]mocap.Trajectory, tags, chain []mocap.Tag, opts Options) error {
	fig, err := build(trajectories, tags, chain, opts)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fig)
	if err != nil {
		return err
	}
	return page.Execute(w, struct {
		Title  string
		Script string
		Figure template.JS
	}{
		Title:  opts.Title,
		Script: PlotlyURL,
		Figure: template.JS(data),
	})
}

// WriteFile writes the animation page to path.
func WriteFile(path string, trajectories map[mocap.Tag]mocap.Trajectory, tags, chain []mocap.Tag, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, trajectories, tags, chain, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func build(trajectories map[mocap.Tag]mocap.Trajectory, tags, chain []mocap.Tag, opts Options) (*figure, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("no marker tags to animate")
	}
	frames := -1
	for _, tag := range append(append([]mocap.Tag{}, tags...), chain...) {
		trajectory, ok := trajectories[tag]
		if !ok {
			return nil, &mocap.UnknownTagError{Tag: tag}
		}
		if frames < 0 {
			frames = len(trajectory)
		} else if len(trajectory) != frames {
			return nil, fmt.Errorf("trajectory %q has %d frames, expected %d", tag, len(trajectory), frames)
		}
	}
	stride := opts.Stride
	if stride < 1 {
		stride = 1
	}

	fig := &figure{}
	var steps []map[string]any
	for f := 0; f < frames; f += stride {
		data := []trace{markers(trajectories, tags, f)}
		if len(chain) > 1 {
			data = append(data, linkage(trajectories, chain, f))
		}
		name := strconv.Itoa(f)
		fig.Frames = append(fig.Frames, frame{Name: name, Data: data})
		if fig.Data == nil {
			fig.Data = data
		}
		steps = append(steps, map[string]any{
			"method": "animate",
			"label":  timeLabel(trajectories[tags[0]][f].Time, f),
			"args": []any{[]string{name}, map[string]any{
				"mode":       "immediate",
				"frame":      map[string]any{"duration": opts.FrameDurationMs, "redraw": false},
				"transition": map[string]any{"duration": 0},
			}},
		})
	}
	if fig.Data == nil {
		fig.Data = []trace{}
	}

	fig.Layout = map[string]any{
		"title":      map[string]any{"text": opts.Title},
		"showlegend": false,
		"xaxis":      map[string]any{"title": map[string]any{"text": "Z Position (meters)"}, "range": []float64{opts.DomainMin, opts.DomainMax}},
		"yaxis":      map[string]any{"title": map[string]any{"text": "X Position (meters)"}, "range": []float64{opts.RangeMin, opts.RangeMax}, "scaleanchor": "x"},
		"sliders":    []any{map[string]any{"active": 0, "currentvalue": map[string]any{"prefix": "time: "}, "steps": steps}},
		"updatemenus": []any{map[string]any{
			"type": "buttons",
			"buttons": []any{
				map[string]any{"label": "Play", "method": "animate", "args": []any{nil, map[string]any{
					"fromcurrent": true,
					"frame":       map[string]any{"duration": opts.FrameDurationMs, "redraw": false},
					"transition":  map[string]any{"duration": 0},
				}}},
				map[string]any{"label": "Pause", "method": "animate", "args": []any{[]any{nil}, map[string]any{
					"mode":  "immediate",
					"frame": map[string]any{"duration": 0, "redraw": false},
				}}},
			},
		}},
	}
	return fig, nil
}

func markers(trajectories map[mocap.Tag]mocap.Trajectory, tags []mocap.Tag, f int) trace {
	t := trace{Type: "scatter", Mode: "markers", Name: "markers", Marker: &marker{}}
	for _, tag := range tags {
		s := trajectories[tag][f]
		t.X = append(t.X, number(s.Z))
		t.Y = append(t.Y, number(s.X))
		t.Text = append(t.Text, tag.String())
		t.Marker.Color = append(t.Marker.Color, s.Color)
		size := 6
		if !tag.Qualified() {
			size = 13
		}
		t.Marker.Size = append(t.Marker.Size, size)
	}
	return t
}

func linkage(trajectories map[mocap.Tag]mocap.Trajectory, chain []mocap.Tag, f int) trace {
	color := trajectories[chain[0]][f].Color
	t := trace{Type: "scatter", Mode: "lines", Name: "linkage", Line: &line{Color: color, Width: 2}}
	for _, tag := range chain {
		s := trajectories[tag][f]
		t.X = append(t.X, number(s.Z))
		t.Y = append(t.Y, number(s.X))
	}
	return t
}

func timeLabel(time float64, f int) string {
	if math.IsNaN(time) {
		return "#" + strconv.Itoa(f)
	}
	return strconv.FormatFloat(time, 'f', 3, 64)
}
