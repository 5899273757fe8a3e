package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Legend labels, in drawing order.
const (
	LegendMarker    = "MoCap Sensor"
	LegendHighlight = "MoCap Sensor at link end/start"
	LegendRigidBody = "MoCap Rigid Body Position (COM)"
)

var (
	markerRadius = vg.Points(2)
	bodyRadius   = vg.Points(5)
	trailRadius  = vg.Points(1)
)

// Options describes the figure.
type Options struct {
	Title     string
	Width     vg.Length
	Height    vg.Length
	DPI       int
	RangeMin  float64
	RangeMax  float64
	DomainMin float64
	DomainMax float64
	Palette   Palette
}

// Renderer draws scenes onto fixed-size raster frames.
type Renderer struct {
	opts Options
}

// NewRenderer checks opts and returns a Renderer.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("figure size must be positive, got %v x %v", opts.Width, opts.Height)
	}
	if opts.DPI <= 0 {
		opts.DPI = vgimg.DefaultDPI
	}
	if !(opts.RangeMin < opts.RangeMax) || !(opts.DomainMin < opts.DomainMax) {
		return nil, fmt.Errorf("empty axis window: range [%g, %g], domain [%g, %g]",
			opts.RangeMin, opts.RangeMax, opts.DomainMin, opts.DomainMax)
	}
	return &Renderer{opts: opts}, nil
}

// Plot builds the figure for scene.
func (r *Renderer) Plot(scene Scene) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = r.opts.Title
	p.X.Label.Text = "Z Position (meters)"
	p.Y.Label.Text = "X Position (meters)"
	p.Add(plotter.NewGrid())

	if len(scene.Trail) > 0 {
		trail, err := plotter.NewScatter(scene.Trail)
		if err != nil {
			return nil, err
		}
		trail.GlyphStyle = glyph(r.opts.Palette.RigidBody, trailRadius)
		p.Add(trail)
	}

	if linkage := finite(scene.Linkage); len(linkage) > 1 {
		line, err := plotter.NewLine(linkage)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = r.opts.Palette.Highlight
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
	}

	for _, group := range groupPoints(scene.Points) {
		s, err := plotter.NewScatter(group.xys)
		if err != nil {
			return nil, err
		}
		radius := markerRadius
		if group.big {
			radius = bodyRadius
		}
		s.GlyphStyle = glyph(group.color, radius)
		p.Add(s)
	}

	if err := r.legend(p); err != nil {
		return nil, err
	}

	p.X.Min, p.X.Max = r.opts.DomainMin, r.opts.DomainMax
	p.Y.Min, p.Y.Max = r.opts.RangeMin, r.opts.RangeMax
	return p, nil
}

// Render draws scene into an image of the configured size.
func (r *Renderer) Render(scene Scene) (image.Image, error) {
	p, err := r.Plot(scene)
	if err != nil {
		return nil, err
	}
	canvas := vgimg.NewWith(
		vgimg.UseWH(r.opts.Width, r.opts.Height),
		vgimg.UseDPI(r.opts.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	p.Draw(draw.New(canvas))
	return canvas.Image(), nil
}

// Save writes scene to path; the format follows the file extension.
func (r *Renderer) Save(scene Scene, path string) error {
	p, err := r.Plot(scene)
	if err != nil {
		return err
	}
	return p.Save(r.opts.Width, r.opts.Height, path)
}

func (r *Renderer) legend(p *plot.Plot) error {
	entries := []struct {
		label  string
		color  color.Color
		radius vg.Length
	}{
		{LegendMarker, r.opts.Palette.Marker, markerRadius},
		{LegendHighlight, r.opts.Palette.Highlight, markerRadius},
		{LegendRigidBody, r.opts.Palette.RigidBody, bodyRadius},
	}
	for _, e := range entries {
		thumb, err := plotter.NewScatter(plotter.XYs{})
		if err != nil {
			return err
		}
		thumb.GlyphStyle = glyph(e.color, e.radius)
		p.Legend.Add(e.label, thumb)
	}
	p.Legend.Top = false
	p.Legend.Left = false
	return nil
}

func glyph(c color.Color, radius vg.Length) draw.GlyphStyle {
	return draw.GlyphStyle{Color: c, Radius: radius, Shape: draw.CircleGlyph{}}
}

type pointGroup struct {
	color color.Color
	big   bool
	xys   plotter.XYs
}

// groupPoints batches finite points by style, keeping first-seen order.
func groupPoints(points []Point) []*pointGroup {
	var groups []*pointGroup
	for _, pt := range points {
		if math.IsNaN(pt.H) || math.IsNaN(pt.V) || math.IsInf(pt.H, 0) || math.IsInf(pt.V, 0) {
			continue
		}
		var group *pointGroup
		for _, g := range groups {
			if g.big == pt.Big && sameColor(g.color, pt.Color) {
				group = g
				break
			}
		}
		if group == nil {
			group = &pointGroup{color: pt.Color, big: pt.Big}
			groups = append(groups, group)
		}
		group.xys = append(group.xys, plotter.XY{X: pt.H, Y: pt.V})
	}
	return groups
}

func sameColor(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

// finite drops occluded points from a polyline.
func finite(xys plotter.XYs) plotter.XYs {
	out := make(plotter.XYs, 0, len(xys))
	for _, xy := range xys {
		if math.IsNaN(xy.X) || math.IsNaN(xy.Y) || math.IsInf(xy.X, 0) || math.IsInf(xy.Y, 0) {
			continue
		}
		out = append(out, xy)
	}
	return out
}
