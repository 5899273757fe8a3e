package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// shortColors are the single-letter color codes used by common plotting tools.
var shortColors = map[string]color.RGBA{
	"b": {0, 0, 255, 255},
	"g": {0, 128, 0, 255},
	"r": {255, 0, 0, 255},
	"c": {0, 191, 191, 255},
	"m": {191, 0, 191, 255},
	"y": {191, 191, 0, 255},
	"k": {0, 0, 0, 255},
	"w": {255, 255, 255, 255},
}

// ParseColor parses "#RRGGBB", "#RGB", a single-letter code or an SVG color
// name.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := shortColors[name]; ok {
		return c, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	if !strings.HasPrefix(name, "#") {
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}

	hex := name[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.RGBA{}, fmt.Errorf("bad hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Palette is a parsed mocap.Palette.
type Palette struct {
	Marker    color.Color
	Highlight color.Color
	RigidBody color.Color
}

// ParsePalette parses the three classification colors.
func ParsePalette(marker, highlight, rigidBody string) (Palette, error) {
	var p Palette
	var err error
	var c color.RGBA
	if c, err = ParseColor(marker); err != nil {
		return p, err
	}
	p.Marker = c
	if c, err = ParseColor(highlight); err != nil {
		return p, err
	}
	p.Highlight = c
	if c, err = ParseColor(rigidBody); err != nil {
		return p, err
	}
	p.RigidBody = c
	return p, nil
}
