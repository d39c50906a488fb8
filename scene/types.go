package scene

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/sdfcanvas"
)

// Rect is [min.x, min.y, max.x, max.y] in logical units.
type Rect [4]float32

// Rect converts r to a canvas rect.
func (r Rect) Rect() sdfcanvas.Rect { return sdfcanvas.R(r[0], r[1], r[2], r[3]) }

// Point is [x, y] in logical units.
type Point [2]float32

// Vec2 converts p to a canvas vector.
func (p Point) Vec2() sdfcanvas.Vec2 { return sdfcanvas.V2(p[0], p[1]) }

// Color is a straight-alpha sRGB color written as a hex string
// ("#rgb", "#rgba", "#rrggbb" or "#rrggbbaa").
type Color sdfcanvas.RGBA

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return fmt.Errorf("line %d: color %q: want 3, 4, 6 or 8 hex digits", value.Line, s)
	}
	for _, ch := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", ch) {
			return fmt.Errorf("line %d: color %q: invalid digit %q", value.Line, s, ch)
		}
	}
	*c = Color(sdfcanvas.Hex(hex))
	return nil
}

// RGBA returns the color as a canvas color.
func (c Color) RGBA() sdfcanvas.RGBA { return sdfcanvas.RGBA(c) }

// Radii accepts either one number for all corners or a list of four in the
// order top-left, top-right, bottom-right, bottom-left.
type Radii sdfcanvas.CornerRadii

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Radii) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var v float32
		if err := value.Decode(&v); err != nil {
			return err
		}
		*r = Radii(sdfcanvas.Uniform(v))
		return nil
	}
	var list []float32
	if err := value.Decode(&list); err != nil {
		return err
	}
	if len(list) != 4 {
		return fmt.Errorf("line %d: radii: want 1 or 4 values, got %d", value.Line, len(list))
	}
	copy(r[:], list)
	return nil
}

// Cap is a line cap name: butt, round or square.
type Cap sdfcanvas.CapStyle

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Cap) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "", "butt":
		*c = Cap(sdfcanvas.CapButt)
	case "round":
		*c = Cap(sdfcanvas.CapRound)
	case "square":
		*c = Cap(sdfcanvas.CapSquare)
	default:
		return fmt.Errorf("line %d: unknown cap %q", value.Line, s)
	}
	return nil
}

// BorderSpec is an inner border on a fill or line.
type BorderSpec struct {
	Color Color   `yaml:"color"`
	Width float32 `yaml:"width"`
}

// Border converts b to the canvas representation. A nil spec is no border.
func (b *BorderSpec) Border() sdfcanvas.Border {
	if b == nil {
		return sdfcanvas.Border{}
	}
	return sdfcanvas.Border{Brush: sdfcanvas.Solid(b.Color.RGBA()), Width: b.Width}
}

// Flip is an image mirror axis set: x, y or xy.
type Flip sdfcanvas.Flip

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Flip) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "", "none":
		*f = 0
	case "x":
		*f = Flip(sdfcanvas.FlipX)
	case "y":
		*f = Flip(sdfcanvas.FlipY)
	case "xy", "yx":
		*f = Flip(sdfcanvas.FlipX | sdfcanvas.FlipY)
	default:
		return fmt.Errorf("line %d: unknown flip %q", value.Line, s)
	}
	return nil
}

// Scaling describes how an image is sized into its rect.
type Scaling struct {
	// Mode is one of stretch, uniform, fit, fit-width or fit-height.
	Mode       string  `yaml:"mode"`
	Factor     float32 `yaml:"factor"`
	KeepAspect bool    `yaml:"keep_aspect"`
}

// ImageScaling converts s to the canvas representation.
func (s Scaling) ImageScaling() (sdfcanvas.ImageScaling, error) {
	switch strings.ToLower(s.Mode) {
	case "", "stretch":
		return sdfcanvas.Stretch(), nil
	case "uniform":
		return sdfcanvas.UniformScale(s.Factor), nil
	case "fit":
		return sdfcanvas.Fit(s.KeepAspect), nil
	case "fit-width":
		return sdfcanvas.FitWidth(s.KeepAspect), nil
	case "fit-height":
		return sdfcanvas.FitHeight(s.KeepAspect), nil
	}
	return sdfcanvas.ImageScaling{}, fmt.Errorf("unknown scaling mode %q", s.Mode)
}
