package scene

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/sdfcanvas"
	"github.com/gogpu/sdfcanvas/text"
)

// ErrInvalidScene is wrapped by every validation error Decode returns.
var ErrInvalidScene = errors.New("scene: invalid scene")

// Scene is a decoded scene file.
type Scene struct {
	Bounds Rect    `yaml:"bounds"`
	Scale  float32 `yaml:"scale"`
	// Background is optional; without it the frame starts transparent.
	Background *Color `yaml:"background"`
	// Fonts and Images map names used by commands to file paths.
	Fonts    map[string]string `yaml:"fonts"`
	Images   map[string]string `yaml:"images"`
	Commands []Command         `yaml:"commands"`
}

// Command is one draw call. Exactly one field is set.
type Command struct {
	Fill   *Shape  `yaml:"fill"`
	Stroke *Shape  `yaml:"stroke"`
	Circle *Circle `yaml:"circle"`
	Line   *Line   `yaml:"line"`
	Text   *Text   `yaml:"text"`
	Image  *Image  `yaml:"image"`
}

// Shape is a filled or stroked rounded rect. Width applies to strokes and
// defaults to 1. Border applies to fills.
type Shape struct {
	Rect   Rect        `yaml:"rect"`
	Radii  Radii       `yaml:"radii"`
	Color  Color       `yaml:"color"`
	Width  float32     `yaml:"width"`
	Border *BorderSpec `yaml:"border"`
}

// Circle is a filled circle, or a stroked one when Width is set.
type Circle struct {
	Center Point   `yaml:"center"`
	Radius float32 `yaml:"radius"`
	Color  Color   `yaml:"color"`
	Width  float32 `yaml:"width"`
}

// Line is a stroked segment. Width defaults to 1.
type Line struct {
	From   Point       `yaml:"from"`
	To     Point       `yaml:"to"`
	Color  Color       `yaml:"color"`
	Width  float32     `yaml:"width"`
	Cap    Cap         `yaml:"cap"`
	Border *BorderSpec `yaml:"border"`
}

// Text is a single line of text. At is the baseline origin, or the anchor
// position when Anchor is set.
type Text struct {
	Text   string  `yaml:"text"`
	Font   string  `yaml:"font"`
	Size   float32 `yaml:"size"`
	Color  Color   `yaml:"color"`
	At     Point   `yaml:"at"`
	Anchor *Point  `yaml:"anchor"`
}

// Image draws a named image into Rect.
type Image struct {
	Rect    Rect    `yaml:"rect"`
	Image   string  `yaml:"image"`
	Scaling Scaling `yaml:"scaling"`
	Flip    Flip    `yaml:"flip"`
}

// Decode reads and validates one scene document. Unknown fields are
// rejected. A missing scale defaults to 1.
func Decode(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scene
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	if s.Scale == 0 {
		s.Scale = 1
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	b := s.Bounds.Rect()
	if !b.IsFinite() || b.IsEmpty() {
		return fmt.Errorf("%w: bounds %v are empty", ErrInvalidScene, s.Bounds)
	}
	if !(s.Scale > 0) {
		return fmt.Errorf("%w: scale %v must be positive", ErrInvalidScene, s.Scale)
	}
	for i := range s.Commands {
		c := &s.Commands[i]
		if n := c.ops(); n != 1 {
			return fmt.Errorf("%w: command %d sets %d operations, want 1", ErrInvalidScene, i, n)
		}
		switch {
		case c.Text != nil:
			if c.Text.Font == "" {
				return fmt.Errorf("%w: command %d: text needs a font", ErrInvalidScene, i)
			}
			if _, ok := s.Fonts[c.Text.Font]; !ok {
				return fmt.Errorf("%w: command %d: undeclared font %q", ErrInvalidScene, i, c.Text.Font)
			}
		case c.Stroke != nil && c.Stroke.Border != nil:
			return fmt.Errorf("%w: command %d: strokes have no border", ErrInvalidScene, i)
		case c.Image != nil:
			if _, ok := s.Images[c.Image.Image]; !ok {
				return fmt.Errorf("%w: command %d: undeclared image %q", ErrInvalidScene, i, c.Image.Image)
			}
			if _, err := c.Image.Scaling.ImageScaling(); err != nil {
				return fmt.Errorf("%w: command %d: %w", ErrInvalidScene, i, err)
			}
		}
	}
	return nil
}

func (c *Command) ops() int {
	n := 0
	for _, set := range []bool{c.Fill != nil, c.Stroke != nil, c.Circle != nil, c.Line != nil, c.Text != nil, c.Image != nil} {
		if set {
			n++
		}
	}
	return n
}

// NewCanvas creates a canvas with the scene's bounds, scale and background.
func (s *Scene) NewCanvas(opts ...sdfcanvas.Option) (*sdfcanvas.Canvas, error) {
	c, err := sdfcanvas.New(s.Bounds.Rect(), s.Scale, opts...)
	if err != nil {
		return nil, err
	}
	if s.Background != nil {
		c.SetBackground(s.Background.RGBA())
	}
	return c, nil
}

// Layouter shapes text. *text.Engine implements it.
type Layouter interface {
	Layout(req text.Request) (*sdfcanvas.TextLayout, error)
}

// Env resolves the names a scene uses to loaded resources.
type Env struct {
	Text   Layouter
	Fonts  map[string]sdfcanvas.FontRef
	Images map[string]sdfcanvas.ImageRef
}

// Record replays the scene's commands into rec in order. Commands whose
// resources cannot be resolved or shaped are skipped; their errors are
// joined into the result and the remaining commands are still recorded.
func (s *Scene) Record(rec *sdfcanvas.Recorder, env Env) error {
	var errs []error
	for i := range s.Commands {
		if err := s.Commands[i].record(rec, env); err != nil {
			errs = append(errs, fmt.Errorf("scene: command %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Command) record(rec *sdfcanvas.Recorder, env Env) error {
	switch {
	case c.Fill != nil:
		rec.FillBordered(c.Fill.Rect.Rect(), sdfcanvas.CornerRadii(c.Fill.Radii),
			sdfcanvas.Solid(c.Fill.Color.RGBA()), c.Fill.Border.Border())
	case c.Stroke != nil:
		rec.StrokeRounded(c.Stroke.Rect.Rect(), sdfcanvas.CornerRadii(c.Stroke.Radii),
			sdfcanvas.Solid(c.Stroke.Color.RGBA()), widthOr1(c.Stroke.Width))
	case c.Circle != nil:
		brush := sdfcanvas.Solid(c.Circle.Color.RGBA())
		if c.Circle.Width > 0 {
			rec.StrokeCircle(c.Circle.Center.Vec2(), c.Circle.Radius, brush, c.Circle.Width)
		} else {
			rec.FillCircle(c.Circle.Center.Vec2(), c.Circle.Radius, brush)
		}
	case c.Line != nil:
		rec.LineBordered(c.Line.From.Vec2(), c.Line.To.Vec2(), sdfcanvas.Solid(c.Line.Color.RGBA()),
			widthOr1(c.Line.Width), sdfcanvas.CapStyle(c.Line.Cap), c.Line.Border.Border())
	case c.Text != nil:
		return c.Text.record(rec, env)
	case c.Image != nil:
		ref, ok := env.Images[c.Image.Image]
		if !ok {
			return fmt.Errorf("image %q not loaded", c.Image.Image)
		}
		scaling, err := c.Image.Scaling.ImageScaling()
		if err != nil {
			return err
		}
		rec.DrawImageFlipped(c.Image.Rect.Rect(), ref, scaling, sdfcanvas.Flip(c.Image.Flip))
	}
	return nil
}

func (t *Text) record(rec *sdfcanvas.Recorder, env Env) error {
	if env.Text == nil {
		return errors.New("no text engine")
	}
	ref, ok := env.Fonts[t.Font]
	if !ok {
		return fmt.Errorf("font %q not loaded", t.Font)
	}
	layout, err := env.Text.Layout(text.Request{
		Text:  t.Text,
		Font:  ref,
		Size:  t.Size,
		Color: t.Color.RGBA(),
	})
	if err != nil {
		return fmt.Errorf("layout %q: %w", t.Text, err)
	}
	if t.Anchor != nil {
		rec.DrawTextAnchored(layout, t.At.Vec2(), t.Anchor.Vec2())
		return nil
	}
	rec.DrawText(layout, t.At.Vec2())
	return nil
}

func widthOr1(w float32) float32 {
	if w == 0 {
		return 1
	}
	return w
}
