package sdfcanvas

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Canvas owns one drawing surface: its logical bounds, physical scale
// factor, optional background color, and the commands recorded for the
// current frame.
//
// A Canvas lives across frames. Each frame the host calls Clear, records
// through Recorder, then Compile. Clearing keeps every allocated buffer so
// steady-state frames do not allocate.
//
// Canvas is not safe for concurrent use: the order of draw calls is the
// paint order. Independent canvases may be used from different goroutines.
type Canvas struct {
	bounds        Rect
	scale         float32
	background    RGBA
	hasBackground bool

	commands []DrawCommand
	glyphs   []PositionedGlyph
	brushes  *BrushTable
	diags    diagnostics
	calls    int

	images       ImageProvider
	compiler     *Compiler
	ownsCompiler bool
	recorder     Recorder
}

// New creates a canvas over the given logical bounds.
// It returns ErrInvalidScale if scale is not a positive finite number.
func New(bounds Rect, scale float32, opts ...Option) (*Canvas, error) {
	if err := checkScale(scale); err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	c := &Canvas{
		bounds:   bounds.Normalize(),
		scale:    scale,
		commands: make([]DrawCommand, 0, 256),
		glyphs:   make([]PositionedGlyph, 0, 256),
		brushes:  NewBrushTable(),
		images:   o.images,
		compiler: o.compiler,
	}
	if c.compiler == nil {
		c.compiler = newCompiler(o)
		c.ownsCompiler = true
	}
	c.recorder.c = c
	return c, nil
}

func checkScale(scale float32) error {
	if !(scale > 0) || math32.IsInf(scale, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidScale, scale)
	}
	return nil
}

// SetSurface updates bounds and scale from the host, typically once per
// frame before Clear. Recorded content is kept.
func (c *Canvas) SetSurface(s SurfaceDescriptor) error {
	if err := checkScale(s.ScaleFactor); err != nil {
		return err
	}
	c.bounds = s.Bounds.Normalize()
	c.scale = s.ScaleFactor
	return nil
}

// Bounds returns the logical bounds.
func (c *Canvas) Bounds() Rect { return c.bounds }

// ScaleFactor returns the number of physical pixels per logical unit.
func (c *Canvas) ScaleFactor() float32 { return c.scale }

// PhysicalBounds returns the bounds in physical pixels, snapped to the
// device pixel grid.
func (c *Canvas) PhysicalBounds() Rect {
	b := c.bounds.Scale(c.scale)
	return Rect{
		Min: Vec2{math32.Round(b.Min.X), math32.Round(b.Min.Y)},
		Max: Vec2{math32.Round(b.Max.X), math32.Round(b.Max.Y)},
	}
}

// PhysicalSize returns the surface size in device pixels.
func (c *Canvas) PhysicalSize() (width, height int) {
	b := c.PhysicalBounds()
	return int(b.Width()), int(b.Height())
}

// SetBackground sets the color the frame is cleared to.
func (c *Canvas) SetBackground(col RGBA) {
	c.background = col
	c.hasBackground = true
}

// ClearBackground makes the frame start transparent.
func (c *Canvas) ClearBackground() {
	c.background = RGBA{}
	c.hasBackground = false
}

// Background returns the background color and whether one is set.
func (c *Canvas) Background() (RGBA, bool) { return c.background, c.hasBackground }

// Clear discards all recorded content for the frame. Capacity is retained.
func (c *Canvas) Clear() {
	c.commands = c.commands[:0]
	c.glyphs = c.glyphs[:0]
	c.brushes.Reset()
	c.diags.reset()
	c.calls = 0
}

// Recorder returns the drawing API bound to this canvas.
func (c *Canvas) Recorder() *Recorder { return &c.recorder }

// Commands returns the commands recorded this frame, in paint order.
// The slice is owned by the canvas and is invalidated by Clear.
func (c *Canvas) Commands() []DrawCommand { return c.commands }

// Glyphs returns the glyph arena referenced by CmdGlyphRun commands.
func (c *Canvas) Glyphs() []PositionedGlyph { return c.glyphs }

// Brushes returns the frame's brush table.
func (c *Canvas) Brushes() *BrushTable { return c.brushes }

// Diagnostics returns the recoverable problems reported while recording.
// Compile diagnostics are reported on the Frame instead.
func (c *Canvas) Diagnostics() []Diagnostic { return c.diags.list }

// DroppedDiagnostics returns how many diagnostics were discarded after
// MaxDiagnostics was reached this frame.
func (c *Canvas) DroppedDiagnostics() int { return c.diags.dropped }

// Compile runs the batch compiler over the recorded commands. If dst is
// nil a new Frame is allocated; otherwise dst is reset and reused.
func (c *Canvas) Compile(dst *Frame) *Frame {
	return c.compiler.Compile(c, dst)
}

// Close releases the canvas's compiler resources. A compiler supplied with
// WithCompiler is left open for its owner.
func (c *Canvas) Close() {
	if c.ownsCompiler {
		c.compiler.Close()
	}
}
