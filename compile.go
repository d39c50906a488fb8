package sdfcanvas

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/gogpu/sdfcanvas/internal/parallel"
)

// quadChunk is the number of commands per parallel quad task.
const quadChunk = 512

// Compiler turns a canvas's recorded commands into a Frame:
//
//  1. each command's tight quad is computed in physical pixels and expanded
//     by the anti-aliasing feather (in parallel for large frames)
//  2. one PackedPrimitive is emitted per command, or per glyph for glyph
//     runs; quads outside the surface are culled
//  3. consecutive primitives with the same kind and texture are coalesced
//     into a DrawGroup; nothing is ever reordered
//
// A Compiler keeps scratch buffers between frames and is not safe for
// concurrent use. Close releases its worker pool.
type Compiler struct {
	feather           float32
	maxPrimitives     int
	workers           int
	parallelThreshold int

	poolOnce sync.Once
	pool     *parallel.WorkerPool

	cmdQuads   []Rect
	glyphQuads []Rect
}

// NewCompiler creates a compiler. Only the feather, ceiling and parallelism
// options apply; the others are ignored.
func NewCompiler(opts ...Option) *Compiler {
	return newCompiler(applyOptions(opts))
}

func newCompiler(o options) *Compiler {
	return &Compiler{
		feather:           o.feather,
		maxPrimitives:     o.maxPrimitives,
		workers:           o.workers,
		parallelThreshold: o.parallelThreshold,
	}
}

// Feather returns the anti-aliasing feather in physical pixels.
func (c *Compiler) Feather() float32 { return c.feather }

// Close releases the worker pool, if one was started.
func (c *Compiler) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *Compiler) workerPool() *parallel.WorkerPool {
	c.poolOnce.Do(func() {
		c.pool = parallel.NewWorkerPool(c.workers)
	})
	return c.pool
}

// Compile compiles the canvas's current frame into dst, reusing its buffers.
// If dst is nil a new Frame is allocated. Compile never fails: problems are
// reported in Frame.Diagnostics and the frame is always valid.
func (c *Compiler) Compile(cv *Canvas, dst *Frame) *Frame {
	if dst == nil {
		dst = &Frame{}
	}
	dst.Reset()

	surface := cv.PhysicalBounds()
	dst.Origin = surface.Min
	dst.Width, dst.Height = int(surface.Width()), int(surface.Height())
	dst.ScaleFactor = cv.scale
	dst.Background, dst.HasBackground = cv.Background()

	c.computeQuads(cv)

	var diags diagnostics
	dropped, firstDropped := c.emit(cv, surface, dst, &diags)
	if dropped > 0 {
		diags.add(ErrCapacityExceeded, firstDropped,
			"ceiling of %d primitives reached, %d truncated", c.maxPrimitives, dropped)
	}
	dst.Diagnostics = append(dst.Diagnostics, diags.list...)
	dst.DroppedDiagnostics = diags.dropped

	Logger().Debug("sdfcanvas: frame compiled",
		"commands", len(cv.commands),
		"primitives", len(dst.Primitives),
		"groups", len(dst.Groups),
		"truncated", dropped)
	return dst
}

// computeQuads fills the per-command and per-glyph quad scratch buffers.
func (c *Compiler) computeQuads(cv *Canvas) {
	n := len(cv.commands)
	c.cmdQuads = resize(c.cmdQuads, n)
	c.glyphQuads = resize(c.glyphQuads, len(cv.glyphs))

	work := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			cmd := &cv.commands[i]
			if cmd.Kind == CmdGlyphRun {
				for g := cmd.GlyphStart; g < cmd.GlyphEnd; g++ {
					c.glyphQuads[g] = glyphQuad(cmd.Origin, &cv.glyphs[g], cv.scale, c.feather)
				}
				continue
			}
			c.cmdQuads[i] = commandQuad(cmd, cv.scale, c.feather)
		}
	}

	if c.parallelThreshold > 0 && n >= c.parallelThreshold {
		c.workerPool().ForRange(n, quadChunk, work)
		return
	}
	work(0, n)
}

// emit appends primitives and groups to dst in command order. It returns
// how many primitives were truncated and the first affected command.
func (c *Compiler) emit(cv *Canvas, surface Rect, dst *Frame, diags *diagnostics) (dropped, firstDropped int) {
	s := cv.scale
	firstDropped = NoCommand
	push := func(i int, p PackedPrimitive) {
		if len(dst.Primitives) >= c.maxPrimitives {
			if dropped == 0 {
				firstDropped = i
			}
			dropped++
			return
		}
		idx := uint32(len(dst.Primitives)) // #nosec G115 -- bounded by maxPrimitives
		dst.Primitives = append(dst.Primitives, p)
		dst.appendQuad(idx, p.Quad)
		if n := len(dst.Groups); n > 0 {
			if g := &dst.Groups[n-1]; g.Kind == p.Kind && g.Texture == p.Texture {
				g.End = idx + 1
				return
			}
		}
		dst.Groups = append(dst.Groups, DrawGroup{Kind: p.Kind, Texture: p.Texture, Start: idx, End: idx + 1})
	}

	for i := range cv.commands {
		cmd := &cv.commands[i]
		color := c.brushColor(cv, cmd.Brush)

		switch cmd.Kind {
		case CmdFillRect, CmdStrokeRect:
			q := c.cmdQuads[i]
			if !q.Intersects(surface) {
				continue
			}
			p := PackedPrimitive{
				Kind:    PrimFillRect,
				Brush:   cmd.Brush,
				Texture: NoTexture,
				Color:   color,
				Quad:    rectArray(q),
				Shape:   rectArray(cmd.Rect.Scale(s)),
				Params:  cmd.Radii.Scale(s),
			}
			if cmd.Kind == CmdStrokeRect {
				p.Kind = PrimStrokeRect
				p.Extra[0] = cmd.Width * s
			} else {
				c.packBorder(cv, cmd, s, &p)
			}
			push(i, p)

		case CmdLine:
			q := c.cmdQuads[i]
			if !q.Intersects(surface) {
				continue
			}
			p := PackedPrimitive{
				Kind:    PrimLine,
				Flags:   uint32(cmd.Cap) & FlagCapMask,
				Brush:   cmd.Brush,
				Texture: NoTexture,
				Color:   color,
				Quad:    rectArray(q),
				Shape:   [4]float32{cmd.P0.X * s, cmd.P0.Y * s, cmd.P1.X * s, cmd.P1.Y * s},
				Params:  [4]float32{cmd.Width * s},
			}
			c.packBorder(cv, cmd, s, &p)
			push(i, p)

		case CmdGlyphRun:
			for g := cmd.GlyphStart; g < cmd.GlyphEnd; g++ {
				q := c.glyphQuads[g]
				if !q.Intersects(surface) {
					continue
				}
				glyph := &cv.glyphs[g]
				if !glyph.Atlas.IsValid() {
					diags.add(&ResourceError{Kind: ResourceFont, Ref: uint32(glyph.Font)}, i,
						"glyph %d has no atlas texture", glyph.GlyphID)
					continue
				}
				push(i, PackedPrimitive{
					Kind:    PrimGlyph,
					Brush:   cmd.Brush,
					Texture: glyph.Atlas,
					Color:   color,
					Quad:    rectArray(q),
					Shape:   rectArray(glyph.Rect.Translate(cmd.Origin).Scale(s)),
					Params:  rectArray(glyph.Cell),
					Extra:   [4]float32{glyph.DistanceRange * s},
				})
			}

		case CmdImage:
			q := c.cmdQuads[i]
			if !q.Intersects(surface) {
				continue
			}
			push(i, PackedPrimitive{
				Kind:    PrimImage,
				Brush:   NoBrush,
				Texture: cmd.Texture,
				Color:   [4]float32{1, 1, 1, 1},
				Quad:    rectArray(q),
				Shape:   rectArray(cmd.Rect.Scale(s)),
				Params:  rectArray(cmd.UV),
			})
		}
	}
	return dropped, firstDropped
}

// packBorder stores cmd's inner border, if any, in p's Flags and Extra.
func (c *Compiler) packBorder(cv *Canvas, cmd *DrawCommand, s float32, p *PackedPrimitive) {
	if !(cmd.BorderWidth > 0) {
		return
	}
	p.Flags |= borderFlags(cmd.BorderWidth * s)
	p.Extra = c.brushColor(cv, cmd.Border)
}

func (c *Compiler) brushColor(cv *Canvas, idx BrushIndex) [4]float32 {
	b, ok := cv.brushes.Resolve(idx)
	if !ok {
		return [4]float32{}
	}
	col := b.ColorAt(Vec2{}).LinearPremul()
	return [4]float32{col.R, col.G, col.B, col.A}
}

// commandQuad returns the feathered physical-pixel bounds of a non-glyph
// command.
func commandQuad(cmd *DrawCommand, s, feather float32) Rect {
	switch cmd.Kind {
	case CmdStrokeRect:
		return cmd.Rect.Scale(s).Expand(cmd.Width*s*0.5 + feather)
	case CmdLine:
		return lineBounds(cmd.P0.Mul(s), cmd.P1.Mul(s), cmd.Width*s*0.5, cmd.Cap).Expand(feather)
	default:
		return cmd.Rect.Scale(s).Expand(feather)
	}
}

func glyphQuad(origin Vec2, g *PositionedGlyph, s, feather float32) Rect {
	return g.Rect.Translate(origin).Scale(s).Expand(feather)
}

// lineBounds returns the tight axis-aligned bounds of a stroked segment
// with half-width hw.
func lineBounds(a, b Vec2, hw float32, capStyle CapStyle) Rect {
	d := b.Sub(a)
	length := d.Len()
	if capStyle == CapRound {
		return Rect{
			Min: Vec2{math32.Min(a.X, b.X) - hw, math32.Min(a.Y, b.Y) - hw},
			Max: Vec2{math32.Max(a.X, b.X) + hw, math32.Max(a.Y, b.Y) + hw},
		}
	}
	if length == 0 {
		// Square-capped dot; butt dots never reach the compiler.
		return Rect{Min: a, Max: a}.Expand(hw)
	}
	u := d.Mul(1 / length)
	if capStyle == CapSquare {
		a = a.Sub(u.Mul(hw))
		b = b.Add(u.Mul(hw))
	}
	// Half-extent of the perpendicular edge along each axis.
	ex := math32.Abs(u.Y) * hw
	ey := math32.Abs(u.X) * hw
	return Rect{
		Min: Vec2{math32.Min(a.X, b.X) - ex, math32.Min(a.Y, b.Y) - ey},
		Max: Vec2{math32.Max(a.X, b.X) + ex, math32.Max(a.Y, b.Y) + ey},
	}
}

func rectArray(r Rect) [4]float32 {
	return [4]float32{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
