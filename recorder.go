package sdfcanvas

import (
	"errors"

	"github.com/chewxy/math32"
)

// Recorder is the drawing API of a Canvas. Every call appends at most one
// DrawCommand, in call order, and call order is paint order: later calls
// paint over earlier ones.
//
// Calls never fail. Invalid input is normalized or dropped according to a
// fixed policy and reported through Canvas.Diagnostics:
//   - rects with Min > Max are normalized; zero-area fills are dropped
//   - widths that are not positive become MinWidth
//   - radii are clamped to be non-negative and to fit their edges
//   - non-finite coordinates, non-finite brush colors and unsupported
//     brushes drop the command
//   - unknown images drop the command with ErrResourceNotFound
//   - border widths that are negative, NaN or infinite drop the border only
//
// Methods return the Recorder for chaining.
//
// Recorder is not safe for concurrent use.
type Recorder struct {
	c *Canvas
}

// Canvas returns the canvas the recorder writes to.
func (r *Recorder) Canvas() *Canvas { return r.c }

// Fill fills rect with brush.
func (r *Recorder) Fill(rect Rect, brush Brush) *Recorder {
	return r.FillRounded(rect, CornerRadii{}, brush)
}

// FillRounded fills rect with per-corner radii.
func (r *Recorder) FillRounded(rect Rect, radii CornerRadii, brush Brush) *Recorder {
	return r.fillRect(rect, radii, brush, Border{})
}

// FillBordered fills a rounded rect and draws border inside its edge, as one
// primitive.
func (r *Recorder) FillBordered(rect Rect, radii CornerRadii, brush Brush, border Border) *Recorder {
	return r.fillRect(rect, radii, brush, border)
}

// FillCircle fills the disc of the given radius around center.
func (r *Recorder) FillCircle(center Vec2, radius float32, brush Brush) *Recorder {
	return r.FillRounded(CircleRect(center, radius), Uniform(radius), brush)
}

// StrokeCircle strokes the circle of the given radius around center.
func (r *Recorder) StrokeCircle(center Vec2, radius float32, brush Brush, width float32) *Recorder {
	return r.StrokeRounded(CircleRect(center, radius), Uniform(radius), brush, width)
}

func (r *Recorder) fillRect(rect Rect, radii CornerRadii, brush Brush, border Border) *Recorder {
	c := r.c
	call := c.beginCall()
	rect, ok := c.checkRect(call, rect, true)
	if !ok {
		return r
	}
	b, ok := c.internBrush(call, brush)
	if !ok {
		return r
	}
	cmd := DrawCommand{
		Kind:    CmdFillRect,
		Brush:   b,
		Rect:    rect,
		Radii:   c.fitRadii(call, rect, radii),
		Texture: NoTexture,
	}
	c.setBorder(call, &cmd, border)
	c.commands = append(c.commands, cmd)
	return r
}

// Stroke strokes the outline of rect. The stroke is centered on the edge.
func (r *Recorder) Stroke(rect Rect, brush Brush, width float32) *Recorder {
	return r.StrokeRounded(rect, CornerRadii{}, brush, width)
}

// StrokeRounded strokes the outline of a rounded rect.
func (r *Recorder) StrokeRounded(rect Rect, radii CornerRadii, brush Brush, width float32) *Recorder {
	c := r.c
	call := c.beginCall()
	rect, ok := c.checkRect(call, rect, false)
	if !ok {
		return r
	}
	width, ok = c.checkWidth(call, width)
	if !ok {
		return r
	}
	b, ok := c.internBrush(call, brush)
	if !ok {
		return r
	}
	c.commands = append(c.commands, DrawCommand{
		Kind:    CmdStrokeRect,
		Brush:   b,
		Rect:    rect,
		Radii:   c.fitRadii(call, rect, radii),
		Width:   width,
		Texture: NoTexture,
	})
	return r
}

// Line strokes the segment p0-p1 with butt caps.
func (r *Recorder) Line(p0, p1 Vec2, brush Brush, width float32) *Recorder {
	return r.LineWithCap(p0, p1, brush, width, CapButt)
}

// LineWithCap strokes the segment p0-p1 with the given cap style.
// A zero-length segment is dropped for butt caps and drawn as a dot
// otherwise.
func (r *Recorder) LineWithCap(p0, p1 Vec2, brush Brush, width float32, capStyle CapStyle) *Recorder {
	return r.line(p0, p1, brush, width, capStyle, Border{})
}

// LineBordered strokes the segment p0-p1 and draws border inside the edge
// of the stroke.
func (r *Recorder) LineBordered(p0, p1 Vec2, brush Brush, width float32, capStyle CapStyle, border Border) *Recorder {
	return r.line(p0, p1, brush, width, capStyle, border)
}

func (r *Recorder) line(p0, p1 Vec2, brush Brush, width float32, capStyle CapStyle, border Border) *Recorder {
	c := r.c
	call := c.beginCall()
	if !p0.IsFinite() || !p1.IsFinite() {
		c.diags.add(ErrInvalidGeometry, call, "line endpoints are not finite")
		return r
	}
	if capStyle > CapSquare {
		c.diags.add(ErrInvalidGeometry, call, "unknown cap style %d, using butt", capStyle)
		capStyle = CapButt
	}
	if p0 == p1 && capStyle == CapButt {
		c.diags.add(ErrInvalidGeometry, call, "zero-length line with butt caps has no area")
		return r
	}
	width, ok := c.checkWidth(call, width)
	if !ok {
		return r
	}
	b, ok := c.internBrush(call, brush)
	if !ok {
		return r
	}
	cmd := DrawCommand{
		Kind:    CmdLine,
		Cap:     capStyle,
		Brush:   b,
		P0:      p0,
		P1:      p1,
		Width:   width,
		Texture: NoTexture,
	}
	c.setBorder(call, &cmd, border)
	c.commands = append(c.commands, cmd)
	return r
}

// DrawText draws a shaped line with its baseline starting at origin.
// The glyphs are copied, so later changes to layout do not affect the frame.
func (r *Recorder) DrawText(layout *TextLayout, origin Vec2) *Recorder {
	c := r.c
	call := c.beginCall()
	if layout == nil {
		c.diags.add(ErrInvalidGeometry, call, "nil text layout")
		return r
	}
	if !origin.IsFinite() {
		c.diags.add(ErrInvalidGeometry, call, "text origin is not finite")
		return r
	}
	b, ok := c.internBrush(call, Solid(layout.Color))
	if !ok {
		return r
	}
	// #nosec G115 -- arena size is bounded by memory, well under uint32 max
	start := uint32(len(c.glyphs))
	c.glyphs = append(c.glyphs, layout.Glyphs...)
	c.commands = append(c.commands, DrawCommand{
		Kind:       CmdGlyphRun,
		Brush:      b,
		Origin:     origin,
		GlyphStart: start,
		GlyphEnd:   uint32(len(c.glyphs)), // #nosec G115 -- see above
		Texture:    NoTexture,
	})
	return r
}

// DrawTextAnchored draws layout so that the point at anchor within its line
// box lands on pos. Anchor (0,0) is the top-left of the line box, (1,1) the
// bottom-right and (0.5,0.5) the center.
func (r *Recorder) DrawTextAnchored(layout *TextLayout, pos, anchor Vec2) *Recorder {
	if layout == nil {
		return r.DrawText(nil, pos)
	}
	box := layout.LineBounds()
	at := Vec2{box.Min.X + anchor.X*box.Width(), box.Min.Y + anchor.Y*box.Height()}
	return r.DrawText(layout, pos.Sub(at))
}

// DrawImage draws the whole image stretched over rect.
func (r *Recorder) DrawImage(rect Rect, image ImageRef) *Recorder {
	return r.drawImage(rect, image, R(0, 0, 1, 1), Stretch())
}

// DrawImageUV draws the uv sub-rectangle of the image (normalized texture
// coordinates) over rect.
func (r *Recorder) DrawImageUV(rect Rect, image ImageRef, uv Rect) *Recorder {
	return r.drawImage(rect, image, uv, Stretch())
}

// DrawImageScaled draws the whole image into rect using scaling.
func (r *Recorder) DrawImageScaled(rect Rect, image ImageRef, scaling ImageScaling) *Recorder {
	return r.drawImage(rect, image, R(0, 0, 1, 1), scaling)
}

// DrawImageFlipped draws the whole image into rect using scaling, mirrored
// along the axes in flip.
func (r *Recorder) DrawImageFlipped(rect Rect, image ImageRef, scaling ImageScaling, flip Flip) *Recorder {
	return r.drawImage(rect, image, flip.apply(R(0, 0, 1, 1)), scaling)
}

func (r *Recorder) drawImage(rect Rect, image ImageRef, uv Rect, scaling ImageScaling) *Recorder {
	c := r.c
	call := c.beginCall()
	rect, ok := c.checkRect(call, rect, false)
	if !ok {
		return r
	}
	if !uv.IsFinite() {
		c.diags.add(ErrInvalidGeometry, call, "image uv rect is not finite")
		return r
	}
	info, err := c.lookupImage(image)
	if err != nil {
		c.diags.add(err, call, "image %d skipped", image)
		return r
	}
	rect = scaling.apply(rect, info.Width, info.Height)
	if rect.IsEmpty() {
		c.diags.add(ErrInvalidGeometry, call, "image rect has zero area")
		return r
	}
	c.commands = append(c.commands, DrawCommand{
		Kind:    CmdImage,
		Brush:   NoBrush,
		Rect:    rect,
		Image:   image,
		UV:      uv,
		Texture: info.Texture,
	})
	return r
}

func (c *Canvas) beginCall() int {
	n := c.calls
	c.calls++
	return n
}

func (c *Canvas) lookupImage(ref ImageRef) (ImageInfo, error) {
	if c.images == nil {
		return ImageInfo{}, &ResourceError{Kind: ResourceImage, Ref: uint32(ref)}
	}
	info, err := c.images.LookupImage(ref)
	if err != nil {
		if !errors.Is(err, ErrResourceNotFound) {
			err = &ResourceError{Kind: ResourceImage, Ref: uint32(ref)}
		}
		return ImageInfo{}, err
	}
	return info, nil
}

// checkRect normalizes rect. Fills additionally require a non-zero area.
func (c *Canvas) checkRect(call int, rect Rect, needArea bool) (Rect, bool) {
	if !rect.IsFinite() {
		c.diags.add(ErrInvalidGeometry, call, "rect is not finite")
		return rect, false
	}
	if !rect.IsNormalized() {
		rect = rect.Normalize()
		c.diags.add(ErrInvalidGeometry, call, "rect min > max, normalized")
	}
	if needArea && rect.IsEmpty() {
		c.diags.add(ErrInvalidGeometry, call, "rect has zero area")
		return rect, false
	}
	return rect, true
}

func (c *Canvas) checkWidth(call int, w float32) (float32, bool) {
	switch {
	case math32.IsInf(w, 1):
		c.diags.add(ErrInvalidGeometry, call, "width is infinite")
		return 0, false
	case !(w > 0):
		c.diags.add(ErrInvalidGeometry, call, "width %v clamped to %v", w, MinWidth)
		return MinWidth, true
	}
	return w, true
}

func (c *Canvas) fitRadii(call int, rect Rect, radii CornerRadii) CornerRadii {
	fitted, changed := radii.fitTo(rect.Width(), rect.Height())
	if changed {
		c.diags.add(ErrInvalidGeometry, call, "corner radii %v clamped to %v", radii, fitted)
	}
	return fitted
}

// setBorder interns border into cmd. An invalid border is reported and
// dropped; the command is kept.
func (c *Canvas) setBorder(call int, cmd *DrawCommand, border Border) {
	w := border.Width
	switch {
	case w == 0:
		return
	case !(w > 0) || math32.IsInf(w, 1):
		c.diags.add(ErrInvalidGeometry, call, "border width %v ignored", w)
		return
	}
	b, ok := c.internBrush(call, border.Brush)
	if !ok {
		return
	}
	cmd.Border, cmd.BorderWidth = b, w
}

func (c *Canvas) internBrush(call int, b Brush) (BrushIndex, bool) {
	if !b.IsSupported() {
		c.diags.add(ErrInvalidGeometry, call, "unsupported brush kind %s", b.Kind)
		return NoBrush, false
	}
	// NaN components never compare equal and would defeat interning.
	if !b.Color.IsFinite() {
		c.diags.add(ErrInvalidGeometry, call, "brush color %v is not finite", b.Color)
		return NoBrush, false
	}
	return c.brushes.Intern(b), true
}
