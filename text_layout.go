package sdfcanvas

// PositionedGlyph is one shaped glyph, frozen at layout time.
// All geometry is in logical units relative to the layout origin, which is
// the left end of the baseline.
type PositionedGlyph struct {
	GlyphID uint32
	Font    FontRef
	// Atlas is the texture holding this glyph's distance field.
	Atlas TextureRef
	// Origin is the pen position of the glyph on the baseline.
	Origin Vec2
	// Rect is the quad covered by the glyph's atlas cell.
	Rect Rect
	// Cell is the glyph's atlas region in texels. It is normalized against
	// the atlas texture size when the glyph is drawn, so growing the atlas
	// does not invalidate it.
	Cell Rect
	// DistanceRange is the distance-field spread in logical units at this
	// font size: an atlas value of 0 or 1 is this far outside or inside.
	DistanceRange float32
}

// TextDirection is the base direction of a laid out line.
type TextDirection uint8

// Text directions.
const (
	LeftToRight TextDirection = iota
	RightToLeft
)

// TextLayout is a shaped single line of text, produced by a layout engine
// (see package text) and consumed by Recorder.DrawText.
type TextLayout struct {
	Text      string
	Font      FontRef
	FontSize  float32
	Color     RGBA
	Direction TextDirection
	Glyphs    []PositionedGlyph
	// Advance is the total pen advance of the line.
	Advance float32
	// Ascent and Descent are positive distances above and below the baseline.
	Ascent, Descent float32
	// Bounds is the union of the glyph quads, relative to the baseline origin.
	Bounds Rect
}

// LineBounds returns the box from ascent to descent over the pen advance.
func (l *TextLayout) LineBounds() Rect {
	return Rect{Min: Vec2{0, -l.Ascent}, Max: Vec2{l.Advance, l.Descent}}
}

// WithColor returns a shallow copy of l painted with c. The glyph slice is
// shared, which is safe because layouts are immutable once built.
func (l *TextLayout) WithColor(c RGBA) *TextLayout {
	cp := *l
	cp.Color = c
	return &cp
}
