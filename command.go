package sdfcanvas

// CommandKind identifies the variant of a DrawCommand.
type CommandKind uint8

const (
	CmdFillRect   CommandKind = iota // Fill a rect, optionally with rounded corners
	CmdStrokeRect                    // Stroke a rect outline, optionally rounded
	CmdLine                          // Stroke a line segment with a cap style
	CmdGlyphRun                      // Draw a run of shaped glyphs
	CmdImage                         // Draw a textured rect
)

var commandKindNames = [...]string{
	CmdFillRect:   "FillRect",
	CmdStrokeRect: "StrokeRect",
	CmdLine:       "Line",
	CmdGlyphRun:   "GlyphRun",
	CmdImage:      "Image",
}

// String returns a human-readable name for the command kind.
func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return "Unknown"
}

// CapStyle selects how a line is terminated past its endpoints.
type CapStyle uint8

const (
	// CapButt ends the line exactly at its endpoints.
	CapButt CapStyle = iota
	// CapRound ends the line with a half-disc of radius width/2.
	CapRound
	// CapSquare extends the line by width/2 past each endpoint.
	CapSquare
)

// String returns a human-readable name for the cap style.
func (c CapStyle) String() string {
	switch c {
	case CapButt:
		return "Butt"
	case CapRound:
		return "Round"
	case CapSquare:
		return "Square"
	default:
		return "Unknown"
	}
}

// DrawCommand is one recorded draw call, a tagged union keyed by Kind.
// Only the fields of the active variant are meaningful:
//
//	CmdFillRect:   Rect, Radii, Brush, Border, BorderWidth
//	CmdStrokeRect: Rect, Radii, Brush, Width
//	CmdLine:       P0, P1, Brush, Width, Cap, Border, BorderWidth
//	CmdGlyphRun:   GlyphStart, GlyphEnd, Brush, Origin
//	CmdImage:      Rect, Image, UV, Texture
//
// Commands are stored by value in the canvas so that clearing a frame
// reuses their backing storage. Geometry is in logical units.
type DrawCommand struct {
	Kind  CommandKind
	Cap   CapStyle
	Brush BrushIndex

	Rect  Rect
	Radii CornerRadii
	Width float32

	P0, P1 Vec2

	// Border is the brush of the inner border of a fill or line. It is
	// meaningful only when BorderWidth > 0.
	Border      BrushIndex
	BorderWidth float32

	// Origin is the baseline origin of a glyph run.
	Origin Vec2
	// GlyphStart and GlyphEnd index the canvas glyph arena.
	GlyphStart, GlyphEnd uint32

	Image   ImageRef
	UV      Rect
	Texture TextureRef
}

// Border is an outline drawn inside the edge of a filled rect or a line, in
// the same primitive as the fill. Pixels closer to the edge than Width take
// the border brush. A zero Width means no border.
type Border struct {
	Brush Brush
	Width float32
}

// Flip mirrors an image inside its destination rect.
type Flip uint8

// Flip bits.
const (
	FlipX Flip = 1 << iota // mirror left-right
	FlipY                  // mirror top-bottom
)

// apply mirrors the uv rect.
func (f Flip) apply(uv Rect) Rect {
	if f&FlipX != 0 {
		uv.Min.X, uv.Max.X = uv.Max.X, uv.Min.X
	}
	if f&FlipY != 0 {
		uv.Min.Y, uv.Max.Y = uv.Max.Y, uv.Min.Y
	}
	return uv
}

// ScalingMode selects an ImageScaling strategy.
type ScalingMode uint8

// Scaling modes.
const (
	ScaleStretch ScalingMode = iota
	ScaleUniform
	ScaleFitWidth
	ScaleFitHeight
	ScaleFit
)

// ImageScaling describes how an image is sized into a destination rect.
type ImageScaling struct {
	Mode ScalingMode
	// Factor is the uniform scale for ScaleUniform.
	Factor float32
	// KeepAspect preserves the image aspect ratio for the Fit modes. The
	// rect keeps its top-left corner and shrinks along the free axis.
	KeepAspect bool
}

// Stretch fills the destination rect, ignoring the image aspect ratio.
func Stretch() ImageScaling { return ImageScaling{Mode: ScaleStretch} }

// UniformScale draws the image at its pixel size times f, anchored at the
// rect's top-left corner.
func UniformScale(f float32) ImageScaling { return ImageScaling{Mode: ScaleUniform, Factor: f} }

// FitWidth matches the rect width.
func FitWidth(keepAspect bool) ImageScaling {
	return ImageScaling{Mode: ScaleFitWidth, KeepAspect: keepAspect}
}

// FitHeight matches the rect height.
func FitHeight(keepAspect bool) ImageScaling {
	return ImageScaling{Mode: ScaleFitHeight, KeepAspect: keepAspect}
}

// Fit fits the whole image inside the rect.
func Fit(keepAspect bool) ImageScaling {
	return ImageScaling{Mode: ScaleFit, KeepAspect: keepAspect}
}

// apply returns the destination rect for an image of size w×h.
func (s ImageScaling) apply(dst Rect, w, h int) Rect {
	iw, ih := float32(w), float32(h)
	if iw <= 0 || ih <= 0 {
		return dst
	}
	switch s.Mode {
	case ScaleUniform:
		return RectXYWH(dst.Min.X, dst.Min.Y, iw*s.Factor, ih*s.Factor)
	case ScaleFitWidth:
		if !s.KeepAspect {
			return RectXYWH(dst.Min.X, dst.Min.Y, dst.Width(), ih)
		}
		return RectXYWH(dst.Min.X, dst.Min.Y, dst.Width(), dst.Width()*ih/iw)
	case ScaleFitHeight:
		if !s.KeepAspect {
			return RectXYWH(dst.Min.X, dst.Min.Y, iw, dst.Height())
		}
		return RectXYWH(dst.Min.X, dst.Min.Y, dst.Height()*iw/ih, dst.Height())
	case ScaleFit:
		if !s.KeepAspect {
			return dst
		}
		// Whichever axis binds first decides the scale.
		if dst.Width()*ih <= dst.Height()*iw {
			return RectXYWH(dst.Min.X, dst.Min.Y, dst.Width(), dst.Width()*ih/iw)
		}
		return RectXYWH(dst.Min.X, dst.Min.Y, dst.Height()*iw/ih, dst.Height())
	default:
		return dst
	}
}
