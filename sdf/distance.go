package sdf

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/sdfcanvas"
)

// Box returns the signed distance from p to an axis-aligned rect:
// negative inside, zero on the edge, positive outside.
func Box(p sdfcanvas.Vec2, r sdfcanvas.Rect) float32 {
	c := r.Center()
	qx := math32.Abs(p.X-c.X) - r.Width()*0.5
	qy := math32.Abs(p.Y-c.Y) - r.Height()*0.5
	return boxQ(qx, qy)
}

// boxQ folds per-axis distances (already offset by the half extents) into
// the exact box distance.
func boxQ(qx, qy float32) float32 {
	outside := math32.Hypot(math32.Max(qx, 0), math32.Max(qy, 0))
	inside := math32.Min(math32.Max(qx, qy), 0)
	return outside + inside
}

// RoundedBox returns the signed distance from p to a rect with per-corner
// radii. The radius used is the one of the corner in p's quadrant relative to
// the rect center, with Y growing down. Radii must already fit the rect.
// With all radii zero it equals Box.
func RoundedBox(p sdfcanvas.Vec2, r sdfcanvas.Rect, radii sdfcanvas.CornerRadii) float32 {
	c := r.Center()
	var rad float32
	switch {
	case p.X < c.X && p.Y < c.Y:
		rad = radii[sdfcanvas.TopLeft]
	case p.Y < c.Y:
		rad = radii[sdfcanvas.TopRight]
	case p.X < c.X:
		rad = radii[sdfcanvas.BottomLeft]
	default:
		rad = radii[sdfcanvas.BottomRight]
	}
	qx := math32.Abs(p.X-c.X) - r.Width()*0.5 + rad
	qy := math32.Abs(p.Y-c.Y) - r.Height()*0.5 + rad
	return boxQ(qx, qy) - rad
}

// Segment returns the signed distance from p to the segment a-b stroked with
// the given width:
//   - CapButt: the rectangle spanning a-b, width wide
//   - CapRound: the capsule around a-b
//   - CapSquare: the rectangle extended by width/2 past both ends
//
// A zero-length butt segment covers nothing and returns +Inf.
func Segment(p, a, b sdfcanvas.Vec2, width float32, capStyle sdfcanvas.CapStyle) float32 {
	hw := width * 0.5
	d := b.Sub(a)
	length := d.Len()
	if capStyle == sdfcanvas.CapRound {
		return segmentDistance(p, a, d, length) - hw
	}
	if length == 0 {
		if capStyle == sdfcanvas.CapButt {
			return math32.Inf(1)
		}
		return boxQ(math32.Abs(p.X-a.X)-hw, math32.Abs(p.Y-a.Y)-hw)
	}
	// Segment-local frame: t along the segment from its midpoint, n across.
	u := sdfcanvas.V2(d.X/length, d.Y/length)
	rel := p.Sub(a.Add(d.Mul(0.5)))
	t := math32.Abs(rel.Dot(u))
	n := math32.Abs(rel.X*u.Y - rel.Y*u.X)
	half := length * 0.5
	if capStyle == sdfcanvas.CapSquare {
		half += hw
	}
	return boxQ(t-half, n-hw)
}

// segmentDistance is the unsigned distance from p to the segment a + [0,1]·d.
func segmentDistance(p, a, d sdfcanvas.Vec2, length float32) float32 {
	ap := p.Sub(a)
	if length == 0 {
		return ap.Len()
	}
	h := ap.Dot(d) / (length * length)
	h = math32.Min(math32.Max(h, 0), 1)
	return ap.Sub(d.Mul(h)).Len()
}

// Stroke turns the distance to a shape into the distance to its outline
// stroked with the given width, centered on the edge.
func Stroke(d, width float32) float32 {
	return math32.Abs(d) - width*0.5
}

// Coverage converts a distance into pixel coverage:
// clamp(0.5 - d/fw, 0, 1). fw is the screen-space rate of change of d; in
// pixel units it is 1.
func Coverage(d, fw float32) float32 {
	c := 0.5 - d/fw
	switch {
	case c <= 0 || math32.IsNaN(c):
		return 0
	case c >= 1:
		return 1
	}
	return c
}

// GlyphDistance maps a distance-field sample v in [0,1] to a distance in
// pixels: 0.5 is the edge, and 1 lies distanceRange px inside.
func GlyphDistance(v, distanceRange float32) float32 {
	return (0.5 - v) * 2 * distanceRange
}

// ImageMask returns 0 inside r and +Inf outside. Image primitives are a
// binary mask; their color comes from the texture.
func ImageMask(p sdfcanvas.Vec2, r sdfcanvas.Rect) float32 {
	if p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y {
		return 0
	}
	return math32.Inf(1)
}

// Distance evaluates the primitive's SDF at the physical-pixel point p.
// Glyph primitives read their distance field through s; if s is nil or the
// atlas is missing they report +Inf.
func Distance(prim *sdfcanvas.PackedPrimitive, p sdfcanvas.Vec2, s Sampler) float32 {
	switch prim.Kind {
	case sdfcanvas.PrimFillRect:
		return RoundedBox(p, prim.ShapeRect(), prim.Params)
	case sdfcanvas.PrimStrokeRect:
		return Stroke(RoundedBox(p, prim.ShapeRect(), prim.Params), prim.Extra[0])
	case sdfcanvas.PrimLine:
		a := sdfcanvas.V2(prim.Shape[0], prim.Shape[1])
		b := sdfcanvas.V2(prim.Shape[2], prim.Shape[3])
		return Segment(p, a, b, prim.Params[0], prim.Cap())
	case sdfcanvas.PrimGlyph:
		if s == nil {
			return math32.Inf(1)
		}
		w, h, ok := s.Size(prim.Texture)
		if !ok || w == 0 || h == 0 {
			return math32.Inf(1)
		}
		u, v := mapUV(p, prim)
		texel, ok := s.Sample(prim.Texture, u/float32(w), v/float32(h))
		if !ok {
			return math32.Inf(1)
		}
		return GlyphDistance(texel.A, prim.Extra[0])
	case sdfcanvas.PrimImage:
		return ImageMask(p, prim.ShapeRect())
	default:
		return math32.Inf(1)
	}
}

// Evaluate returns the primitive's linear premultiplied contribution at p,
// coverage applied, using fw = 1.
func Evaluate(prim *sdfcanvas.PackedPrimitive, p sdfcanvas.Vec2, s Sampler) sdfcanvas.RGBA {
	if prim.Kind == sdfcanvas.PrimImage {
		if s == nil || ImageMask(p, prim.ShapeRect()) != 0 {
			return sdfcanvas.Transparent
		}
		u, v := mapUV(p, prim)
		texel, ok := s.Sample(prim.Texture, u, v)
		if !ok {
			return sdfcanvas.Transparent
		}
		return texel
	}
	d := Distance(prim, p, s)
	c := Coverage(d, 1)
	if c == 0 {
		return sdfcanvas.Transparent
	}
	col := prim.Color
	if bw := prim.BorderWidth(); bw > 0 && prim.Kind != sdfcanvas.PrimStrokeRect {
		col = BorderColor(prim.Color, prim.Extra, d, bw, 1)
	}
	return sdfcanvas.RGBA{R: col[0] * c, G: col[1] * c, B: col[2] * c, A: col[3] * c}
}

// BorderColor blends the fill and border colors of a bordered primitive at
// distance d: the border covers -width <= d <= 0, the fill everything deeper.
// Colors are linear premultiplied.
func BorderColor(fill, border [4]float32, d, width, fw float32) [4]float32 {
	t := Coverage(d+width, fw)
	var out [4]float32
	for i := range out {
		out[i] = border[i] + t*(fill[i]-border[i])
	}
	return out
}

// mapUV maps p from the primitive's shape rect into its Params rect. Images
// carry normalized coordinates there, glyphs carry atlas texels.
func mapUV(p sdfcanvas.Vec2, prim *sdfcanvas.PackedPrimitive) (u, v float32) {
	r := prim.ShapeRect()
	fx, fy := float32(0), float32(0)
	if w := r.Width(); w > 0 {
		fx = (p.X - r.Min.X) / w
	}
	if h := r.Height(); h > 0 {
		fy = (p.Y - r.Min.Y) / h
	}
	uv := &prim.Params
	return uv[0] + fx*(uv[2]-uv[0]), uv[1] + fy*(uv[3]-uv[1])
}
