package sdfcanvas

import "github.com/chewxy/math32"

// Vec2 is a 2D point or vector. Canvas coordinates grow right and down.
type Vec2 struct {
	X, Y float32
}

// V2 is shorthand for Vec2{x, y}.
func V2(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul returns v scaled by s.
func (v Vec2) Mul(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float32 { return math32.Hypot(v.X, v.Y) }

// IsFinite reports whether both components are finite.
func (v Vec2) IsFinite() bool { return isFinite(v.X) && isFinite(v.Y) }

// Rect is an axis-aligned rectangle. A valid rect has Min <= Max componentwise.
type Rect struct {
	Min, Max Vec2
}

// R is shorthand for a rect spanning (x0,y0)-(x1,y1).
func R(x0, y0, x1, y1 float32) Rect {
	return Rect{Min: Vec2{x0, y0}, Max: Vec2{x1, y1}}
}

// RectXYWH builds a rect from its top-left corner and size.
func RectXYWH(x, y, w, h float32) Rect {
	return Rect{Min: Vec2{x, y}, Max: Vec2{x + w, y + h}}
}

// Width returns Max.X - Min.X.
func (r Rect) Width() float32 { return r.Max.X - r.Min.X }

// Height returns Max.Y - Min.Y.
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Size returns the width and height as a vector.
func (r Rect) Size() Vec2 { return Vec2{r.Width(), r.Height()} }

// Center returns the midpoint of r.
func (r Rect) Center() Vec2 {
	return Vec2{(r.Min.X + r.Max.X) * 0.5, (r.Min.Y + r.Max.Y) * 0.5}
}

// IsNormalized reports whether Min <= Max on both axes.
func (r Rect) IsNormalized() bool {
	return r.Min.X <= r.Max.X && r.Min.Y <= r.Max.Y
}

// Normalize returns r with Min and Max swapped per axis where needed.
func (r Rect) Normalize() Rect {
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// IsEmpty reports whether r has zero or negative area.
func (r Rect) IsEmpty() bool {
	return !(r.Max.X > r.Min.X && r.Max.Y > r.Min.Y)
}

// IsFinite reports whether all coordinates are finite.
func (r Rect) IsFinite() bool { return r.Min.IsFinite() && r.Max.IsFinite() }

// Intersects reports whether r and o overlap with non-zero area.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Contains reports whether p lies inside r (inclusive of Min, exclusive of Max).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Union returns the smallest rect containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Vec2{math32.Min(r.Min.X, o.Min.X), math32.Min(r.Min.Y, o.Min.Y)},
		Max: Vec2{math32.Max(r.Max.X, o.Max.X), math32.Max(r.Max.Y, o.Max.Y)},
	}
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float32) Rect {
	return Rect{Min: Vec2{r.Min.X - d, r.Min.Y - d}, Max: Vec2{r.Max.X + d, r.Max.Y + d}}
}

// Scale multiplies every coordinate by s.
func (r Rect) Scale(s float32) Rect {
	return Rect{Min: r.Min.Mul(s), Max: r.Max.Mul(s)}
}

// Translate offsets r by d.
func (r Rect) Translate(d Vec2) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

// CornerRadii holds per-corner radii in the order top-left, top-right,
// bottom-right, bottom-left.
type CornerRadii [4]float32

// Corner indices into CornerRadii.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// CircleRect returns the square bounding the circle of radius r around
// center. Filled with Uniform(r) radii it draws the circle.
func CircleRect(center Vec2, r float32) Rect {
	return Rect{Min: Vec2{center.X - r, center.Y - r}, Max: Vec2{center.X + r, center.Y + r}}
}

// Uniform returns radii with the same value on every corner.
func Uniform(r float32) CornerRadii { return CornerRadii{r, r, r, r} }

// IsZero reports whether all radii are zero.
func (c CornerRadii) IsZero() bool {
	return c[0] == 0 && c[1] == 0 && c[2] == 0 && c[3] == 0
}

// Scale multiplies every radius by s.
func (c CornerRadii) Scale(s float32) CornerRadii {
	return CornerRadii{c[0] * s, c[1] * s, c[2] * s, c[3] * s}
}

// Max returns the largest radius.
func (c CornerRadii) Max() float32 {
	return math32.Max(math32.Max(c[0], c[1]), math32.Max(c[2], c[3]))
}

// fitTo returns radii that are non-negative and fit inside a w×h rect: when
// two adjacent radii overflow an edge, all four are scaled by the same factor.
// The boolean reports whether anything changed.
func (c CornerRadii) fitTo(w, h float32) (CornerRadii, bool) {
	changed := false
	limit := math32.Max(w, h)
	for i, r := range c {
		switch {
		case !(r > 0):
			if r != 0 {
				changed = true
			}
			c[i] = 0
		case r > limit:
			c[i] = limit
			changed = true
		}
	}
	f := float32(1)
	edge := func(length, a, b float32) {
		if sum := a + b; sum > length && sum > 0 {
			f = math32.Min(f, length/sum)
		}
	}
	edge(w, c[TopLeft], c[TopRight])
	edge(w, c[BottomLeft], c[BottomRight])
	edge(h, c[TopLeft], c[BottomLeft])
	edge(h, c[TopRight], c[BottomRight])
	if f < 1 {
		c = c.Scale(f)
		changed = true
	}
	return c, changed
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
