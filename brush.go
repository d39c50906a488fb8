package sdfcanvas

// BrushKind tags the Brush variant.
type BrushKind uint8

const (
	// BrushSolid paints a single color.
	BrushSolid BrushKind = iota
	// BrushLinearGradient is reserved. Recording it is rejected.
	BrushLinearGradient
	// BrushRadialGradient is reserved. Recording it is rejected.
	BrushRadialGradient
)

var brushKindNames = [...]string{
	BrushSolid:          "Solid",
	BrushLinearGradient: "LinearGradient",
	BrushRadialGradient: "RadialGradient",
}

// String returns the variant name.
func (k BrushKind) String() string {
	if int(k) < len(brushKindNames) {
		return brushKindNames[k]
	}
	return "Unknown"
}

// Brush represents what to paint with.
//
// Brush is a closed tagged variant rather than an interface: the set of
// kinds is small and fixed, and evaluation is a switch on Kind. Brushes are
// comparable values, which is what lets the BrushTable deduplicate them.
//
// Example:
//
//	rec.Fill(rect, sdfcanvas.Solid(sdfcanvas.Red))
//	rec.Fill(rect, sdfcanvas.SolidHex("#FF5733"))
type Brush struct {
	Kind  BrushKind
	Color RGBA
}

// Solid creates a solid brush.
func Solid(c RGBA) Brush {
	return Brush{Kind: BrushSolid, Color: c}
}

// SolidRGB creates an opaque solid brush from sRGB components.
func SolidRGB(r, g, b float32) Brush {
	return Solid(RGB(r, g, b))
}

// SolidHex creates a solid brush from a hex color string.
func SolidHex(hex string) Brush {
	return Solid(Hex(hex))
}

// IsSupported reports whether the compiler can evaluate b.
func (b Brush) IsSupported() bool {
	return b.Kind == BrushSolid
}

// ColorAt returns the sRGB color of b at a logical point.
// Unsupported kinds evaluate to transparent.
func (b Brush) ColorAt(_ Vec2) RGBA {
	switch b.Kind {
	case BrushSolid:
		return b.Color
	default:
		return Transparent
	}
}

// BrushIndex refers to an interned brush within one frame.
type BrushIndex uint32

// NoBrush marks primitives that take their color from a texture.
const NoBrush = ^BrushIndex(0)

// BrushTable interns the brushes used in a frame.
// Equal brushes share an index. The table is reset with the canvas.
//
// BrushTable is not safe for concurrent use.
type BrushTable struct {
	brushes []Brush
	index   map[Brush]BrushIndex
}

// NewBrushTable creates an empty table with pre-allocated capacity.
func NewBrushTable() *BrushTable {
	return &BrushTable{
		brushes: make([]Brush, 0, 16),
		index:   make(map[Brush]BrushIndex, 16),
	}
}

// Intern returns the index of b, adding it on first use.
func (t *BrushTable) Intern(b Brush) BrushIndex {
	if idx, ok := t.index[b]; ok {
		return idx
	}
	// #nosec G115 -- brush count is bounded by the per-frame primitive ceiling
	idx := BrushIndex(len(t.brushes))
	t.brushes = append(t.brushes, b)
	t.index[b] = idx
	return idx
}

// Resolve returns the brush at idx, or false if idx is out of range.
func (t *BrushTable) Resolve(idx BrushIndex) (Brush, bool) {
	if int(idx) >= len(t.brushes) {
		return Brush{}, false
	}
	return t.brushes[idx], true
}

// Len returns the number of distinct brushes.
func (t *BrushTable) Len() int { return len(t.brushes) }

// Brushes returns the interned brushes in index order.
// The slice is owned by the table and is invalidated by Reset.
func (t *BrushTable) Brushes() []Brush { return t.brushes }

// Reset empties the table, keeping allocated capacity.
func (t *BrushTable) Reset() {
	t.brushes = t.brushes[:0]
	clear(t.index)
}
