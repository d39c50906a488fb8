package sdfcanvas

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PrimitiveKind identifies the SDF a packed primitive is evaluated with.
// Values are part of the binary layout and must stay stable.
type PrimitiveKind uint32

const (
	PrimFillRect   PrimitiveKind = iota // Rounded-box fill
	PrimStrokeRect                      // Rounded-box outline, |d| - w/2
	PrimLine                            // Segment with cap style
	PrimGlyph                           // Distance-field glyph atlas sample
	PrimImage                           // Textured rect

	primitiveKindCount
)

var primitiveKindNames = [...]string{
	PrimFillRect:   "FillRect",
	PrimStrokeRect: "StrokeRect",
	PrimLine:       "Line",
	PrimGlyph:      "Glyph",
	PrimImage:      "Image",
}

// String returns a human-readable name for the primitive kind.
func (k PrimitiveKind) String() string {
	if k < primitiveKindCount {
		return primitiveKindNames[k]
	}
	return fmt.Sprintf("PrimitiveKind(%d)", uint32(k))
}

// IsTextured reports whether primitives of this kind sample a texture.
func (k PrimitiveKind) IsTextured() bool {
	return k == PrimGlyph || k == PrimImage
}

// Flag bits stored in PackedPrimitive.Flags.
const (
	// FlagCapMask holds the CapStyle of PrimLine primitives.
	FlagCapMask uint32 = 0x3

	// FlagBorderShift is the position of the inner border width of
	// PrimFillRect and PrimLine primitives, stored in bits 8-31 in units of
	// 1/BorderWidthScale px. Extra holds the border color when it is set.
	FlagBorderShift = 8

	// BorderWidthScale is the fixed-point scale of the packed border width.
	BorderWidthScale = 256

	maxBorderUnits = 1<<(32-FlagBorderShift) - 1
)

// PackedPrimitiveSize is the encoded size of a PackedPrimitive in bytes.
const PackedPrimitiveSize = 96

// PackedPrimitive is one compiled, GPU-evaluable shape. Its binary encoding
// is fixed (little-endian, PackedPrimitiveSize bytes) and is mirrored by the
// display shader, so records can be copied into device memory verbatim.
//
// Layout:
//
//	offset  field    type     meaning
//	0       Kind     u32      PrimitiveKind
//	4       Flags    u32      bits 0-1: CapStyle (lines); bits 8-31: border width (1/256 px)
//	8       Brush    u32      BrushIndex, NoBrush for images
//	12      Texture  u32      TextureRef, NoTexture when untextured
//	16      Color    4×f32    linear premultiplied RGBA
//	32      Quad     4×f32    min.x, min.y, max.x, max.y (physical px)
//	48      Shape    4×f32    rect min/max, or line p0.xy, p1.xy (px)
//	64      Params   4×f32    corner radii (TL,TR,BR,BL), line [width,0,0,0], uv min/max, or glyph atlas cell (texels)
//	80      Extra    4×f32    [stroke width], [glyph distance range px] or border color
//
// All positions are in physical pixels in the canvas coordinate system
// (logical × scale factor), not relative to the surface origin.
type PackedPrimitive struct {
	Kind    PrimitiveKind
	Flags   uint32
	Brush   BrushIndex
	Texture TextureRef
	Color   [4]float32
	Quad    [4]float32
	Shape   [4]float32
	Params  [4]float32
	Extra   [4]float32
}

// QuadRect returns the quad as a Rect.
func (p *PackedPrimitive) QuadRect() Rect {
	return R(p.Quad[0], p.Quad[1], p.Quad[2], p.Quad[3])
}

// ShapeRect returns Shape as a Rect (rect, glyph and image kinds).
func (p *PackedPrimitive) ShapeRect() Rect {
	return R(p.Shape[0], p.Shape[1], p.Shape[2], p.Shape[3])
}

// Cap returns the cap style of a line primitive.
func (p *PackedPrimitive) Cap() CapStyle {
	return CapStyle(p.Flags & FlagCapMask) // #nosec G115 -- masked to 2 bits
}

// BorderWidth returns the inner border width in physical pixels, or 0 when
// the primitive has no border.
func (p *PackedPrimitive) BorderWidth() float32 {
	return float32(p.Flags>>FlagBorderShift) / BorderWidthScale
}

// borderFlags packs an inner border width in px into Flags bits.
func borderFlags(w float32) uint32 {
	units := math.Round(float64(w) * BorderWidthScale)
	if !(units > 0) {
		return 0
	}
	return uint32(min(units, maxBorderUnits)) << FlagBorderShift // #nosec G115 -- clamped to 24 bits
}

// AppendBinary appends the little-endian encoding of p to b.
func (p *PackedPrimitive) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, uint32(p.Kind))
	b = binary.LittleEndian.AppendUint32(b, p.Flags)
	b = binary.LittleEndian.AppendUint32(b, uint32(p.Brush))
	b = binary.LittleEndian.AppendUint32(b, uint32(p.Texture))
	for _, v := range [...]*[4]float32{&p.Color, &p.Quad, &p.Shape, &p.Params, &p.Extra} {
		for _, f := range v {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
		}
	}
	return b, nil
}

// UnmarshalBinary decodes a record produced by AppendBinary.
func (p *PackedPrimitive) UnmarshalBinary(b []byte) error {
	if len(b) < PackedPrimitiveSize {
		return fmt.Errorf("%w: primitive needs %d bytes, got %d", ErrShortBuffer, PackedPrimitiveSize, len(b))
	}
	p.Kind = PrimitiveKind(binary.LittleEndian.Uint32(b[0:]))
	p.Flags = binary.LittleEndian.Uint32(b[4:])
	p.Brush = BrushIndex(binary.LittleEndian.Uint32(b[8:]))
	p.Texture = TextureRef(binary.LittleEndian.Uint32(b[12:]))
	off := 16
	for _, v := range [...]*[4]float32{&p.Color, &p.Quad, &p.Shape, &p.Params, &p.Extra} {
		for i := range v {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
			off += 4
		}
	}
	return nil
}

// PackedPrimitiveIndex is a compact reference to a primitive used by tile
// bins: index in bits 0-26, kind in bits 28-30, textured flag in bit 31.
type PackedPrimitiveIndex uint32

// Bit layout of PackedPrimitiveIndex.
const (
	primIndexMask    = 0x07FF_FFFF
	primKindShift    = 28
	primKindMask     = 0x7
	primTexturedFlag = 1 << 31

	// MaxPrimitiveIndex is the largest index a PackedPrimitiveIndex can hold.
	MaxPrimitiveIndex = primIndexMask
)

// NewPackedPrimitiveIndex packs index and kind.
func NewPackedPrimitiveIndex(index uint32, kind PrimitiveKind) PackedPrimitiveIndex {
	v := index&primIndexMask | (uint32(kind)&primKindMask)<<primKindShift
	if kind.IsTextured() {
		v |= primTexturedFlag
	}
	return PackedPrimitiveIndex(v)
}

// Index returns the primitive index.
func (i PackedPrimitiveIndex) Index() uint32 { return uint32(i) & primIndexMask }

// Kind returns the primitive kind.
func (i PackedPrimitiveIndex) Kind() PrimitiveKind {
	return PrimitiveKind(uint32(i) >> primKindShift & primKindMask)
}

// IsTextured reports whether the primitive samples a texture.
func (i PackedPrimitiveIndex) IsTextured() bool { return uint32(i)&primTexturedFlag != 0 }
