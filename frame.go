package sdfcanvas

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DrawGroup is a contiguous range of primitives sharing kind and texture.
// The display pipeline issues one draw per group, in slice order.
type DrawGroup struct {
	Kind    PrimitiveKind
	Texture TextureRef
	// Start and End delimit the range [Start, End) in Frame.Primitives.
	Start, End uint32
}

// Len returns the number of primitives in the group.
func (g DrawGroup) Len() int { return int(g.End - g.Start) }

// IndexRange returns the first index and index count of the group in
// Frame.Indices.
func (g DrawGroup) IndexRange() (first, count uint32) {
	return g.Start * IndicesPerPrimitive, (g.End - g.Start) * IndicesPerPrimitive
}

// Geometry emitted per primitive.
const (
	VerticesPerPrimitive = 4
	IndicesPerPrimitive  = 6

	// VertexSize is the encoded size of a Vertex in bytes.
	VertexSize = 12
	// DrawGroupSize is the encoded size of a DrawGroup in bytes.
	DrawGroupSize = 16
)

// Vertex is one quad corner. Primitive holds the primitive index as a float
// so that the vertex layout only needs float formats; indices stay exact
// below 2^24, far above any primitive ceiling.
type Vertex struct {
	X, Y      float32
	Primitive float32
}

// Frame is the compiled output of one canvas frame: a plain data structure
// the display pipeline consumes. Primitives are in paint order, and Groups
// partition them in the order they must be submitted.
type Frame struct {
	// Origin is the physical-pixel coordinate of the surface's top-left
	// corner; pixel (x, y) covers Origin + [x, x+1) × [y, y+1).
	Origin        Vec2
	Width, Height int
	ScaleFactor   float32

	// Background is the sRGB clear color, valid when HasBackground is set.
	// Without one the surface starts transparent.
	Background    RGBA
	HasBackground bool

	Primitives []PackedPrimitive
	Groups     []DrawGroup
	Vertices   []Vertex
	Indices    []uint32

	// Diagnostics holds problems found while compiling (truncation).
	Diagnostics        []Diagnostic
	DroppedDiagnostics int
}

// Reset empties the frame, keeping allocated capacity.
func (f *Frame) Reset() {
	f.Origin = Vec2{}
	f.Width, f.Height = 0, 0
	f.ScaleFactor = 0
	f.Background, f.HasBackground = RGBA{}, false
	f.Primitives = f.Primitives[:0]
	f.Groups = f.Groups[:0]
	f.Vertices = f.Vertices[:0]
	f.Indices = f.Indices[:0]
	f.Diagnostics = f.Diagnostics[:0]
	f.DroppedDiagnostics = 0
}

// IsEmpty reports whether the frame draws nothing but its background.
func (f *Frame) IsEmpty() bool { return len(f.Primitives) == 0 }

// ClearColor returns the background as linear premultiplied color, or
// transparent when no background is set.
func (f *Frame) ClearColor() RGBA {
	if !f.HasBackground {
		return Transparent
	}
	return f.Background.LinearPremul()
}

// SurfaceRect returns the physical-pixel rect covered by the surface.
func (f *Frame) SurfaceRect() Rect {
	return RectXYWH(f.Origin.X, f.Origin.Y, float32(f.Width), float32(f.Height))
}

// appendQuad emits the vertices and indices for primitive i.
func (f *Frame) appendQuad(i uint32, q [4]float32) {
	base := uint32(len(f.Vertices)) // #nosec G115 -- bounded by the primitive ceiling
	p := float32(i)
	f.Vertices = append(f.Vertices,
		Vertex{q[0], q[1], p}, // top-left
		Vertex{q[2], q[1], p}, // top-right
		Vertex{q[2], q[3], p}, // bottom-right
		Vertex{q[0], q[3], p}, // bottom-left
	)
	f.Indices = append(f.Indices, base, base+1, base+2, base, base+2, base+3)
}

// AppendPrimitiveBytes appends the encoded primitive array to dst.
func (f *Frame) AppendPrimitiveBytes(dst []byte) []byte {
	dst = growBytes(dst, len(f.Primitives)*PackedPrimitiveSize)
	for i := range f.Primitives {
		dst, _ = f.Primitives[i].AppendBinary(dst) // never fails
	}
	return dst
}

// AppendVertexBytes appends the encoded vertex array to dst.
func (f *Frame) AppendVertexBytes(dst []byte) []byte {
	dst = growBytes(dst, len(f.Vertices)*VertexSize)
	for _, v := range f.Vertices {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.X))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Y))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Primitive))
	}
	return dst
}

// AppendIndexBytes appends the encoded u32 index array to dst.
func (f *Frame) AppendIndexBytes(dst []byte) []byte {
	dst = growBytes(dst, len(f.Indices)*4)
	for _, idx := range f.Indices {
		dst = binary.LittleEndian.AppendUint32(dst, idx)
	}
	return dst
}

func growBytes(b []byte, n int) []byte {
	if cap(b)-len(b) < n {
		nb := make([]byte, len(b), len(b)+n)
		copy(nb, b)
		return nb
	}
	return b
}

// Binary frame dump format, little-endian:
//
//	u32 magic 'SDFF'   u32 version   u32 flags (bit 0: background)
//	u32 width          u32 height
//	f32 origin.x       f32 origin.y  f32 scale
//	4×f32 background (sRGB, straight alpha)
//	u32 primitive count  u32 group count
//	primitives (PackedPrimitiveSize each)
//	groups (kind, texture, start, end as u32)
//
// Vertices and indices are derived data and are rebuilt on decode.
const (
	frameMagic      = uint32('S') | uint32('D')<<8 | uint32('F')<<16 | uint32('F')<<24
	frameVersion    = 1
	frameHeaderSize = 56
)

// MarshalBinary encodes the frame for capture or transport.
func (f *Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, frameHeaderSize+len(f.Primitives)*PackedPrimitiveSize+len(f.Groups)*DrawGroupSize)
	var flags uint32
	if f.HasBackground {
		flags |= 1
	}
	le := binary.LittleEndian
	b = le.AppendUint32(b, frameMagic)
	b = le.AppendUint32(b, frameVersion)
	b = le.AppendUint32(b, flags)
	b = le.AppendUint32(b, uint32(f.Width))  // #nosec G115 -- surface sizes are small
	b = le.AppendUint32(b, uint32(f.Height)) // #nosec G115
	for _, v := range [...]float32{f.Origin.X, f.Origin.Y, f.ScaleFactor,
		f.Background.R, f.Background.G, f.Background.B, f.Background.A} {
		b = le.AppendUint32(b, math.Float32bits(v))
	}
	b = le.AppendUint32(b, uint32(len(f.Primitives))) // #nosec G115
	b = le.AppendUint32(b, uint32(len(f.Groups)))     // #nosec G115
	b = f.AppendPrimitiveBytes(b)
	for _, g := range f.Groups {
		b = le.AppendUint32(b, uint32(g.Kind))
		b = le.AppendUint32(b, uint32(g.Texture))
		b = le.AppendUint32(b, g.Start)
		b = le.AppendUint32(b, g.End)
	}
	return b, nil
}

// UnmarshalBinary decodes a frame produced by MarshalBinary, reusing the
// frame's buffers.
func (f *Frame) UnmarshalBinary(b []byte) error {
	if len(b) < frameHeaderSize {
		return fmt.Errorf("%w: frame header needs %d bytes, got %d", ErrShortBuffer, frameHeaderSize, len(b))
	}
	le := binary.LittleEndian
	if m := le.Uint32(b); m != frameMagic {
		return fmt.Errorf("sdfcanvas: bad frame magic %#08x", m)
	}
	if v := le.Uint32(b[4:]); v != frameVersion {
		return fmt.Errorf("sdfcanvas: unsupported frame version %d", v)
	}
	f.Reset()
	f.HasBackground = le.Uint32(b[8:])&1 != 0
	f.Width = int(le.Uint32(b[12:]))
	f.Height = int(le.Uint32(b[16:]))
	fl := func(off int) float32 { return math.Float32frombits(le.Uint32(b[off:])) }
	f.Origin = Vec2{fl(20), fl(24)}
	f.ScaleFactor = fl(28)
	f.Background = RGBA{fl(32), fl(36), fl(40), fl(44)}
	nPrims := int(le.Uint32(b[48:]))
	nGroups := int(le.Uint32(b[52:]))

	body := b[frameHeaderSize:]
	need := nPrims*PackedPrimitiveSize + nGroups*DrawGroupSize
	if nPrims < 0 || nGroups < 0 || len(body) < need {
		return fmt.Errorf("%w: frame body needs %d bytes, got %d", ErrShortBuffer, need, len(body))
	}
	for i := range nPrims {
		var p PackedPrimitive
		if err := p.UnmarshalBinary(body[i*PackedPrimitiveSize:]); err != nil {
			return err
		}
		f.Primitives = append(f.Primitives, p)
		f.appendQuad(uint32(i), p.Quad) // #nosec G115 -- bounded by nPrims
	}
	body = body[nPrims*PackedPrimitiveSize:]
	for i := range nGroups {
		g := body[i*DrawGroupSize:]
		f.Groups = append(f.Groups, DrawGroup{
			Kind:    PrimitiveKind(le.Uint32(g)),
			Texture: TextureRef(le.Uint32(g[4:])),
			Start:   le.Uint32(g[8:]),
			End:     le.Uint32(g[12:]),
		})
	}
	return f.validateGroups()
}

// validateGroups checks that groups partition the primitive array.
func (f *Frame) validateGroups() error {
	next := uint32(0)
	for i, g := range f.Groups {
		if g.Start != next || g.End <= g.Start {
			return fmt.Errorf("sdfcanvas: group %d range [%d,%d) does not continue at %d", i, g.Start, g.End, next)
		}
		next = g.End
	}
	if int(next) != len(f.Primitives) {
		return fmt.Errorf("sdfcanvas: groups cover %d of %d primitives", next, len(f.Primitives))
	}
	return nil
}
