package sdfcanvas

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func sampleFrame(t *testing.T) *Frame {
	t.Helper()
	c := mustCanvas(t, R(0, 0, 64, 32), 2)
	c.SetBackground(Pink)
	c.Recorder().
		FillRounded(R(2, 2, 30, 20), CornerRadii{1, 2, 3, 4}, Solid(Red)).
		Stroke(R(4, 4, 12, 12), Solid(Blue), 1.5).
		LineWithCap(V2(0, 30), V2(60, 2), Solid(Black), 2, CapRound)
	return c.Compile(nil)
}

func TestFrameBinaryRoundTrip(t *testing.T) {
	f := sampleFrame(t)
	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	if want := frameHeaderSize + len(f.Primitives)*PackedPrimitiveSize + len(f.Groups)*DrawGroupSize; len(data) != want {
		t.Errorf("len(data) = %d, want %d", len(data), want)
	}

	var got Frame
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	opts := cmp.Options{
		cmpopts.EquateEmpty(),
		cmpopts.IgnoreFields(Frame{}, "Diagnostics", "DroppedDiagnostics"),
	}
	if diff := cmp.Diff(f, &got, opts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameUnmarshalErrors(t *testing.T) {
	good, err := sampleFrame(t).MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	corrupt := func(f func(b []byte)) []byte {
		b := append([]byte(nil), good...)
		f(b)
		return b
	}

	tests := []struct {
		name      string
		data      []byte
		wantShort bool
	}{
		{"empty", nil, true},
		{"truncated body", good[:len(good)-1], true},
		{"bad magic", corrupt(func(b []byte) { b[0] = 'X' }), false},
		{"bad version", corrupt(func(b []byte) { binary.LittleEndian.PutUint32(b[4:], 9) }), false},
		{"gap in groups", corrupt(func(b []byte) {
			// Start of the first group.
			off := len(b) - 3*DrawGroupSize + 8
			binary.LittleEndian.PutUint32(b[off:], 1)
		}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Frame
			err := f.UnmarshalBinary(tt.data)
			if err == nil {
				t.Fatal("UnmarshalBinary() error = nil")
			}
			if got := errors.Is(err, ErrShortBuffer); got != tt.wantShort {
				t.Errorf("errors.Is(%v, ErrShortBuffer) = %v, want %v", err, got, tt.wantShort)
			}
		})
	}
}

func TestFrameByteViews(t *testing.T) {
	f := sampleFrame(t)
	if got := len(f.AppendPrimitiveBytes(nil)); got != len(f.Primitives)*PackedPrimitiveSize {
		t.Errorf("AppendPrimitiveBytes len = %d", got)
	}
	if got := len(f.AppendVertexBytes(nil)); got != len(f.Vertices)*VertexSize {
		t.Errorf("AppendVertexBytes len = %d", got)
	}
	idx := f.AppendIndexBytes(nil)
	if got := len(idx); got != len(f.Indices)*4 {
		t.Errorf("AppendIndexBytes len = %d", got)
	}
	// Second quad starts at vertex 4.
	if got := binary.LittleEndian.Uint32(idx[6*4:]); got != 4 {
		t.Errorf("index[6] = %d, want 4", got)
	}
}

func TestPackedPrimitiveLayout(t *testing.T) {
	p := PackedPrimitive{
		Kind:    PrimLine,
		Flags:   uint32(CapSquare),
		Brush:   7,
		Texture: 3,
		Color:   [4]float32{0.1, 0.2, 0.3, 0.4},
		Quad:    [4]float32{1, 2, 3, 4},
		Shape:   [4]float32{5, 6, 7, 8},
		Params:  [4]float32{9},
		Extra:   [4]float32{10},
	}
	b, err := p.AppendBinary(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != PackedPrimitiveSize {
		t.Fatalf("encoded size = %d, want %d", len(b), PackedPrimitiveSize)
	}
	if k := binary.LittleEndian.Uint32(b[0:]); k != uint32(PrimLine) {
		t.Errorf("kind at offset 0 = %d", k)
	}
	if q := binary.LittleEndian.Uint32(b[32:]); q != 0x3f800000 {
		t.Errorf("quad[0] at offset 32 = %#x, want 1.0", q)
	}
	var got PackedPrimitive
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("UnmarshalBinary() = %+v, want %+v", got, p)
	}
	if got.Cap() != CapSquare {
		t.Errorf("Cap() = %v, want square", got.Cap())
	}
	if err := got.UnmarshalBinary(b[:95]); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("UnmarshalBinary(short) error = %v, want ErrShortBuffer", err)
	}
}

func TestPackedPrimitiveIndex(t *testing.T) {
	tests := []struct {
		index    uint32
		kind     PrimitiveKind
		textured bool
	}{
		{0, PrimFillRect, false},
		{12345, PrimLine, false},
		{MaxPrimitiveIndex, PrimGlyph, true},
		{7, PrimImage, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			i := NewPackedPrimitiveIndex(tt.index, tt.kind)
			if i.Index() != tt.index || i.Kind() != tt.kind || i.IsTextured() != tt.textured {
				t.Errorf("got (%d, %v, %v), want (%d, %v, %v)",
					i.Index(), i.Kind(), i.IsTextured(), tt.index, tt.kind, tt.textured)
			}
		})
	}
}
