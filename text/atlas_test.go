package text

import (
	"image"
	"testing"
)

func TestDistanceField(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 30, 30))
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			mask.Pix[y*mask.Stride+x] = 255
		}
	}
	dst := image.NewGray(mask.Rect)
	distanceField(dst, mask)

	tests := []struct {
		name string
		x, y int
		want uint8
	}{
		{"inside next to edge", 10, 15, 138},
		{"outside next to edge", 9, 15, 117},
		{"far outside", 0, 0, 0},
		{"center", 15, 15, 223}, // 5 texels in: 0.5 + 4.5/12
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dst.GrayAt(tt.x, tt.y).Y; got != tt.want {
				t.Errorf("field(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}

	// The field decreases monotonically walking out of the shape.
	prev := uint8(255)
	for x := 15; x < 30; x++ {
		v := dst.GrayAt(x, 15).Y
		if v > prev {
			t.Errorf("field rises at x=%d: %d > %d", x, v, prev)
		}
		prev = v
	}
}

func TestAtlasResolve(t *testing.T) {
	r, ref := newTestRegistry(t)
	f, _ := r.LookupFont(ref)
	a := f.Atlas()

	gids := []uint32{f.GlyphIndex('A'), f.GlyphIndex(' '), f.GlyphIndex('A')}
	entries, err := a.resolve(gids, nil)
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("resolve() returned %d entries, want 3", len(entries))
	}
	if w, h := a.Size(); w != AtlasWidth || h != initialAtlasHeight || a.Generation() != 0 {
		t.Errorf("Size() = %dx%d gen %d, want initial size and generation 0", w, h, a.Generation())
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
	if a.Version() != 1 {
		t.Errorf("Version() = %d, want 1", a.Version())
	}

	glyph, space := entries[0], entries[1]
	if glyph.Empty || glyph != entries[2] {
		t.Errorf("entry for 'A' = %+v, want one stable non-empty cell", glyph)
	}
	if !space.Empty {
		t.Errorf("entry for ' ' = %+v, want Empty", space)
	}
	if !glyph.Cell.In(image.Rect(0, 0, AtlasWidth, initialAtlasHeight)) {
		t.Errorf("cell %v outside the atlas", glyph.Cell)
	}
	// The cell spans the outline plus the spread on both sides.
	if glyph.Cell.Dx() < 2*Spread+20 || glyph.Cell.Dy() < 2*Spread+30 {
		t.Errorf("cell %v too small for 'A' at %d px", glyph.Cell, BaseSize)
	}
	if glyph.Offset.Y >= 0 {
		t.Errorf("Offset = %v, want the cell to start above the baseline", glyph.Offset)
	}

	img := a.Image()
	border := img.GrayAt(glyph.Cell.Min.X, glyph.Cell.Min.Y).Y
	if border != 0 {
		t.Errorf("cell corner = %d, want 0", border)
	}
	inside := 0
	for y := glyph.Cell.Min.Y; y < glyph.Cell.Max.Y; y++ {
		for x := glyph.Cell.Min.X; x < glyph.Cell.Max.X; x++ {
			if img.GrayAt(x, y).Y > 128 {
				inside++
			}
		}
	}
	if inside == 0 {
		t.Error("no texel of 'A' lies inside the outline")
	}

	// Image returns a copy.
	img.Pix[0] = 99
	if a.Image().Pix[0] == 99 {
		t.Error("Image() aliases the atlas")
	}
	if e, ok := a.Lookup(gids[0]); !ok || e != glyph {
		t.Errorf("Lookup('A') = %+v, %v", e, ok)
	}
}

func TestAtlasGrows(t *testing.T) {
	r, ref := newTestRegistry(t)
	f, _ := r.LookupFont(ref)
	a := f.Atlas()

	var gids []uint32
	for c := '!'; c <= '~'; c++ {
		gids = append(gids, f.GlyphIndex(c))
	}
	entries, err := a.resolve(gids, nil)
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if w, h := a.Size(); a.Generation() == 0 || h <= initialAtlasHeight || w != AtlasWidth {
		t.Errorf("Size() = %dx%d gen %d, want a taller atlas", w, h, a.Generation())
	}

	// Cells never overlap.
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if gids[i] != gids[j] && entries[i].Cell.Overlaps(entries[j].Cell) {
				t.Fatalf("cells %v and %v overlap", entries[i].Cell, entries[j].Cell)
			}
		}
	}
}
