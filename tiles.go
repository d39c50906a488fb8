package sdfcanvas

import "github.com/chewxy/math32"

// DefaultTileSize is the tile edge in physical pixels used by BinTiles when
// a non-positive size is requested.
const DefaultTileSize = 8

// OffsetAndCount locates one tile's entries in TileBins.Indices.
type OffsetAndCount struct {
	Offset, Count uint32
}

// TileBins assigns primitives to the screen tiles their quads touch, for
// display pipelines that shade per tile instead of drawing quads. Within a
// tile, primitives keep paint order.
type TileBins struct {
	TileSize   int
	Cols, Rows int
	// Tiles is row-major, Cols×Rows entries.
	Tiles   []OffsetAndCount
	Indices []PackedPrimitiveIndex
}

// Tile returns the primitives touching tile (col, row), in paint order.
func (b *TileBins) Tile(col, row int) []PackedPrimitiveIndex {
	if col < 0 || row < 0 || col >= b.Cols || row >= b.Rows {
		return nil
	}
	t := b.Tiles[row*b.Cols+col]
	return b.Indices[t.Offset : t.Offset+t.Count]
}

// BinTiles bins the frame's primitives into tileSize×tileSize tiles.
// dst may be nil; its buffers are reused otherwise.
func BinTiles(f *Frame, tileSize int, dst *TileBins) *TileBins {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	if dst == nil {
		dst = &TileBins{}
	}
	dst.TileSize = tileSize
	dst.Cols = (f.Width + tileSize - 1) / tileSize
	dst.Rows = (f.Height + tileSize - 1) / tileSize
	dst.Tiles = resize(dst.Tiles, dst.Cols*dst.Rows)
	clear(dst.Tiles)
	dst.Indices = dst.Indices[:0]
	if dst.Cols == 0 || dst.Rows == 0 {
		return dst
	}

	// Counting sort: count, prefix-sum, fill. Filling in primitive order
	// keeps each tile's list in paint order.
	for i := range f.Primitives {
		c0, r0, c1, r1, ok := dst.tileSpan(f, &f.Primitives[i])
		if !ok {
			continue
		}
		for r := r0; r <= r1; r++ {
			for c := c0; c <= c1; c++ {
				dst.Tiles[r*dst.Cols+c].Count++
			}
		}
	}
	var total uint32
	for i := range dst.Tiles {
		dst.Tiles[i].Offset = total
		total += dst.Tiles[i].Count
		dst.Tiles[i].Count = 0
	}
	dst.Indices = resize(dst.Indices, int(total))
	for i := range f.Primitives {
		p := &f.Primitives[i]
		c0, r0, c1, r1, ok := dst.tileSpan(f, p)
		if !ok {
			continue
		}
		idx := NewPackedPrimitiveIndex(uint32(i), p.Kind) // #nosec G115 -- bounded by the primitive ceiling
		for r := r0; r <= r1; r++ {
			for c := c0; c <= c1; c++ {
				t := &dst.Tiles[r*dst.Cols+c]
				dst.Indices[t.Offset+t.Count] = idx
				t.Count++
			}
		}
	}
	return dst
}

// tileSpan returns the inclusive tile range covered by p's quad.
func (b *TileBins) tileSpan(f *Frame, p *PackedPrimitive) (c0, r0, c1, r1 int, ok bool) {
	ts := float32(b.TileSize)
	x0 := (p.Quad[0] - f.Origin.X) / ts
	y0 := (p.Quad[1] - f.Origin.Y) / ts
	x1 := (p.Quad[2] - f.Origin.X) / ts
	y1 := (p.Quad[3] - f.Origin.Y) / ts
	if x1 <= 0 || y1 <= 0 || x0 >= float32(b.Cols) || y0 >= float32(b.Rows) {
		return 0, 0, 0, 0, false
	}
	c0 = max(int(math32.Floor(x0)), 0)
	r0 = max(int(math32.Floor(y0)), 0)
	c1 = min(int(math32.Ceil(x1))-1, b.Cols-1)
	r1 = min(int(math32.Ceil(y1))-1, b.Rows-1)
	return c0, r0, c1, r1, c0 <= c1 && r0 <= r1
}
