package text

import (
	"fmt"
	"image"
	"sync"

	"github.com/chewxy/math32"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/sdfcanvas"
)

// Atlas geometry.
const (
	// BaseSize is the pixels-per-em size glyph outlines are rasterized at.
	BaseSize = 48

	// Spread is the distance, in atlas pixels, covered by the field on each
	// side of a glyph edge. Values saturate beyond it.
	Spread = 6

	// AtlasWidth is the fixed atlas width. The height starts at
	// initialAtlasHeight and doubles up to MaxAtlasHeight.
	AtlasWidth = 512

	// MaxAtlasHeight bounds atlas growth.
	MaxAtlasHeight = 4096

	initialAtlasHeight = 256
	cellPadding        = 1
)

// AtlasEntry locates one glyph's distance field in the atlas.
type AtlasEntry struct {
	// Cell is the glyph's region in atlas pixels.
	Cell image.Rectangle
	// Offset is the cell's top-left corner relative to the glyph origin at
	// BaseSize, y down.
	Offset sdfcanvas.Vec2
	// Empty is set for glyphs without an outline, such as spaces.
	Empty bool
}

// Atlas is a single-channel signed distance field atlas for one font.
// Glyphs are rasterized on first use at BaseSize and packed with a shelf
// packer. A texel value of 128 lies on the outline; brighter is inside.
//
// Atlas is safe for concurrent use.
type Atlas struct {
	mu      sync.Mutex
	font    *sfnt.Font
	buf     sfnt.Buffer
	img     *image.Gray
	packer  *shelfPacker
	entries map[uint32]AtlasEntry

	version    uint64
	generation uint64

	// scratch
	raster *vector.Rasterizer
	mask   *image.Alpha
}

func newAtlas(f *sfnt.Font) *Atlas {
	return &Atlas{
		font:    f,
		img:     image.NewGray(image.Rect(0, 0, AtlasWidth, initialAtlasHeight)),
		packer:  newShelfPacker(AtlasWidth, initialAtlasHeight, cellPadding),
		entries: make(map[uint32]AtlasEntry),
	}
}

// Size returns the current atlas dimensions.
func (a *Atlas) Size() (w, h int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.img.Bounds()
	return b.Dx(), b.Dy()
}

// Version increments whenever atlas pixels change. Hosts re-upload the
// texture when it differs from the version they last uploaded.
func (a *Atlas) Version() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.version
}

// Generation increments when the atlas grows. Hosts reallocate the atlas
// texture when it differs from the generation they last uploaded. Glyph
// cells are in texels and stay valid across growth.
func (a *Atlas) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

// Len returns the number of glyphs in the atlas.
func (a *Atlas) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Image returns a copy of the atlas pixels.
func (a *Atlas) Image() *image.Gray {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := image.NewGray(a.img.Rect)
	copy(cp.Pix, a.img.Pix)
	return cp
}

// Lookup returns the entry for gid if it has been rasterized.
func (a *Atlas) Lookup(gid uint32) (AtlasEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[gid]
	return e, ok
}

// resolve rasterizes any missing glyphs and returns their entries. Cells
// keep their texel position when the atlas grows.
func (a *Atlas) resolve(gids []uint32, dst []AtlasEntry) ([]AtlasEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	dst = dst[:0]
	for _, gid := range gids {
		e, ok := a.entries[gid]
		if !ok {
			var err error
			e, err = a.add(gid)
			if err != nil {
				return dst, err
			}
		}
		dst = append(dst, e)
	}
	return dst, nil
}

// add rasterizes gid into the atlas. Called with a.mu held.
func (a *Atlas) add(gid uint32) (AtlasEntry, error) {
	ppem := fixed.I(BaseSize)
	bounds, _, err := a.font.GlyphBounds(&a.buf, sfnt.GlyphIndex(gid), ppem, xfont.HintingNone)
	if err != nil {
		return AtlasEntry{}, fmt.Errorf("text: glyph %d bounds: %w", gid, err)
	}
	if bounds.Empty() {
		e := AtlasEntry{Empty: true}
		a.entries[gid] = e
		return e, nil
	}

	x0 := bounds.Min.X.Floor() - Spread
	y0 := bounds.Min.Y.Floor() - Spread
	w := bounds.Max.X.Ceil() + Spread - x0
	h := bounds.Max.Y.Ceil() + Spread - y0

	x, y, ok := a.packer.allocate(w, h)
	for !ok {
		if err := a.grow(); err != nil {
			return AtlasEntry{}, err
		}
		x, y, ok = a.packer.allocate(w, h)
	}

	mask, err := a.rasterize(gid, ppem, float32(x0), float32(y0), w, h)
	if err != nil {
		return AtlasEntry{}, err
	}
	cell := image.Rect(x, y, x+w, y+h)
	distanceField(a.img.SubImage(cell).(*image.Gray), mask)

	e := AtlasEntry{Cell: cell, Offset: sdfcanvas.V2(float32(x0), float32(y0))}
	a.entries[gid] = e
	a.version++
	return e, nil
}

// grow doubles the atlas height. Called with a.mu held.
func (a *Atlas) grow() error {
	h := a.img.Rect.Dy()
	if h >= MaxAtlasHeight {
		return fmt.Errorf("text: glyph atlas full at %dx%d", AtlasWidth, h)
	}
	nh := min(h*2, MaxAtlasHeight)
	img := image.NewGray(image.Rect(0, 0, AtlasWidth, nh))
	copy(img.Pix, a.img.Pix)
	a.img = img
	a.packer.grow(nh)
	a.generation++
	a.version++
	sdfcanvas.Logger().Debug("text: glyph atlas grown",
		"width", AtlasWidth, "height", nh, "glyphs", len(a.entries),
		"utilization", a.packer.utilization())
	return nil
}

// rasterize fills the glyph outline into a w×h coverage mask whose origin is
// (x0, y0) in glyph space.
func (a *Atlas) rasterize(gid uint32, ppem fixed.Int26_6, x0, y0 float32, w, h int) (*image.Alpha, error) {
	segs, err := a.font.LoadGlyph(&a.buf, sfnt.GlyphIndex(gid), ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("text: glyph %d outline: %w", gid, err)
	}
	if a.raster == nil {
		a.raster = vector.NewRasterizer(w, h)
	} else {
		a.raster.Reset(w, h)
	}
	if a.mask == nil || cap(a.mask.Pix) < w*h {
		a.mask = image.NewAlpha(image.Rect(0, 0, w, h))
	} else {
		a.mask.Pix = a.mask.Pix[:w*h]
		clear(a.mask.Pix)
		a.mask.Stride = w
		a.mask.Rect = image.Rect(0, 0, w, h)
	}

	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 - x0, float32(p.Y)/64 - y0
	}
	z := a.raster
	open := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(pt(seg.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			z.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if open {
		z.ClosePath()
	}
	z.Draw(a.mask, a.mask.Bounds(), image.Opaque, image.Point{})
	return a.mask, nil
}

// distanceField writes the signed distance field of mask into dst, which has
// the same size. Each texel searches a window of Spread+1 texels for the
// nearest texel on the other side of the outline; distances between texel
// centers are exact within the window and saturate outside it.
func distanceField(dst *image.Gray, mask *image.Alpha) {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	inside := func(x, y int) bool { return mask.Pix[y*mask.Stride+x] >= 128 }

	const window = Spread + 1
	for y := range h {
		for x := range w {
			in := inside(x, y)
			best := float32(window * window * 2)
			for dy := -window; dy <= window; dy++ {
				sy := y + dy
				if sy < 0 || sy >= h {
					// Texels past the border are outside.
					if in {
						best = min(best, float32(dy*dy))
					}
					continue
				}
				for dx := -window; dx <= window; dx++ {
					sx := x + dx
					var other bool
					if sx < 0 || sx >= w {
						other = in
					} else {
						other = inside(sx, sy) != in
					}
					if other {
						best = min(best, float32(dx*dx+dy*dy))
					}
				}
			}
			d := math32.Sqrt(best) - 0.5
			if in {
				d = -d
			}
			v := 0.5 - d/(2*Spread)
			dst.Pix[y*dst.Stride+x] = uint8(math32.Round(min(max(v, 0), 1) * 255))
		}
	}
}
