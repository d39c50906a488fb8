package text

import (
	"bytes"
	"sync"
	"sync/atomic"

	gtfont "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/sdfcanvas"
)

// Metrics are vertical font metrics at a given size, in logical units.
type Metrics struct {
	// Ascent and Descent are positive distances above and below the baseline.
	Ascent, Descent float32
	// LineHeight is the recommended baseline-to-baseline distance.
	LineHeight float32
}

// Font is a parsed font. The go-text font drives shaping and the sfnt font
// supplies outlines and metrics. A Font is immutable apart from its atlas
// and atlas texture, and is safe for concurrent use.
type Font struct {
	ref     sdfcanvas.FontRef
	name    string
	shaping *gtfont.Font
	outline *sfnt.Font
	atlas   *Atlas
	texture atomic.Uint32
	bufs    sync.Pool
}

// ParseFont parses TrueType or OpenType data.
func ParseFont(data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Parser: "go-text", Err: err}
	}
	outline, err := opentype.Parse(data)
	if err != nil {
		return nil, &ParseError{Parser: "sfnt", Err: err}
	}

	f := &Font{
		shaping: face.Font,
		outline: outline,
		atlas:   newAtlas(outline),
	}
	f.texture.Store(uint32(sdfcanvas.NoTexture))
	f.bufs.New = func() any { return new(sfnt.Buffer) }
	if name, err := outline.Name(f.buffer(), sfnt.NameIDFull); err == nil {
		f.name = name
	}
	return f, nil
}

// Ref returns the reference the font was registered under.
func (f *Font) Ref() sdfcanvas.FontRef { return f.ref }

// Name returns the full font name, or "" if the font has none.
func (f *Font) Name() string { return f.name }

// Atlas returns the font's glyph atlas.
func (f *Font) Atlas() *Atlas { return f.atlas }

// AtlasTexture returns the texture the host uploaded the atlas to, or
// sdfcanvas.NoTexture.
func (f *Font) AtlasTexture() sdfcanvas.TextureRef {
	return sdfcanvas.TextureRef(f.texture.Load())
}

// SetAtlasTexture records the texture holding the atlas pixels.
func (f *Font) SetAtlasTexture(tex sdfcanvas.TextureRef) {
	f.texture.Store(uint32(tex))
}

// UnitsPerEm returns the font design units per em.
func (f *Font) UnitsPerEm() int { return int(f.outline.UnitsPerEm()) }

// Metrics returns the vertical metrics at size pixels per em.
func (f *Font) Metrics(size float32) Metrics {
	buf := f.buffer()
	defer f.bufs.Put(buf)
	m, err := f.outline.Metrics(buf, toFixed(size), xfont.HintingNone)
	if err != nil {
		return Metrics{}
	}
	return Metrics{
		Ascent:     fromFixed(m.Ascent),
		Descent:    fromFixed(m.Descent),
		LineHeight: fromFixed(m.Height),
	}
}

// GlyphIndex returns the glyph for r, or 0 when the font lacks it.
func (f *Font) GlyphIndex(r rune) uint32 {
	buf := f.buffer()
	defer f.bufs.Put(buf)
	gid, err := f.outline.GlyphIndex(buf, r)
	if err != nil {
		return 0
	}
	return uint32(gid)
}

// Advance returns the unshaped horizontal advance of gid at size.
func (f *Font) Advance(gid uint32, size float32) float32 {
	buf := f.buffer()
	defer f.bufs.Put(buf)
	adv, err := f.outline.GlyphAdvance(buf, sfnt.GlyphIndex(gid), toFixed(size), xfont.HintingNone)
	if err != nil {
		return 0
	}
	return fromFixed(adv)
}

func (f *Font) buffer() *sfnt.Buffer {
	return f.bufs.Get().(*sfnt.Buffer)
}

func toFixed(v float32) fixed.Int26_6 { return fixed.Int26_6(v*64 + 0.5) }

func fromFixed(v fixed.Int26_6) float32 { return float32(v) / 64 }
