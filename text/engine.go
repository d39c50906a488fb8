package text

import (
	"fmt"
	"math"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"

	"github.com/gogpu/sdfcanvas"
	"github.com/gogpu/sdfcanvas/internal/cache"
)

// DefaultCacheCapacity is the default number of cached layouts.
const DefaultCacheCapacity = 1024

// Request describes one line of text to lay out.
type Request struct {
	Text  string
	Font  sdfcanvas.FontRef
	Size  float32
	Color sdfcanvas.RGBA
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	cacheCapacity int
}

// WithCacheCapacity sets the number of cached layouts. Values <= 0 use
// DefaultCacheCapacity.
func WithCacheCapacity(n int) EngineOption {
	return func(o *engineOptions) {
		o.cacheCapacity = n
	}
}

type layoutKey struct {
	text    string
	font    sdfcanvas.FontRef
	size    float32
	texture sdfcanvas.TextureRef
}

func hashLayoutKey(k layoutKey) uint64 {
	h := cache.StringHasher(k.text)
	h ^= uint64(k.font)<<32 | uint64(math.Float32bits(k.size))
	h ^= uint64(k.texture) * 0x9e3779b97f4a7c15
	return h
}

// Engine shapes single lines of text into sdfcanvas.TextLayout values.
// Lines are split into bidi runs, shaped with HarfBuzz and placed along one
// baseline. Glyph distance fields come from each font's atlas.
//
// Layouts are cached by text, font and size. A cached layout is returned with
// the requested color applied. Glyph cells are atlas texels, so layouts
// survive atlas growth; changing a font's atlas texture invalidates them.
//
// Engine is safe for concurrent use.
type Engine struct {
	fonts   FontProvider
	layouts *cache.Sharded[layoutKey, *sdfcanvas.TextLayout]
	shapers sync.Pool
	scratch sync.Pool
}

// NewEngine creates an engine resolving fonts through fonts.
func NewEngine(fonts FontProvider, opts ...EngineOption) *Engine {
	o := engineOptions{cacheCapacity: DefaultCacheCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheCapacity <= 0 {
		o.cacheCapacity = DefaultCacheCapacity
	}
	e := &Engine{
		fonts:   fonts,
		layouts: cache.NewSharded[layoutKey, *sdfcanvas.TextLayout](o.cacheCapacity, hashLayoutKey),
	}
	e.shapers.New = func() any { return &shaping.HarfbuzzShaper{} }
	e.scratch.New = func() any { return new(scratch) }
	return e
}

// Layout shapes req into a single-line layout. An empty text yields a layout
// with metrics and no glyphs.
func (e *Engine) Layout(req Request) (*sdfcanvas.TextLayout, error) {
	if !(req.Size > 0) || math32.IsInf(req.Size, 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, req.Size)
	}
	f, err := e.fonts.LookupFont(req.Font)
	if err != nil {
		return nil, err
	}

	key := layoutKey{
		text:    req.Text,
		font:    req.Font,
		size:    req.Size,
		texture: f.AtlasTexture(),
	}
	if l, ok := e.layouts.Get(key); ok {
		return l.WithColor(req.Color), nil
	}

	l, err := e.build(f, req)
	if err != nil {
		return nil, err
	}
	e.layouts.Set(key, l)
	return l.WithColor(req.Color), nil
}

// CacheStats returns layout cache statistics.
func (e *Engine) CacheStats() cache.Stats { return e.layouts.Stats() }

// ClearCache drops all cached layouts.
func (e *Engine) ClearCache() { e.layouts.Clear() }

type shapedGlyph struct {
	gid    uint32
	origin sdfcanvas.Vec2
}

type scratch struct {
	glyphs  []shapedGlyph
	gids    []uint32
	entries []AtlasEntry
}

func (e *Engine) build(f *Font, req Request) (*sdfcanvas.TextLayout, error) {
	m := f.Metrics(req.Size)
	l := &sdfcanvas.TextLayout{
		Text:     req.Text,
		Font:     req.Font,
		FontSize: req.Size,
		Ascent:   m.Ascent,
		Descent:  m.Descent,
	}
	if req.Text == "" {
		return l, nil
	}

	s := e.scratch.Get().(*scratch)
	defer e.scratch.Put(s)
	s.glyphs = s.glyphs[:0]
	s.gids = s.gids[:0]

	runes := []rune(req.Text)
	runs, rtl := splitRuns(req.Text, runes)
	if rtl {
		l.Direction = sdfcanvas.RightToLeft
		for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
			runs[i], runs[j] = runs[j], runs[i]
		}
	}

	face := gtfont.NewFace(f.shaping)
	hb := e.shapers.Get().(*shaping.HarfbuzzShaper)
	defer e.shapers.Put(hb)

	var pen float32
	for _, r := range runs {
		dir := di.DirectionLTR
		if r.rtl {
			dir = di.DirectionRTL
		}
		out := hb.Shape(shaping.Input{
			Text:      runes,
			RunStart:  r.start,
			RunEnd:    r.end,
			Direction: dir,
			Face:      face,
			Size:      toFixed(req.Size),
			Script:    r.script,
			Language:  language.NewLanguage("en"),
		})
		for _, g := range out.Glyphs {
			s.glyphs = append(s.glyphs, shapedGlyph{
				gid:    uint32(g.GlyphID),
				origin: sdfcanvas.V2(pen+fromFixed(g.XOffset), -fromFixed(g.YOffset)),
			})
			s.gids = append(s.gids, uint32(g.GlyphID))
			pen += fromFixed(g.Advance)
		}
	}
	l.Advance = pen

	entries, err := f.atlas.resolve(s.gids, s.entries)
	s.entries = entries
	if err != nil {
		return nil, err
	}

	k := req.Size / BaseSize
	tex := f.AtlasTexture()
	l.Glyphs = make([]sdfcanvas.PositionedGlyph, 0, len(s.glyphs))
	for i, g := range s.glyphs {
		entry := entries[i]
		if entry.Empty {
			continue
		}
		at := g.origin.Add(entry.Offset.Mul(k))
		cell := entry.Cell
		rect := sdfcanvas.Rect{
			Min: at,
			Max: at.Add(sdfcanvas.V2(float32(cell.Dx())*k, float32(cell.Dy())*k)),
		}
		l.Glyphs = append(l.Glyphs, sdfcanvas.PositionedGlyph{
			GlyphID: g.gid,
			Font:    req.Font,
			Atlas:   tex,
			Origin:  g.origin,
			Rect:    rect,
			Cell: sdfcanvas.R(
				float32(cell.Min.X), float32(cell.Min.Y),
				float32(cell.Max.X), float32(cell.Max.Y),
			),
			DistanceRange: Spread * k,
		})
		if len(l.Glyphs) == 1 {
			l.Bounds = rect
		} else {
			l.Bounds = l.Bounds.Union(rect)
		}
	}

	sdfcanvas.Logger().Debug("text: layout built",
		"font", req.Font, "size", req.Size, "runes", len(runes),
		"runs", len(runs), "glyphs", len(l.Glyphs), "advance", l.Advance)
	return l, nil
}
