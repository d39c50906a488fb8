package sdf

import (
	"image"
	"image/color"
	"sync"

	"github.com/chewxy/math32"

	"github.com/gogpu/sdfcanvas"
)

// Sampler reads textures referenced by packed primitives. u and v are
// normalized texture coordinates. The returned texel is linear premultiplied
// for color images; for distance maps every channel holds the raw value.
// ok is false when the texture is unknown.
//
// Size reports the texture dimensions in texels. Glyph primitives carry
// their atlas cell in texels and are normalized with it.
type Sampler interface {
	Sample(ref sdfcanvas.TextureRef, u, v float32) (texel sdfcanvas.RGBA, ok bool)
	Size(ref sdfcanvas.TextureRef) (w, h int, ok bool)
}

type texture struct {
	w, h int
	px   []sdfcanvas.RGBA
}

// TextureSet is an in-memory Sampler backed by image.Image values, sampled
// bilinearly with clamp-to-edge addressing.
//
// *image.Gray and *image.Alpha images are treated as data (glyph distance
// maps, masks): values are passed through without color conversion. Other
// images are decoded as sRGB and stored linear premultiplied.
//
// TextureSet is safe for concurrent use.
type TextureSet struct {
	mu  sync.RWMutex
	tex map[sdfcanvas.TextureRef]*texture
}

// NewTextureSet creates an empty set.
func NewTextureSet() *TextureSet {
	return &TextureSet{tex: make(map[sdfcanvas.TextureRef]*texture)}
}

// Set converts img and stores it under ref, replacing any previous texture.
// A glyph atlas that grew is re-Set the same way.
func (s *TextureSet) Set(ref sdfcanvas.TextureRef, img image.Image) {
	t := convert(img)
	s.mu.Lock()
	s.tex[ref] = t
	s.mu.Unlock()
}

// Remove forgets ref.
func (s *TextureSet) Remove(ref sdfcanvas.TextureRef) {
	s.mu.Lock()
	delete(s.tex, ref)
	s.mu.Unlock()
}

// Size returns the texture dimensions, or false if ref is unknown.
func (s *TextureSet) Size(ref sdfcanvas.TextureRef) (w, h int, ok bool) {
	s.mu.RLock()
	t := s.tex[ref]
	s.mu.RUnlock()
	if t == nil {
		return 0, 0, false
	}
	return t.w, t.h, true
}

// Sample implements Sampler.
func (s *TextureSet) Sample(ref sdfcanvas.TextureRef, u, v float32) (sdfcanvas.RGBA, bool) {
	s.mu.RLock()
	t := s.tex[ref]
	s.mu.RUnlock()
	if t == nil || t.w == 0 || t.h == 0 {
		return sdfcanvas.RGBA{}, false
	}
	return t.bilinear(u, v), true
}

func (t *texture) at(x, y int) sdfcanvas.RGBA {
	x = min(max(x, 0), t.w-1)
	y = min(max(y, 0), t.h-1)
	return t.px[y*t.w+x]
}

// bilinear samples at texel centers, like a linear-filtered GPU sampler.
func (t *texture) bilinear(u, v float32) sdfcanvas.RGBA {
	x := u*float32(t.w) - 0.5
	y := v*float32(t.h) - 0.5
	x0f, y0f := math32.Floor(x), math32.Floor(y)
	fx, fy := x-x0f, y-y0f
	x0, y0 := int(x0f), int(y0f)

	top := t.at(x0, y0).Lerp(t.at(x0+1, y0), fx)
	bottom := t.at(x0, y0+1).Lerp(t.at(x0+1, y0+1), fx)
	return top.Lerp(bottom, fy)
}

func convert(img image.Image) *texture {
	b := img.Bounds()
	t := &texture{w: b.Dx(), h: b.Dy(), px: make([]sdfcanvas.RGBA, b.Dx()*b.Dy())}
	switch src := img.(type) {
	case *image.Gray:
		for y := range t.h {
			for x := range t.w {
				v := float32(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y) / 255
				t.px[y*t.w+x] = sdfcanvas.RGBA{R: v, G: v, B: v, A: v}
			}
		}
	case *image.Alpha:
		for y := range t.h {
			for x := range t.w {
				v := float32(src.AlphaAt(b.Min.X+x, b.Min.Y+y).A) / 255
				t.px[y*t.w+x] = sdfcanvas.RGBA{R: v, G: v, B: v, A: v}
			}
		}
	default:
		for y := range t.h {
			for x := range t.w {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				t.px[y*t.w+x] = sdfcanvas.RGBA8(c.R, c.G, c.B, c.A).LinearPremul()
			}
		}
	}
	return t
}
