package sdf

import (
	"fmt"
	"image"
	"sync"

	"github.com/chewxy/math32"

	"github.com/gogpu/sdfcanvas"
	"github.com/gogpu/sdfcanvas/internal/parallel"
)

// bandRows is the height of the row bands rendered in parallel.
const bandRows = 16

// Rasterizer renders compiled frames on the CPU. It evaluates every
// primitive's SDF at pixel centers with fw = 1 and composites source-over in
// linear premultiplied color, which makes it the reference the GPU pipeline
// is compared against.
//
// Row bands are rendered in parallel; inside a band primitives are applied
// in paint order. A Rasterizer may be used from several goroutines, but
// Close must not race with Render.
type Rasterizer struct {
	textures Sampler
	workers  int

	poolOnce sync.Once
	pool     *parallel.WorkerPool
}

// NewRasterizer creates a rasterizer reading textures through s, which may
// be nil for frames without glyphs or images. workers <= 0 uses GOMAXPROCS.
func NewRasterizer(s Sampler, workers int) *Rasterizer {
	return &Rasterizer{textures: s, workers: workers}
}

// Close stops the worker pool.
func (r *Rasterizer) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Render draws f into dst. dst must be at least f.Width×f.Height; pixel
// (x, y) of the frame lands on dst at Bounds().Min + (x, y). Pixels outside
// the frame are left untouched.
func (r *Rasterizer) Render(f *sdfcanvas.Frame, dst *image.RGBA) error {
	b := dst.Bounds()
	if b.Dx() < f.Width || b.Dy() < f.Height {
		return fmt.Errorf("sdf: destination %dx%d smaller than frame %dx%d", b.Dx(), b.Dy(), f.Width, f.Height)
	}
	if f.Width == 0 || f.Height == 0 {
		return nil
	}

	skip := r.missingTextures(f)
	clearColor := f.ClearColor()

	render := func(lo, hi int) {
		acc := make([]sdfcanvas.RGBA, f.Width*(hi-lo))
		for i := range acc {
			acc[i] = clearColor
		}
		y0 := f.Origin.Y + float32(lo)
		y1 := f.Origin.Y + float32(hi)
		for gi := range f.Groups {
			if skip[gi] {
				continue
			}
			g := f.Groups[gi]
			for pi := g.Start; pi < g.End; pi++ {
				r.apply(f, &f.Primitives[pi], acc, lo, y0, y1)
			}
		}
		for y := lo; y < hi; y++ {
			row := acc[(y-lo)*f.Width : (y-lo+1)*f.Width]
			off := dst.PixOffset(b.Min.X, b.Min.Y+y)
			for x, c := range row {
				storeSRGB(dst.Pix[off+4*x:off+4*x+4], c)
			}
		}
	}

	if f.Height <= bandRows {
		render(0, f.Height)
		return nil
	}
	r.workerPool().ForRange(f.Height, bandRows, render)
	return nil
}

// apply composites one primitive over the band [y0, y1) in frame space.
func (r *Rasterizer) apply(f *sdfcanvas.Frame, p *sdfcanvas.PackedPrimitive, acc []sdfcanvas.RGBA, lo int, y0, y1 float32) {
	q := p.QuadRect()
	if q.Max.Y <= y0 || q.Min.Y >= y1 {
		return
	}
	// Pixel centers inside the quad.
	px0 := max(int(math32.Ceil(q.Min.X-f.Origin.X-0.5)), 0)
	px1 := min(int(math32.Floor(q.Max.X-f.Origin.X-0.5)), f.Width-1)
	py0 := max(int(math32.Ceil(q.Min.Y-f.Origin.Y-0.5)), lo)
	py1 := min(int(math32.Floor(q.Max.Y-f.Origin.Y-0.5)), lo+int(y1-y0)-1)
	for y := py0; y <= py1; y++ {
		cy := f.Origin.Y + float32(y) + 0.5
		row := acc[(y-lo)*f.Width:]
		for x := px0; x <= px1; x++ {
			src := Evaluate(p, sdfcanvas.V2(f.Origin.X+float32(x)+0.5, cy), r.textures)
			if src.A == 0 {
				continue
			}
			row[x] = Over(src, row[x])
		}
	}
}

// Over composites premultiplied src over dst.
func Over(src, dst sdfcanvas.RGBA) sdfcanvas.RGBA {
	k := 1 - src.A
	return sdfcanvas.RGBA{
		R: src.R + dst.R*k,
		G: src.G + dst.G*k,
		B: src.B + dst.B*k,
		A: src.A + dst.A*k,
	}
}

// missingTextures flags textured groups whose texture the sampler cannot
// read, logging each once per render.
func (r *Rasterizer) missingTextures(f *sdfcanvas.Frame) []bool {
	skip := make([]bool, len(f.Groups))
	for i, g := range f.Groups {
		if !g.Kind.IsTextured() {
			continue
		}
		ok := false
		if r.textures != nil {
			_, ok = r.textures.Sample(g.Texture, 0, 0)
		}
		if !ok {
			skip[i] = true
			sdfcanvas.Logger().Warn("sdf: texture not available, group skipped",
				"group", i, "kind", g.Kind, "texture", g.Texture)
		}
	}
	return skip
}

func (r *Rasterizer) workerPool() *parallel.WorkerPool {
	r.poolOnce.Do(func() {
		r.pool = parallel.NewWorkerPool(r.workers)
	})
	return r.pool
}

// storeSRGB writes a linear premultiplied color as premultiplied sRGB bytes,
// the layout image.RGBA uses.
func storeSRGB(px []byte, c sdfcanvas.RGBA) {
	if c.A <= 0 {
		px[0], px[1], px[2], px[3] = 0, 0, 0, 0
		return
	}
	s := c.Unpremultiply().SRGB()
	a := math32.Min(c.A, 1)
	px[0] = unit8(s.R * a)
	px[1] = unit8(s.G * a)
	px[2] = unit8(s.B * a)
	px[3] = unit8(a)
}

func unit8(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
