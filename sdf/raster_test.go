package sdf

import (
	"image"
	"image/color"
	"testing"

	"github.com/tdewolff/test"

	"github.com/gogpu/sdfcanvas"
)

func newCanvas(t *testing.T, w, h float32, opts ...sdfcanvas.Option) *sdfcanvas.Canvas {
	t.Helper()
	c, err := sdfcanvas.New(sdfcanvas.R(0, 0, w, h), 1, opts...)
	test.Error(t, err)
	t.Cleanup(c.Close)
	return c
}

func render(t *testing.T, c *sdfcanvas.Canvas, s Sampler) *image.RGBA {
	t.Helper()
	f := c.Compile(nil)
	w, h := c.PhysicalSize()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r := NewRasterizer(s, 2)
	defer r.Close()
	test.Error(t, r.Render(f, img))
	return img
}

func TestRenderPaintOrder(t *testing.T) {
	c := newCanvas(t, 20, 20)
	c.Recorder().
		Fill(sdfcanvas.R(0, 0, 15, 15), sdfcanvas.Solid(sdfcanvas.Red)).
		Fill(sdfcanvas.R(5, 5, 20, 20), sdfcanvas.Solid(sdfcanvas.Blue))
	img := render(t, c, nil)

	test.T(t, img.RGBAAt(10, 10), color.RGBA{0, 0, 255, 255}, "overlap must show the later fill")
	test.T(t, img.RGBAAt(2, 2), color.RGBA{255, 0, 0, 255})
	test.T(t, img.RGBAAt(18, 2), color.RGBA{}, "uncovered pixel stays transparent")
}

func TestRenderBackgroundAndEdges(t *testing.T) {
	c := newCanvas(t, 40, 40)
	c.SetBackground(sdfcanvas.White)
	// Edges at x = 10.5 and 29.5 fall on pixel centers.
	c.Recorder().Fill(sdfcanvas.R(10.5, 10, 29.5, 30), sdfcanvas.Solid(sdfcanvas.Black))
	img := render(t, c, nil)

	test.T(t, img.RGBAAt(0, 0), color.RGBA{255, 255, 255, 255})
	test.T(t, img.RGBAAt(20, 20), color.RGBA{0, 0, 0, 255})
	// Half coverage of black over white in linear light is 0.5 linear,
	// which encodes to 188 in sRGB.
	edge := img.RGBAAt(10, 20)
	test.T(t, edge.A, uint8(255))
	test.That(t, edge.R >= 187 && edge.R <= 189, "edge pixel", edge)
}

func TestRenderLargeFrameParallel(t *testing.T) {
	c := newCanvas(t, 64, 200)
	rec := c.Recorder()
	for i := range 20 {
		y := float32(i * 10)
		rec.Fill(sdfcanvas.R(0, y, 64, y+10), sdfcanvas.Solid(sdfcanvas.RGB(float32(i)/20, 0, 0)))
	}
	rec.Fill(sdfcanvas.R(30, 0, 34, 200), sdfcanvas.Solid(sdfcanvas.Green))
	img := render(t, c, nil)

	for y := 0; y < 200; y += 7 {
		test.T(t, img.RGBAAt(32, y), color.RGBA{0, 255, 0, 255}, "row", y)
	}
}

func TestRenderImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range 4 {
		src.SetNRGBA(i%2, i/2, color.NRGBA{0, 255, 0, 255})
	}
	textures := NewTextureSet()
	textures.Set(3, src)

	images := sdfcanvas.NewImageTable()
	ref := images.Add(sdfcanvas.ImageInfo{Width: 2, Height: 2, Texture: 3})

	c := newCanvas(t, 12, 12, sdfcanvas.WithImageProvider(images))
	c.Recorder().DrawImage(sdfcanvas.R(2, 2, 10, 10), ref)
	img := render(t, c, textures)

	test.T(t, img.RGBAAt(5, 5), color.RGBA{0, 255, 0, 255})
	test.T(t, img.RGBAAt(0, 0), color.RGBA{})
	test.T(t, img.RGBAAt(11, 5), color.RGBA{})
}

func TestRenderGlyph(t *testing.T) {
	atlas := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range atlas.Pix {
		atlas.Pix[i] = 255
	}
	textures := NewTextureSet()
	textures.Set(7, atlas)

	layout := &sdfcanvas.TextLayout{
		Color: sdfcanvas.Black,
		Glyphs: []sdfcanvas.PositionedGlyph{{
			Atlas:         7,
			Rect:          sdfcanvas.R(0, -8, 8, 0),
			Cell:          sdfcanvas.R(0, 0, 4, 4),
			DistanceRange: 2,
		}},
	}
	c := newCanvas(t, 12, 12)
	c.Recorder().DrawText(layout, sdfcanvas.V2(2, 10))

	test.T(t, render(t, c, textures).RGBAAt(5, 5), color.RGBA{0, 0, 0, 255})
	// Without the atlas the group is skipped.
	test.T(t, render(t, c, NewTextureSet()).RGBAAt(5, 5), color.RGBA{})
}

func TestRenderDestinationTooSmall(t *testing.T) {
	c := newCanvas(t, 10, 10)
	r := NewRasterizer(nil, 1)
	defer r.Close()
	err := r.Render(c.Compile(nil), image.NewRGBA(image.Rect(0, 0, 5, 5)))
	test.That(t, err != nil, "expected size error")
}

func TestTextureSetBilinear(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix[0], g.Pix[1] = 0, 255
	s := NewTextureSet()
	s.Set(1, g)

	mid, ok := s.Sample(1, 0.5, 0.5)
	test.That(t, ok)
	test.Float(t, float64(mid.A), 0.5)

	left, _ := s.Sample(1, 0, 0.5)
	test.Float(t, float64(left.A), 0)
	right, _ := s.Sample(1, 1, 0.5)
	test.Float(t, float64(right.A), 1)

	_, ok = s.Sample(2, 0.5, 0.5)
	test.That(t, !ok)

	w, h, ok := s.Size(1)
	test.That(t, ok && w == 2 && h == 1)
	s.Remove(1)
	_, _, ok = s.Size(1)
	test.That(t, !ok)
}

func TestOver(t *testing.T) {
	half := sdfcanvas.RGBA{R: 0.5, A: 0.5}
	got := Over(half, sdfcanvas.RGBA{B: 1, A: 1})
	test.T(t, got, sdfcanvas.RGBA{R: 0.5, B: 0.5, A: 1})
	test.T(t, Over(sdfcanvas.Transparent, half), half)
}

func TestRenderBorder(t *testing.T) {
	c := newCanvas(t, 40, 40)
	c.Recorder().
		FillBordered(sdfcanvas.R(0, 0, 20, 20), sdfcanvas.CornerRadii{}, sdfcanvas.Solid(sdfcanvas.Red),
			sdfcanvas.Border{Brush: sdfcanvas.Solid(sdfcanvas.Blue), Width: 4}).
		LineBordered(sdfcanvas.V2(0, 30), sdfcanvas.V2(40, 30), sdfcanvas.Solid(sdfcanvas.Red), 10, sdfcanvas.CapButt,
			sdfcanvas.Border{Brush: sdfcanvas.Solid(sdfcanvas.Green), Width: 3})
	img := render(t, c, nil)

	test.T(t, img.RGBAAt(10, 10), color.RGBA{255, 0, 0, 255}, "fill inside the border")
	test.T(t, img.RGBAAt(1, 10), color.RGBA{0, 0, 255, 255}, "border ring")
	test.T(t, img.RGBAAt(10, 1), color.RGBA{0, 0, 255, 255}, "border ring")
	test.T(t, img.RGBAAt(25, 10), color.RGBA{}, "outside")
	test.T(t, img.RGBAAt(20, 30), color.RGBA{255, 0, 0, 255}, "line center")
	test.T(t, img.RGBAAt(20, 26), color.RGBA{0, 255, 0, 255}, "line border")
}

func TestBorderColor(t *testing.T) {
	fill := [4]float32{1, 0, 0, 1}
	border := [4]float32{0, 0, 1, 1}
	test.T(t, BorderColor(fill, border, -10, 2, 1), fill, "deep inside")
	test.T(t, BorderColor(fill, border, -1, 2, 1), border, "in the ring")
	test.T(t, BorderColor(fill, border, -2, 2, 1), [4]float32{0.5, 0, 0.5, 1}, "on the inner edge")
}

func TestRenderImageFlipped(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	src.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 255})
	src.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 255})
	src.SetNRGBA(1, 1, color.NRGBA{255, 255, 255, 255})
	textures := NewTextureSet()
	textures.Set(3, src)

	images := sdfcanvas.NewImageTable()
	ref := images.Add(sdfcanvas.ImageInfo{Width: 2, Height: 2, Texture: 3})

	tests := []struct {
		name string
		flip sdfcanvas.Flip
		want color.RGBA // at the top-left quadrant
	}{
		{"none", 0, color.RGBA{255, 0, 0, 255}},
		{"x", sdfcanvas.FlipX, color.RGBA{0, 255, 0, 255}},
		{"y", sdfcanvas.FlipY, color.RGBA{0, 0, 255, 255}},
		{"xy", sdfcanvas.FlipX | sdfcanvas.FlipY, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCanvas(t, 20, 20, sdfcanvas.WithImageProvider(images))
			c.Recorder().DrawImageFlipped(sdfcanvas.R(0, 0, 20, 20), ref, sdfcanvas.Stretch(), tt.flip)
			test.T(t, render(t, c, textures).RGBAAt(2, 2), tt.want)
		})
	}
}
