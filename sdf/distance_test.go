package sdf

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/tdewolff/test"

	"github.com/gogpu/sdfcanvas"
)

func near(a, b float32) bool { return math32.Abs(a-b) < 1e-4 }

func TestRoundedBoxZeroRadiiIsBox(t *testing.T) {
	rects := []sdfcanvas.Rect{
		sdfcanvas.R(0, 0, 10, 10),
		sdfcanvas.R(-3, 7, 40, 9),
		sdfcanvas.R(100, 100, 100.5, 300),
	}
	for _, r := range rects {
		for y := float32(-20); y <= 320; y += 7.3 {
			for x := float32(-20); x <= 120; x += 3.1 {
				p := sdfcanvas.V2(x, y)
				box := Box(p, r)
				rounded := RoundedBox(p, r, sdfcanvas.CornerRadii{})
				test.That(t, box == rounded, "at", p, "box", box, "rounded", rounded)

				// Max of signed per-axis distances, where it applies.
				axis := math32.Max(math32.Max(r.Min.X-x, x-r.Max.X), math32.Max(r.Min.Y-y, y-r.Max.Y))
				if axis <= 0 {
					test.That(t, near(box, axis), "inside", p, box, axis)
				}
			}
		}
	}
}

func TestRoundedBoxBoundaryAndCenter(t *testing.T) {
	r := sdfcanvas.R(10, 20, 50, 40)
	radii := sdfcanvas.CornerRadii{4, 6, 8, 2}
	inv := 1 / math32.Sqrt(2)

	boundary := []sdfcanvas.Vec2{
		sdfcanvas.V2(30, 20), // top edge
		sdfcanvas.V2(30, 40), // bottom edge
		sdfcanvas.V2(10, 30), // left edge
		sdfcanvas.V2(50, 30), // right edge
		sdfcanvas.V2(14-4*inv, 24-4*inv), // top-left arc
		sdfcanvas.V2(44+6*inv, 26-6*inv), // top-right arc
		sdfcanvas.V2(42+8*inv, 32+8*inv), // bottom-right arc
		sdfcanvas.V2(12-2*inv, 38+2*inv), // bottom-left arc
	}
	for _, p := range boundary {
		d := RoundedBox(p, r, radii)
		test.That(t, near(d, 0), "boundary point", p, "distance", d)
	}
	test.Float(t, float64(RoundedBox(r.Center(), r, radii)), -10)
	test.Float(t, float64(Box(r.Center(), r)), -10)

	// The rounded corner pulls the boundary inward.
	test.That(t, RoundedBox(sdfcanvas.V2(10, 20), r, radii) > 0)
	test.Float(t, float64(Box(sdfcanvas.V2(10, 20), r)), 0)
}

func TestSegmentLineScenario(t *testing.T) {
	c, err := sdfcanvas.New(sdfcanvas.R(-400, -400, 100, 100), 1)
	test.Error(t, err)
	defer c.Close()
	c.Recorder().Line(sdfcanvas.V2(-200.5, 0.5), sdfcanvas.V2(0.5, 0.5), sdfcanvas.Solid(sdfcanvas.Black), 1)
	f := c.Compile(nil)
	test.T(t, len(f.Primitives), 1)

	prim := &f.Primitives[0]
	test.T(t, prim.Kind, sdfcanvas.PrimLine)
	test.Float(t, float64(Distance(prim, sdfcanvas.V2(-100, 0.5), nil)), -0.5)
	test.Float(t, float64(Distance(prim, sdfcanvas.V2(-100, 10.5), nil)), 9.5)
	test.Float(t, float64(Distance(prim, sdfcanvas.V2(-100, -9.5), nil)), 9.5)
}

func TestSegmentCaps(t *testing.T) {
	a, b := sdfcanvas.V2(0, 0), sdfcanvas.V2(10, 0)
	tests := []struct {
		name string
		end  sdfcanvas.Vec2
		cap  sdfcanvas.CapStyle
		p    sdfcanvas.Vec2
		want float32
	}{
		{"butt past end", b, sdfcanvas.CapButt, sdfcanvas.V2(12, 0), 2},
		{"butt end corner", b, sdfcanvas.CapButt, sdfcanvas.V2(13, 6), 5},
		{"round past end", b, sdfcanvas.CapRound, sdfcanvas.V2(12, 0), 0},
		{"round diagonal", b, sdfcanvas.CapRound, sdfcanvas.V2(13, 4), 3},
		{"square past end", b, sdfcanvas.CapSquare, sdfcanvas.V2(12, 0), 0},
		{"square corner", b, sdfcanvas.CapSquare, sdfcanvas.V2(15, 6), 5},
		{"inside", b, sdfcanvas.CapButt, sdfcanvas.V2(5, 1), -1},
		{"round dot", a, sdfcanvas.CapRound, sdfcanvas.V2(3, 4), 3},
		{"square dot", a, sdfcanvas.CapSquare, sdfcanvas.V2(0, 0), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Segment(tt.p, a, tt.end, 4, tt.cap)
			test.That(t, near(d, tt.want), "Segment() =", d, "want", tt.want)
		})
	}

	test.That(t, math32.IsInf(Segment(a, a, a, 4, sdfcanvas.CapButt), 1), "zero-length butt must cover nothing")
}

func TestStroke(t *testing.T) {
	r := sdfcanvas.R(0, 0, 20, 20)
	test.Float(t, float64(Stroke(Box(sdfcanvas.V2(0, 10), r), 2)), -1)
	test.Float(t, float64(Stroke(Box(sdfcanvas.V2(10, 10), r), 2)), 9)
	test.Float(t, float64(Stroke(Box(sdfcanvas.V2(-3, 10), r), 2)), 2)
}

func TestCoverage(t *testing.T) {
	for _, fw := range []float32{0.25, 1, 3} {
		prev := float32(1)
		for d := float32(-5); d <= 5; d += 0.01 {
			c := Coverage(d, fw)
			test.That(t, c >= 0 && c <= 1, "coverage out of range", d, fw, c)
			test.That(t, c <= prev, "coverage increased", d, fw, c, prev)
			prev = c
		}
	}
	test.Float(t, float64(Coverage(0, 1)), 0.5)
	test.Float(t, float64(Coverage(-0.5, 1)), 1)
	test.Float(t, float64(Coverage(0.5, 1)), 0)
	test.Float(t, float64(Coverage(math32.NaN(), 1)), 0)
	test.Float(t, float64(Coverage(math32.Inf(1), 1)), 0)
	test.Float(t, float64(Coverage(math32.Inf(-1), 1)), 1)
}

func TestGlyphDistance(t *testing.T) {
	test.Float(t, float64(GlyphDistance(0.5, 4)), 0)
	test.Float(t, float64(GlyphDistance(1, 4)), -4)
	test.Float(t, float64(GlyphDistance(0, 4)), 4)
}

func TestImageMask(t *testing.T) {
	r := sdfcanvas.R(0, 0, 4, 4)
	test.Float(t, float64(ImageMask(sdfcanvas.V2(2, 2), r)), 0)
	test.Float(t, float64(ImageMask(sdfcanvas.V2(4, 4), r)), 0)
	test.That(t, math32.IsInf(ImageMask(sdfcanvas.V2(5, 2), r), 1))
}
