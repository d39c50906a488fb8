package sdfcanvas

import (
	"image/color"
	"testing"

	"github.com/chewxy/math32"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#F00", Red},
		{"0f0", Green},
		{"#0000FF", Blue},
		{"#ffffff80", RGBA{1, 1, 1, 128.0 / 255}},
		{"#fff8", RGBA{1, 1, 1, 136.0 / 255}},
		{"", Black},
		{"#12345", Black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Hex(tt.in); got != tt.want {
				t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorRoundTrip(t *testing.T) {
	c := RGBA8(10, 20, 30, 40)
	got := FromColor(c.Color())
	if got != c {
		t.Errorf("FromColor(Color()) = %v, want %v", got, c)
	}
	n := c.Color().(color.NRGBA)
	if n != (color.NRGBA{10, 20, 30, 40}) {
		t.Errorf("Color() = %v, want {10 20 30 40}", n)
	}
}

func TestSRGBTransfer(t *testing.T) {
	tests := []struct {
		srgb, linear float32
	}{
		{0, 0},
		{1, 1},
		{0.5, 0.21404},
		{0.04045, 0.0031308},
	}
	for _, tt := range tests {
		if got := SRGBToLinear(tt.srgb); math32.Abs(got-tt.linear) > 1e-4 {
			t.Errorf("SRGBToLinear(%v) = %v, want %v", tt.srgb, got, tt.linear)
		}
		if got := LinearToSRGB(tt.linear); math32.Abs(got-tt.srgb) > 1e-4 {
			t.Errorf("LinearToSRGB(%v) = %v, want %v", tt.linear, got, tt.srgb)
		}
	}
}

func TestLinearPremul(t *testing.T) {
	c := RGBA{1, 0.5, 0, 0.5}
	got := c.LinearPremul()
	want := RGBA{0.5, SRGBToLinear(0.5) * 0.5, 0, 0.5}
	if got != want {
		t.Errorf("LinearPremul() = %v, want %v", got, want)
	}
	if back := got.Unpremultiply().SRGB(); math32.Abs(back.G-0.5) > 1e-4 {
		t.Errorf("round trip G = %v, want 0.5", back.G)
	}
	if got := (RGBA{1, 1, 1, 0}).Unpremultiply(); got != Transparent {
		t.Errorf("Unpremultiply() of zero alpha = %v, want transparent", got)
	}
}

func TestColorLerp(t *testing.T) {
	got := Black.Lerp(White, 0.25)
	if got != (RGBA{0.25, 0.25, 0.25, 1}) {
		t.Errorf("Lerp(0.25) = %v", got)
	}
	if got := Red.WithAlpha(0.3); got.A != 0.3 || got.R != 1 {
		t.Errorf("WithAlpha(0.3) = %v", got)
	}
}
