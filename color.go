package sdfcanvas

import (
	"image/color"

	"github.com/chewxy/math32"
)

// RGBA is a straight-alpha color in the sRGB color space.
// Each component is in the range [0, 1].
//
// Colors are specified in sRGB because that is what designers and hex codes
// use. The compiler converts them to linear, premultiplied values before
// packing, and all blending happens in linear light.
type RGBA struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = RGBA{}
	Black       = RGBA{0, 0, 0, 1}
	White       = RGBA{1, 1, 1, 1}
	Red         = RGBA{1, 0, 0, 1}
	Green       = RGBA{0, 1, 0, 1}
	Blue        = RGBA{0, 0, 1, 1}
	Pink        = RGBA{1, 192.0 / 255, 203.0 / 255, 1}
)

// RGB creates an opaque color from sRGB components.
func RGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// RGBA8 creates a color from 8-bit sRGB components.
func RGBA8(r, g, b, a uint8) RGBA {
	return RGBA{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with or without '#'.
// Malformed digits parse as zero.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255

	switch len(hex) {
	case 3, 4:
		r = parseHex(hex[0:1]) * 17
		g = parseHex(hex[1:2]) * 17
		b = parseHex(hex[2:3]) * 17
		if len(hex) == 4 {
			a = parseHex(hex[3:4]) * 17
		}
	case 6, 8:
		r = parseHex(hex[0:2])
		g = parseHex(hex[2:4])
		b = parseHex(hex[4:6])
		if len(hex) == 8 {
			a = parseHex(hex[6:8])
		}
	default:
		return Black
	}

	return RGBA8(uint8(r), uint8(g), uint8(b), uint8(a)) // #nosec G115 -- parsed values are <= 255
}

func parseHex(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		v *= 16
		switch {
		case '0' <= c && c <= '9':
			v += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			v += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			v += uint32(c - 'A' + 10)
		}
	}
	return v
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA8(n.R, n.G, n.B, n.A)
}

// Color converts c to a color.NRGBA.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: unitToByte(c.R),
		G: unitToByte(c.G),
		B: unitToByte(c.B),
		A: unitToByte(c.A),
	}
}

// IsFinite reports whether every component is finite.
func (c RGBA) IsFinite() bool {
	return isFinite(c.R) && isFinite(c.G) && isFinite(c.B) && isFinite(c.A)
}

// WithAlpha returns c with its alpha replaced.
func (c RGBA) WithAlpha(a float32) RGBA {
	c.A = a
	return c
}

// Lerp performs linear interpolation between two colors.
func (c RGBA) Lerp(other RGBA, t float32) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Linear converts the color channels from sRGB to linear light.
// Alpha is left untouched.
func (c RGBA) Linear() RGBA {
	return RGBA{R: SRGBToLinear(c.R), G: SRGBToLinear(c.G), B: SRGBToLinear(c.B), A: c.A}
}

// SRGB converts the color channels from linear light back to sRGB.
func (c RGBA) SRGB() RGBA {
	return RGBA{R: LinearToSRGB(c.R), G: LinearToSRGB(c.G), B: LinearToSRGB(c.B), A: c.A}
}

// Premultiply returns a premultiplied color.
func (c RGBA) Premultiply() RGBA {
	return RGBA{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Unpremultiply returns an unpremultiplied color.
func (c RGBA) Unpremultiply() RGBA {
	if c.A == 0 {
		return RGBA{}
	}
	return RGBA{R: c.R / c.A, G: c.G / c.A, B: c.B / c.A, A: c.A}
}

// LinearPremul is the form colors take inside packed primitives.
func (c RGBA) LinearPremul() RGBA {
	return c.Linear().Premultiply()
}

// SRGBToLinear applies the inverse sRGB transfer function to one channel.
func SRGBToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math32.Pow((v+0.055)/1.055, 2.4)
}

// LinearToSRGB applies the sRGB transfer function to one channel.
func LinearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math32.Pow(v, 1/2.4) - 0.055
}

func unitToByte(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
