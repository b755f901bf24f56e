package core

import "math"

// Color represents an RGBA color with float64 components, nominally in [0,1].
// Colors flow through the tracing loop unmodified; quantization to 8-bit
// happens only at the framebuffer boundary via RGBA8.
type Color struct {
	R, G, B, A float64
}

// NewColor creates a new Color
func NewColor(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Add returns the component-wise sum of two colors
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B, c.A + other.A}
}

// Scale returns the color with all components multiplied by a scalar
func (c Color) Scale(scalar float64) Color {
	return Color{c.R * scalar, c.G * scalar, c.B * scalar, c.A * scalar}
}

// Lerp linearly interpolates between c (t=0) and other (t=1)
func (c Color) Lerp(other Color, t float64) Color {
	return c.Scale(1 - t).Add(other.Scale(t))
}

// Clamp01 returns the color with all components clamped to [0,1]
func (c Color) Clamp01() Color {
	return Color{
		R: max(0, min(1, c.R)),
		G: max(0, min(1, c.G)),
		B: max(0, min(1, c.B)),
		A: max(0, min(1, c.A)),
	}
}

// RGBA8 quantizes the color to four 8-bit channels, rounding half up.
// No gamma correction or tone mapping is applied.
func (c Color) RGBA8() (r, g, b, a uint8) {
	clamped := c.Clamp01()
	return uint8(math.Round(255 * clamped.R)),
		uint8(math.Round(255 * clamped.G)),
		uint8(math.Round(255 * clamped.B)),
		uint8(math.Round(255 * clamped.A))
}
