package core

import (
	"math"
	"testing"
)

func TestColor_Lerp(t *testing.T) {
	white := NewColor(1, 1, 1, 1)
	blue := NewColor(0.5, 0.7, 1, 1)

	tests := []struct {
		name     string
		t        float64
		expected Color
	}{
		{"t=0 returns the first color", 0, white},
		{"t=1 returns the second color", 1, blue},
		{"t=0.5 returns the midpoint", 0.5, NewColor(0.75, 0.85, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := white.Lerp(blue, tt.t)

			const tolerance = 1e-9
			if math.Abs(result.R-tt.expected.R) > tolerance ||
				math.Abs(result.G-tt.expected.G) > tolerance ||
				math.Abs(result.B-tt.expected.B) > tolerance ||
				math.Abs(result.A-tt.expected.A) > tolerance {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestColor_RGBA8(t *testing.T) {
	tests := []struct {
		name       string
		color      Color
		r, g, b, a uint8
	}{
		{"Black", NewColor(0, 0, 0, 0), 0, 0, 0, 0},
		{"White", NewColor(1, 1, 1, 1), 255, 255, 255, 255},
		{"Half gray rounds half up", NewColor(0.5, 0.5, 0.5, 1), 128, 128, 128, 255},
		{"Overbright clamps to 255", NewColor(2.5, 1.1, 1, 1), 255, 255, 255, 255},
		{"Negative clamps to 0", NewColor(-0.5, 0, 0, 1), 0, 0, 0, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.color.RGBA8()
			if r != tt.r || g != tt.g || b != tt.b || a != tt.a {
				t.Errorf("Expected (%d,%d,%d,%d), got (%d,%d,%d,%d)",
					tt.r, tt.g, tt.b, tt.a, r, g, b, a)
			}
		})
	}
}
