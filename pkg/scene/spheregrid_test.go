package scene

import (
	"math"
	"testing"
)

func TestSphereGridScene(t *testing.T) {
	s := NewSphereGridScene()

	if s.Name != "sphere-grid" {
		t.Errorf("Expected sphere-grid name, got %q", s.Name)
	}
	if len(s.Spheres) != 12*12+1 {
		t.Fatalf("Expected ground plus 144 grid spheres, got %d", len(s.Spheres))
	}

	ground := s.Spheres[0]
	if ground.Radius != 500 {
		t.Errorf("Expected 500 ground radius, got %g", ground.Radius)
	}

	for i, sphere := range s.Spheres[1:] {
		if sphere.Center.Y != sphere.Radius {
			t.Errorf("Sphere %d floats above the ground: y=%g radius=%g", i, sphere.Center.Y, sphere.Radius)
		}
		for name, channel := range map[string]float64{
			"R": sphere.Color.R, "G": sphere.Color.G, "B": sphere.Color.B,
		} {
			if channel < 0 || channel > 1 {
				t.Errorf("Sphere %d channel %s out of range: %g", i, name, channel)
			}
		}
		if sphere.Color.A != 1 {
			t.Errorf("Sphere %d expected opaque color, got alpha %g", i, sphere.Color.A)
		}
	}

	if err := s.Validate(); err != nil {
		t.Errorf("Scene failed validation: %v", err)
	}
}

func TestOklchToRGBZeroChromaIsGray(t *testing.T) {
	color := oklchToRGB(0.65, 0, 120)

	if math.Abs(color.R-color.G) > 1e-9 || math.Abs(color.G-color.B) > 1e-9 {
		t.Errorf("Expected gray for zero chroma, got (%g, %g, %g)", color.R, color.G, color.B)
	}

	expected := 0.65 * 0.65 * 0.65
	if math.Abs(color.R-expected) > 1e-6 {
		t.Errorf("Expected lightness cubed %g, got %g", expected, color.R)
	}
}

func TestOklchToRGBClampsToGamut(t *testing.T) {
	// Vivid chroma at high lightness pushes channels outside [0, 1].
	color := oklchToRGB(0.95, 0.4, 30)

	for name, channel := range map[string]float64{"R": color.R, "G": color.G, "B": color.B} {
		if channel < 0 || channel > 1 {
			t.Errorf("Channel %s out of gamut: %g", name, channel)
		}
	}
}
