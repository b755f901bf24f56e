package scene

import (
	"math"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/geometry"
)

// oklchToRGB converts OKLCH color values to RGB.
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Color {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	r = math.Max(0, math.Min(1, r))
	g = math.Max(0, math.Min(1, g))
	blue = math.Max(0, math.Min(1, blue))

	return core.NewColor(r, g, blue, 1)
}

// NewSphereGridScene creates a grid of colored spheres on a ground sphere.
// Hue varies across one grid axis and chroma across the other, which makes
// camera motion easy to follow in every direction.
func NewSphereGridScene() *Scene {
	s := &Scene{
		Name: "sphere-grid",
		Camera: CameraConfig{
			Origin:  core.NewVec3(4.5, 6, 18),
			LookDir: core.NewVec3(0, -5.2, -13.5),
			Up:      core.NewVec3(0, 1, 0),
		},
		Pivot: core.NewVec3(4.5, 0.8, 4.5),
	}

	// Ground sphere large enough to read as a plane under the grid.
	s.Spheres = append(s.Spheres,
		geometry.NewSphere(core.NewVec3(4.5, -500, 4.5), 500, core.NewColor(0.5, 0.5, 0.5, 1)))

	gridSize := 12

	// Scale spacing and radius so the grid fills roughly the same visual
	// area regardless of sphere count.
	targetArea := 9.0
	spacing := targetArea / float64(gridSize-1)
	sphereRadius := math.Max(0.02, math.Min(0.35, spacing*0.35))

	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5
			y := sphereRadius // sits on the ground

			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)

			s.Spheres = append(s.Spheres, geometry.NewSphere(
				core.NewVec3(x, y, z),
				sphereRadius,
				oklchToRGB(lightness, chroma, hue),
			))
		}
	}

	return s
}
