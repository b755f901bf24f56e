package renderer

import (
	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

// The viewport is a fixed-height world-space rectangle one focal length in
// front of the camera; its width follows the output aspect ratio.
const (
	viewportHeight = 2.0
	focalLength    = 1.0
)

// Camera maps pixel coordinates to world-space rays. The screen basis is
// derived once from the camera vectors; ray generation per pixel is pure
// arithmetic on it.
type Camera struct {
	origin     core.Vec3
	lookDir    core.Vec3
	horizontal core.Vec3 // unit basis, screen right
	vertical   core.Vec3 // unit basis, screen down for a Y-up world
}

// NewCamera derives the screen basis from a camera configuration.
// Requires LookDir not parallel to Up (scene validation enforces this).
func NewCamera(cfg scene.CameraConfig) *Camera {
	lookDir := cfg.LookDir.Normalize()
	horizontal := cfg.Up.Cross(lookDir.Negate()).Normalize()
	vertical := lookDir.Cross(horizontal).Normalize()

	return &Camera{
		origin:     cfg.Origin,
		lookDir:    lookDir,
		horizontal: horizontal,
		vertical:   vertical,
	}
}

// Origin returns the camera position
func (c *Camera) Origin() core.Vec3 { return c.origin }

// PixelRay generates the ray for pixel (x, y) of a width x height output.
// Pixel (0,0) maps to the viewport corner at negative extents of both basis
// vectors, which lands at the image's top-left for a Y-up world. The
// returned direction is not normalized; intersection code normalizes once
// per trace step.
func (c *Camera) PixelRay(x, y, width, height int) core.Ray {
	aspectRatio := float64(width) / float64(height)
	viewportWidth := aspectRatio * viewportHeight

	u := (float64(x)/float64(width))*viewportWidth - viewportWidth/2
	v := (float64(y)/float64(height))*viewportHeight - viewportHeight/2

	direction := c.horizontal.Multiply(u).
		Add(c.vertical.Multiply(v)).
		Add(c.lookDir.Multiply(focalLength))

	return core.NewRay(c.origin, direction)
}
