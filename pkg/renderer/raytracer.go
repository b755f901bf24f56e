package renderer

import (
	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/geometry"
)

// DefaultMaxBounces is the reflection budget per pixel
const DefaultMaxBounces = 10

var (
	skyBottomColor = core.NewColor(1, 1, 1, 1)       // white at the horizon-down half
	skyTopColor    = core.NewColor(0.5, 0.7, 1.0, 1) // light blue overhead
)

// SkyColor returns the background gradient for a ray direction: a vertical
// blend from white to light blue driven by the unit direction's Y component.
// The direction need not be normalized.
func SkyColor(dir core.Vec3) core.Color {
	unit := dir.Normalize()
	a := 0.5 * (unit.Y + 1.0)
	return skyBottomColor.Lerp(skyTopColor, a)
}

// Raytracer evaluates the per-pixel kernel for one frame: fixed sphere
// list, fixed camera, fixed bounce budget. It holds no mutable state, so a
// single instance is shared by every worker within a pass.
type Raytracer struct {
	camera     *Camera
	spheres    []geometry.Sphere
	maxBounces int
}

// NewRaytracer creates a raytracer for one frame's camera and scene
func NewRaytracer(camera *Camera, spheres []geometry.Sphere, maxBounces int) *Raytracer {
	if maxBounces <= 0 {
		maxBounces = DefaultMaxBounces
	}
	return &Raytracer{
		camera:     camera,
		spheres:    spheres,
		maxBounces: maxBounces,
	}
}

// TracePixel runs the kernel for one pixel and writes the result into the
// framebuffer. Coordinates outside the buffer are rejected before any work:
// the dispatch grid is tile-aligned and overshoots the buffer on edge tiles.
// Returns the number of reflections taken and whether a pixel was written.
func (rt *Raytracer) TracePixel(x, y int, fb *Framebuffer) (int, bool) {
	if !fb.Contains(x, y) {
		return 0, false
	}

	ray := rt.camera.PixelRay(x, y, fb.Width(), fb.Height())
	color, bounces := rt.rayColor(ray)
	fb.Set(x, y, color)

	return bounces, true
}

// rayColor iterates the bounce state machine: intersect, blend, reflect,
// until a miss or the bounce budget runs out. The loop carries the ray,
// the accumulated color, and the remaining budget; there is no recursion.
func (rt *Raytracer) rayColor(ray core.Ray) (core.Color, int) {
	accumulated := SkyColor(ray.Direction)
	remaining := rt.maxBounces
	bounces := 0

	for {
		unitDir := ray.Direction.Normalize()
		hit := geometry.FindNearestHit(ray.Origin, unitDir, rt.spheres)
		remaining--

		// The final iteration's hit, if any, does not blend: the budget is
		// spent on the intersection test itself
		if !hit.Hit() || remaining == 0 {
			return accumulated, bounces
		}

		sphere := rt.spheres[hit.SphereIndex]
		accumulated = accumulated.Add(sphere.Color).Scale(0.5)

		// Hit point is measured along the unit direction, but the mirror
		// reflection uses the un-normalized incoming direction
		hitPoint := ray.Origin.Add(unitDir.Multiply(hit.Distance))
		normal := sphere.NormalAt(hitPoint)
		ray = core.NewRay(hitPoint, ray.Direction.Reflect(normal))
		bounces++
	}
}
