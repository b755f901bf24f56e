package scene

import (
	"fmt"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/geometry"
)

// CameraConfig holds the three vectors the tracing kernel derives its
// screen basis from. LookDir is expected to be unit length and must not be
// parallel to Up; Validate enforces this once at setup time so the per-pixel
// path never has to.
type CameraConfig struct {
	Origin  core.Vec3
	LookDir core.Vec3
	Up      core.Vec3
}

// Scene is the immutable description of what to render: an ordered list of
// spheres and the initial camera. It is built once and treated as read-only
// for the lifetime of the renderer, so all workers may share it without
// synchronization.
type Scene struct {
	Name    string
	Camera  CameraConfig
	Pivot   core.Vec3 // orbit/arcball center
	Spheres []geometry.Sphere
}

// Validate checks the scene invariants that rendering assumes. It is called
// when a scene is constructed or loaded, never per pixel.
func (s *Scene) Validate() error {
	if len(s.Spheres) == 0 {
		return fmt.Errorf("scene %q has no spheres", s.Name)
	}

	for i, sphere := range s.Spheres {
		if sphere.Radius <= 0 {
			return fmt.Errorf("sphere %d: radius must be positive, got %g", i, sphere.Radius)
		}
		if !colorInRange(sphere.Color) {
			return fmt.Errorf("sphere %d: color components must be in [0,1], got %+v", i, sphere.Color)
		}
	}

	return validateCamera(s.Camera)
}

func validateCamera(cam CameraConfig) error {
	if cam.LookDir.LengthSquared() == 0 {
		return fmt.Errorf("camera look direction is zero")
	}
	if cam.Up.LengthSquared() == 0 {
		return fmt.Errorf("camera up vector is zero")
	}

	// A parallel look/up pair leaves the screen basis undefined
	const epsilon = 1e-12
	if cam.Up.Cross(cam.LookDir.Negate()).LengthSquared() < epsilon {
		return fmt.Errorf("camera look direction is parallel to up")
	}

	return nil
}

func colorInRange(c core.Color) bool {
	inRange := func(v float64) bool { return v >= 0 && v <= 1 }
	return inRange(c.R) && inRange(c.G) && inRange(c.B) && inRange(c.A)
}

// CenterOfSpheres returns the centroid of all sphere centers, the fallback
// pivot for scenes that do not declare one.
func CenterOfSpheres(spheres []geometry.Sphere) core.Vec3 {
	if len(spheres) == 0 {
		return core.NewVec3(0, 0, 0)
	}

	sum := core.NewVec3(0, 0, 0)
	for _, sphere := range spheres {
		sum = sum.Add(sphere.Center)
	}
	return sum.Multiply(1.0 / float64(len(spheres)))
}
