package scene

import (
	"math"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
)

// Orbit returns the camera pose rotated by angle radians about the world Y
// axis through the pivot. The whole rig rotates rigidly, so the camera
// keeps its framing of the pivot while circling it.
func Orbit(cam CameraConfig, pivot core.Vec3, angle float64) CameraConfig {
	sin, cos := math.Sin(angle), math.Cos(angle)
	rotate := func(v core.Vec3) core.Vec3 {
		return core.NewVec3(v.X*cos+v.Z*sin, v.Y, -v.X*sin+v.Z*cos)
	}

	return CameraConfig{
		Origin:  pivot.Add(rotate(cam.Origin.Subtract(pivot))),
		LookDir: rotate(cam.LookDir),
		Up:      rotate(cam.Up),
	}
}
