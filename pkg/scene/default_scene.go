package scene

import (
	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/geometry"
)

// NewDefaultScene creates the fixed demo scene: a large ground sphere and
// three colored spheres in a row, camera just in front looking down -Z.
func NewDefaultScene() *Scene {
	return &Scene{
		Name: "default",
		Camera: CameraConfig{
			Origin:  core.NewVec3(0, 0, 1),
			LookDir: core.NewVec3(0, 0, -1),
			Up:      core.NewVec3(0, 1, 0),
		},
		Pivot: core.NewVec3(0, 0, -1),
		Spheres: []geometry.Sphere{
			geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, core.NewColor(0.8, 0.8, 0.3, 1)),
			geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, core.NewColor(0.9, 0.2, 0.2, 1)),
			geometry.NewSphere(core.NewVec3(-1.05, 0, -1.2), 0.5, core.NewColor(0.2, 0.4, 0.9, 1)),
			geometry.NewSphere(core.NewVec3(1.05, 0, -1.2), 0.5, core.NewColor(0.2, 0.9, 0.4, 1)),
		},
	}
}

// NewMirrorPitScene creates two large spheres facing each other with the
// camera between them. Every ray reflects back and forth indefinitely, so
// rendering it exercises the bounce budget rather than the miss path.
func NewMirrorPitScene() *Scene {
	return &Scene{
		Name: "mirror-pit",
		Camera: CameraConfig{
			Origin:  core.NewVec3(0, 0, 0),
			LookDir: core.NewVec3(0, 0, -1),
			Up:      core.NewVec3(0, 1, 0),
		},
		Pivot: core.NewVec3(0, 0, -2),
		Spheres: []geometry.Sphere{
			geometry.NewSphere(core.NewVec3(0, 0, -12), 10, core.NewColor(0.9, 0.9, 0.95, 1)),
			geometry.NewSphere(core.NewVec3(0, 0, 12), 10, core.NewColor(0.95, 0.85, 0.7, 1)),
		},
	}
}
