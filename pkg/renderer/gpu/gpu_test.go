package gpu

import (
	"testing"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/geometry"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

func TestPackSpheres_Layout(t *testing.T) {
	spheres := []geometry.Sphere{
		{
			Center: core.NewVec3(1, 2, 3),
			Radius: 0.5,
			Color:  core.NewColor(0.9, 0.2, 0.1, 1),
		},
		{
			Center: core.NewVec3(-4, 0, 2.5),
			Radius: 10,
			Color:  core.NewColor(0, 0.5, 1, 1),
		},
	}

	data := packSpheres(spheres)

	if len(data) != 2*sphereStride {
		t.Fatalf("Expected %d floats, got %d", 2*sphereStride, len(data))
	}

	expected := []float32{
		1, 2, 3, 0.5, 0.9, 0.2, 0.1, 1,
		-4, 0, 2.5, 10, 0, 0.5, 1, 1,
	}
	for i, want := range expected {
		if data[i] != want {
			t.Errorf("Expected data[%d] = %v, got %v", i, want, data[i])
		}
	}
}

func TestPackSpheres_EmptySceneGetsPlaceholderSlot(t *testing.T) {
	data := packSpheres(nil)

	if len(data) != sphereStride {
		t.Fatalf("Expected %d floats for empty scene, got %d", sphereStride, len(data))
	}
	// The placeholder's zero radius makes the kernel skip it
	if data[3] != 0 {
		t.Errorf("Expected placeholder radius 0, got %v", data[3])
	}
}

func TestPackCamera_Vec4Padding(t *testing.T) {
	cam := scene.CameraConfig{
		Origin:  core.NewVec3(0, 1, 5),
		LookDir: core.NewVec3(0, -0.25, -1),
		Up:      core.NewVec3(0, 1, 0),
	}

	block := packCamera(cam)

	expected := [12]float32{
		0, 1, 5, 0,
		0, -0.25, -1, 0,
		0, 1, 0, 0,
	}
	if block != expected {
		t.Errorf("Expected camera block %v, got %v", expected, block)
	}
}

func TestDispatchGroups_CoversFramebuffer(t *testing.T) {
	testCases := []struct {
		name    string
		width   int
		height  int
		groupsX int
		groupsY int
	}{
		{"exact multiple", 640, 360, 80, 45},
		{"width overshoot", 641, 360, 81, 45},
		{"height overshoot", 640, 361, 80, 46},
		{"smaller than one group", 3, 5, 1, 1},
		{"single pixel", 1, 1, 1, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			groupsX, groupsY := dispatchGroups(tc.width, tc.height)
			if groupsX != tc.groupsX || groupsY != tc.groupsY {
				t.Errorf("Expected %dx%d groups, got %dx%d",
					tc.groupsX, tc.groupsY, groupsX, groupsY)
			}

			if groupsX*workgroupSize < tc.width {
				t.Errorf("Dispatch width %d does not cover framebuffer width %d",
					groupsX*workgroupSize, tc.width)
			}
			if groupsY*workgroupSize < tc.height {
				t.Errorf("Dispatch height %d does not cover framebuffer height %d",
					groupsY*workgroupSize, tc.height)
			}
		})
	}
}
