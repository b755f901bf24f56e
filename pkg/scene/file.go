package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/geometry"
)

// sceneFile is the on-disk JSON form of a Scene. Vectors are flat arrays
// ([x,y,z] and [r,g,b,a]) so scene files stay hand-editable.
type sceneFile struct {
	Name    string       `json:"name"`
	Camera  cameraFile   `json:"camera"`
	Pivot   *[3]float64  `json:"pivot,omitempty"`
	Spheres []sphereFile `json:"spheres"`
}

type cameraFile struct {
	Origin  [3]float64 `json:"origin"`
	LookDir [3]float64 `json:"lookDir"`
	Up      [3]float64 `json:"up"`
}

type sphereFile struct {
	Center [3]float64 `json:"center"`
	Radius float64    `json:"radius"`
	Color  [4]float64 `json:"color"`
}

// LoadScene reads and validates a scene from a JSON file. Unknown fields
// are rejected so typos in hand-written files surface as errors instead of
// silently defaulted values.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var sf sceneFile
	if err := decoder.Decode(&sf); err != nil {
		return nil, fmt.Errorf("parsing scene file %s: %w", path, err)
	}

	s := sf.toScene()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene %s: %w", path, err)
	}

	return s, nil
}

// SaveScene writes a scene as indented JSON
func SaveScene(path string, s *Scene) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid scene: %w", err)
	}

	data, err := json.MarshalIndent(fromScene(s), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding scene: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing scene file: %w", err)
	}

	return nil
}

func (sf *sceneFile) toScene() *Scene {
	s := &Scene{
		Name: sf.Name,
		Camera: CameraConfig{
			Origin:  toVec3(sf.Camera.Origin),
			LookDir: toVec3(sf.Camera.LookDir).Normalize(),
			Up:      toVec3(sf.Camera.Up),
		},
	}

	for _, sphere := range sf.Spheres {
		s.Spheres = append(s.Spheres, geometry.NewSphere(
			toVec3(sphere.Center),
			sphere.Radius,
			core.NewColor(sphere.Color[0], sphere.Color[1], sphere.Color[2], sphere.Color[3]),
		))
	}

	if sf.Pivot != nil {
		s.Pivot = toVec3(*sf.Pivot)
	} else {
		s.Pivot = CenterOfSpheres(s.Spheres)
	}

	return s
}

func fromScene(s *Scene) sceneFile {
	pivot := [3]float64{s.Pivot.X, s.Pivot.Y, s.Pivot.Z}
	sf := sceneFile{
		Name: s.Name,
		Camera: cameraFile{
			Origin:  fromVec3(s.Camera.Origin),
			LookDir: fromVec3(s.Camera.LookDir),
			Up:      fromVec3(s.Camera.Up),
		},
		Pivot: &pivot,
	}

	for _, sphere := range s.Spheres {
		sf.Spheres = append(sf.Spheres, sphereFile{
			Center: fromVec3(sphere.Center),
			Radius: sphere.Radius,
			Color:  [4]float64{sphere.Color.R, sphere.Color.G, sphere.Color.B, sphere.Color.A},
		})
	}

	return sf
}

func toVec3(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}

func fromVec3(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
