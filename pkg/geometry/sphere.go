package geometry

import (
	"math"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
)

// Sphere represents a sphere with a flat surface color
type Sphere struct {
	Center core.Vec3
	Radius float64
	Color  core.Color
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, color core.Color) Sphere {
	return Sphere{
		Center: center,
		Radius: radius,
		Color:  color,
	}
}

// HitRecord identifies the nearest sphere struck by a ray.
// SphereIndex is -1 when nothing was hit; Distance is the parameter along
// the unit-direction ray and is only meaningful when SphereIndex >= 0.
type HitRecord struct {
	SphereIndex int
	Distance    float64
}

// Hit reports whether the record refers to an actual intersection
func (h HitRecord) Hit() bool {
	return h.SphereIndex >= 0
}

// HitDistance solves the ray/sphere quadratic for origin + t*dir and returns
// the near root, the parameter where the ray first touches the surface.
// Returns -1 when the ray misses entirely. A return <= 0 means the
// intersection lies behind the ray origin; callers must check the sign.
func (s Sphere) HitDistance(origin, dir core.Vec3) float64 {
	// Quadratic equation coefficients: at² + bt + c = 0
	oc := s.Center.Subtract(origin)
	a := dir.Dot(dir)
	b := -2.0 * dir.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c

	// No real roots: the ray misses the sphere
	if discriminant < 0 {
		return -1.0
	}

	// Near root is the entry point; the far root is the exit and never wanted
	return (-b - math.Sqrt(discriminant)) / (2.0 * a)
}

// NormalAt returns the outward surface normal at a point on the sphere
func (s Sphere) NormalAt(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Normalize()
}

// FindNearestHit tests the ray against every sphere in order and returns the
// closest strictly-positive intersection. Exact ties keep the earlier sphere,
// so results are deterministic in list order.
func FindNearestHit(origin, dir core.Vec3, spheres []Sphere) HitRecord {
	nearest := HitRecord{SphereIndex: -1}

	for i, sphere := range spheres {
		t := sphere.HitDistance(origin, dir)
		if t <= 0 {
			continue // missed, or surface behind the ray origin
		}
		if !nearest.Hit() || t < nearest.Distance {
			nearest = HitRecord{SphereIndex: i, Distance: t}
		}
	}

	return nearest
}
