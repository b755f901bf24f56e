package app

import (
	"math"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

// minZoomDistance keeps the camera from zooming through the pivot
const minZoomDistance = 0.05

const defaultZoomSpeed = 1.0

// Arcball is an orbit camera in the style of Ken Shoemake's arcball: drags
// on the window map to points on a virtual sphere and compose into a
// rotation about the pivot. Pan moves the pivot in the view plane, zoom
// moves the camera along the view axis. The camera always looks at the
// pivot.
type Arcball struct {
	pivot     core.Vec3
	rotation  quat // world to camera
	distance  float64
	zoomSpeed float64
	invWidth  float64
	invHeight float64

	initialPivot    core.Vec3
	initialRotation quat
	initialDistance float64
}

// NewArcball creates an arcball orbiting pivot, posed to match the given
// camera. If the camera does not sit on the pivot's line of sight the pose
// is re-aimed at the pivot from the camera's position.
func NewArcball(cam scene.CameraConfig, pivot core.Vec3, width, height float64) *Arcball {
	offset := cam.Origin.Subtract(pivot)
	distance := offset.Length()

	var back core.Vec3
	if distance < minZoomDistance {
		distance = 1
		back = cam.LookDir.Negate().Normalize()
	} else {
		back = offset.Multiply(1 / distance)
	}

	right := orbitRight(cam.Up, back)
	up := back.Cross(right)

	a := &Arcball{
		pivot:     pivot,
		rotation:  quatFromBasis(right, up, back),
		distance:  distance,
		zoomSpeed: defaultZoomSpeed,
	}
	a.initialPivot = a.pivot
	a.initialRotation = a.rotation
	a.initialDistance = a.distance
	a.SetScreen(width, height)
	return a
}

// orbitRight picks the camera right axis, falling back to fixed world axes
// when the preferred up vector is parallel to the view axis
func orbitRight(up, back core.Vec3) core.Vec3 {
	const epsilon = 1e-12
	for _, candidate := range []core.Vec3{up, core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 0)} {
		right := candidate.Cross(back)
		if right.LengthSquared() > epsilon {
			return right.Normalize()
		}
	}
	return core.NewVec3(1, 0, 0)
}

// SetScreen rescales the drag math for a new window size
func (a *Arcball) SetScreen(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	a.invWidth = 1 / width
	a.invHeight = 1 / height
}

// Rotate composes the rotation between two pointer positions, in pixels,
// into the orbit
func (a *Arcball) Rotate(prevX, prevY, curX, curY float64) {
	cur := ballPoint(
		clamp(curX*2*a.invWidth-1, -1, 1),
		clamp(1-2*curY*a.invHeight, -1, 1),
	)
	prev := ballPoint(
		clamp(prevX*2*a.invWidth-1, -1, 1),
		clamp(1-2*prevY*a.invHeight, -1, 1),
	)
	a.rotation = quatMul(quatMul(cur, prev), a.rotation).normalize()
}

// Pan translates the pivot in the view plane by a pointer delta in pixels.
// The motion scales with the zoom distance so the scene tracks the cursor.
func (a *Arcball) Pan(dx, dy float64) {
	motion := a.rotation.conjugate().rotate(core.NewVec3(
		dx*a.invWidth*a.distance,
		-dy*a.invHeight*a.distance,
		0,
	))
	a.pivot = a.pivot.Subtract(motion)
}

// Zoom moves the camera along the view axis. Positive amounts zoom in;
// elapsed is the frame time scaling the motion.
func (a *Arcball) Zoom(amount, elapsed float64) {
	a.distance -= amount * a.zoomSpeed * elapsed
	if a.distance < minZoomDistance {
		a.distance = minZoomDistance
	}
}

// Reset restores the pose the arcball was created with
func (a *Arcball) Reset() {
	a.pivot = a.initialPivot
	a.rotation = a.initialRotation
	a.distance = a.initialDistance
}

// Camera returns the current pose as the three vectors the renderer takes
func (a *Arcball) Camera() scene.CameraConfig {
	camToWorld := a.rotation.conjugate()
	return scene.CameraConfig{
		Origin:  a.pivot.Add(camToWorld.rotate(core.NewVec3(0, 0, a.distance))),
		LookDir: camToWorld.rotate(core.NewVec3(0, 0, -1)),
		Up:      camToWorld.rotate(core.NewVec3(0, 1, 0)),
	}
}

// Distance returns the current camera distance from the pivot
func (a *Arcball) Distance() float64 {
	return a.distance
}

// ballPoint lifts a point in [-1,1] screen space onto the arcball sphere,
// as a pure quaternion. Points outside the sphere map to its silhouette.
func ballPoint(px, py float64) quat {
	dist := px*px + py*py
	if dist <= 1 {
		return quat{x: px, y: py, z: math.Sqrt(1 - dist)}
	}
	length := math.Sqrt(dist)
	return quat{x: px / length, y: py / length}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// quat is a rotation quaternion w + xi + yj + zk
type quat struct {
	w, x, y, z float64
}

func quatMul(a, b quat) quat {
	return quat{
		w: a.w*b.w - a.x*b.x - a.y*b.y - a.z*b.z,
		x: a.w*b.x + a.x*b.w + a.y*b.z - a.z*b.y,
		y: a.w*b.y - a.x*b.z + a.y*b.w + a.z*b.x,
		z: a.w*b.z + a.x*b.y - a.y*b.x + a.z*b.w,
	}
}

func (q quat) conjugate() quat {
	return quat{w: q.w, x: -q.x, y: -q.y, z: -q.z}
}

func (q quat) normalize() quat {
	length := math.Sqrt(q.w*q.w + q.x*q.x + q.y*q.y + q.z*q.z)
	if length == 0 {
		return quat{w: 1}
	}
	return quat{w: q.w / length, x: q.x / length, y: q.y / length, z: q.z / length}
}

// rotate applies the rotation to a vector
func (q quat) rotate(v core.Vec3) core.Vec3 {
	qv := core.NewVec3(q.x, q.y, q.z)
	t := qv.Cross(v).Multiply(2)
	return v.Add(t.Multiply(q.w)).Add(qv.Cross(t))
}

// quatFromBasis converts an orthonormal camera frame, given as world-space
// right, up and back axes, into the world-to-camera rotation
func quatFromBasis(right, up, back core.Vec3) quat {
	m00, m01, m02 := right.X, up.X, back.X
	m10, m11, m12 := right.Y, up.Y, back.Y
	m20, m21, m22 := right.Z, up.Z, back.Z

	var q quat
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 2 * math.Sqrt(trace+1)
		q = quat{w: s / 4, x: (m21 - m12) / s, y: (m02 - m20) / s, z: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1 + m00 - m11 - m22)
		q = quat{w: (m21 - m12) / s, x: s / 4, y: (m01 + m10) / s, z: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1 + m11 - m00 - m22)
		q = quat{w: (m02 - m20) / s, x: (m01 + m10) / s, y: s / 4, z: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1 + m22 - m00 - m11)
		q = quat{w: (m10 - m01) / s, x: (m02 + m20) / s, y: (m12 + m21) / s, z: s / 4}
	}

	// q is camera to world; the arcball stores world to camera
	return q.conjugate().normalize()
}
