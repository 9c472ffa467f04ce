package types

import "github.com/go-gl/mathgl/mgl64"

// Pose is a position/orientation pair. Poses reported by the backend are
// relative to the camera; poses computed by the reconcilers are in world
// space.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// IdentityPose returns the pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Orientation: mgl64.QuatIdent()}
}

// Transform is a rigid world-space transform (unit scale).
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// IdentityTransform returns the transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// TransformPoint maps p from local into world space.
func (t Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(p))
}

// Mul composes t with o so that the result applies o first, then t.
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Position: t.TransformPoint(o.Position),
		Rotation: t.Rotation.Mul(o.Rotation),
	}
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	return Transform{
		Position: inv.Rotate(t.Position.Mul(-1)),
		Rotation: inv,
	}
}

// ApproxEqual compares two transforms component-wise within eps. Quaternions
// q and -q describe the same rotation and compare equal.
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	if !t.Position.ApproxEqualThreshold(o.Position, eps) {
		return false
	}
	return t.Rotation.ApproxEqualThreshold(o.Rotation, eps) ||
		t.Rotation.ApproxEqualThreshold(o.Rotation.Scale(-1), eps)
}

// AsTransform reinterprets the pose as a transform.
func (p Pose) AsTransform() Transform {
	return Transform{Position: p.Position, Rotation: p.Orientation}
}

// Vec2 is a 2D vector in camera-frame or target units.
type Vec2 struct {
	X, Y float32
}

// Obb2D is an oriented bounding box in camera-frame coordinates.
type Obb2D struct {
	Center      Vec2
	HalfExtents Vec2
	// Rotation is counter-clockwise in degrees relative to the x axis.
	Rotation float32
}
