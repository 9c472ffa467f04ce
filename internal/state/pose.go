package state

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Axis corrections between the backend's camera frame and world space. They
// are fixed by the frame protocol: a camera placed from an anchor applies
// CameraAxisCorrection, a trackable placed from the camera applies
// TrackableAxisCorrection, and the two compose to a full turn.
var (
	CameraAxisCorrection    = mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{-1, 0, 0})
	TrackableAxisCorrection = mgl64.QuatRotate(mgl64.DegToRad(270), mgl64.Vec3{-1, 0, 0})
)

// PositionCamera returns the camera transform that puts a trackable seen at
// the camera-relative pose back at anchor in world space.
func PositionCamera(anchor types.Transform, pose types.Pose) types.Transform {
	rot := anchor.Rotation.Mul(CameraAxisCorrection).Mul(unit(pose.Orientation).Inverse())
	pos := anchor.Position.Add(rot.Rotate(pose.Position.Mul(-1)))
	return types.Transform{Position: pos, Rotation: rot.Normalize()}
}

// PositionTrackable returns the world transform of a trackable seen at the
// camera-relative pose.
func PositionTrackable(camera types.Transform, pose types.Pose) types.Transform {
	pos := camera.TransformPoint(pose.Position)
	rot := camera.Rotation.Mul(unit(pose.Orientation)).Mul(TrackableAxisCorrection)
	return types.Transform{Position: pos, Rotation: rot.Normalize()}
}

// unit normalizes q. A zero quaternion, as sent for unset poses, becomes the
// identity.
func unit(q mgl64.Quat) mgl64.Quat {
	if q.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
