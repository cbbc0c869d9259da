package math

// Transform is a location, rotation and scale in world space.
type Transform struct {
	Location Vec3
	Rotation Quat
	Scale    Vec3
}

// TransformIdentity returns a transform at the origin with unit scale.
func TransformIdentity() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Vec3{1, 1, 1}}
}

// NewTransform returns a unit-scale transform.
func NewTransform(rot Quat, loc Vec3) Transform {
	return Transform{Location: loc, Rotation: rot, Scale: Vec3{1, 1, 1}}
}

// TransformPoint maps a local point into world space.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	return t.Rotation.Rotate(p.Mul(t.Scale)).Add(t.Location)
}

// Compose returns the world transform of a child whose transform is local
// relative to t.
func (t Transform) Compose(local Transform) Transform {
	return Transform{
		Location: t.TransformPoint(local.Location),
		Rotation: t.Rotation.Mul(local.Rotation).Normalize(),
		Scale:    t.Scale.Mul(local.Scale),
	}
}
