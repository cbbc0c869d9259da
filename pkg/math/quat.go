package math

import "math"

// Axis names one of the three local axes of an orientation.
type Axis uint8

const (
	AxisX Axis = iota // forward
	AxisY             // right
	AxisZ             // up
)

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	halfAngle := angle / 2
	s := float32(math.Sin(float64(halfAngle)))
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(float64(halfAngle))),
	}
}

// QuatFromYaw returns a rotation of yaw radians around the up axis.
func QuatFromYaw(yaw float32) Quat {
	return QuatFromAxisAngle(UnitZ, yaw)
}

// QuatFromAxes builds the rotation that maps the unit X, Y and Z vectors
// onto x, y and z. The three axes must form a right-handed orthonormal basis.
func QuatFromAxes(x, y, z Vec3) Quat {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	var q Quat
	switch {
	case trace > 0:
		s := 0.5 / sqrt32(trace+1)
		q = Quat{
			X: (m21 - m12) * s,
			Y: (m02 - m20) * s,
			Z: (m10 - m01) * s,
			W: 0.25 / s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * sqrt32(1+m00-m11-m22)
		q = Quat{
			X: 0.25 * s,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
			W: (m21 - m12) / s,
		}
	case m11 > m22:
		s := 2 * sqrt32(1+m11-m00-m22)
		q = Quat{
			X: (m01 + m10) / s,
			Y: 0.25 * s,
			Z: (m12 + m21) / s,
			W: (m02 - m20) / s,
		}
	default:
		s := 2 * sqrt32(1+m22-m00-m11)
		q = Quat{
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: 0.25 * s,
			W: (m10 - m01) / s,
		}
	}
	return q.Normalize()
}

// QuatFromZ returns an orientation whose up (Z) axis points along normal.
// The forward axis is derived from world up, or from world X when the
// normal is nearly vertical.
func QuatFromZ(normal Vec3) Quat {
	z := normal.Normalize()
	if z.IsZero() {
		return QuatIdentity()
	}
	ref := UnitZ
	if abs32(z.Z) >= 1-1e-4 {
		ref = UnitX
	}
	x := ref.Cross(z).Normalize()
	y := z.Cross(x)
	return QuatFromAxes(x, y, z)
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Axis returns the given local axis in world space.
func (q Quat) Axis(a Axis) Vec3 {
	switch a {
	case AxisY:
		return q.Rotate(UnitY)
	case AxisZ:
		return q.Rotate(UnitZ)
	default:
		return q.Rotate(UnitX)
	}
}

// Forward returns the local X axis.
func (q Quat) Forward() Vec3 { return q.Axis(AxisX) }

// Right returns the local Y axis.
func (q Quat) Right() Vec3 { return q.Axis(AxisY) }

// Up returns the local Z axis.
func (q Quat) Up() Vec3 { return q.Axis(AxisZ) }

func sqrt32(f float32) float32 {
	return float32(math.Sqrt(float64(f)))
}
