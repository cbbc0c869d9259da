package physics

import (
	gomath "math"

	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// parallelEpsilon is the smallest |dir·normal| treated as non-parallel.
const parallelEpsilon = 1e-6

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two corners, handling swapped components.
func NewAABB(a, b math.Vec3) AABB {
	box := AABB{Min: a, Max: b}
	if box.Min.X > box.Max.X {
		box.Min.X, box.Max.X = box.Max.X, box.Min.X
	}
	if box.Min.Y > box.Max.Y {
		box.Min.Y, box.Max.Y = box.Max.Y, box.Min.Y
	}
	if box.Min.Z > box.Max.Z {
		box.Min.Z, box.Max.Z = box.Max.Z, box.Min.Z
	}
	return box
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// slab intersects one axis of the box and narrows [tmin, tmax], recording the
// outward normal of the latest entry face. It returns false when the ray runs
// parallel to the slab outside of it.
func slab(origin, dir, lo, hi float32, axis math.Vec3, tmin, tmax *float32, entry *math.Vec3) bool {
	if dir == 0 {
		return origin >= lo && origin <= hi
	}
	t1 := (lo - origin) / dir
	t2 := (hi - origin) / dir
	n := axis.Neg()
	if t1 > t2 {
		t1, t2 = t2, t1
		n = axis
	}
	if t1 > *tmin {
		*tmin = t1
		*entry = n
	}
	if t2 < *tmax {
		*tmax = t2
	}
	return true
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// It returns the entry distance and the outward normal of the entry face.
// Rays starting inside the box do not hit it.
func (r Ray) IntersectAABB(box AABB) (t float32, normal math.Vec3, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	if !slab(r.Origin.X, r.Direction.X, box.Min.X, box.Max.X, math.UnitX, &tmin, &tmax, &normal) {
		return 0, math.Vec3{}, false
	}
	if !slab(r.Origin.Y, r.Direction.Y, box.Min.Y, box.Max.Y, math.UnitY, &tmin, &tmax, &normal) {
		return 0, math.Vec3{}, false
	}
	if !slab(r.Origin.Z, r.Direction.Z, box.Min.Z, box.Max.Z, math.UnitZ, &tmin, &tmax, &normal) {
		return 0, math.Vec3{}, false
	}

	if tmax < tmin || tmin < 0 {
		return 0, math.Vec3{}, false
	}
	return tmin, normal, true
}

// IntersectPlane intersects the ray with the plane through point with the
// given unit normal. Only the front face blocks.
func (r Ray) IntersectPlane(point, normal math.Vec3) (t float32, hit bool) {
	denom := r.Direction.Dot(normal)
	if denom > -parallelEpsilon {
		return 0, false
	}
	t = point.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}
