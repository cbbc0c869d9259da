package physics

import (
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// Shape is a collider geometry.
type Shape interface {
	// intersect returns the distance along r and the surface normal at the hit.
	intersect(r Ray) (t float32, normal math.Vec3, ok bool)
}

// Box is an axis-aligned box shape.
type Box struct {
	Bounds AABB
}

func (b Box) intersect(r Ray) (float32, math.Vec3, bool) {
	return r.IntersectAABB(b.Bounds)
}

// Plane is a one-sided plane. A non-nil Bounds limits it to a patch, which
// is how floor regions of different materials are laid out.
type Plane struct {
	Point  math.Vec3
	Normal math.Vec3
	Bounds *AABB
}

func (p Plane) intersect(r Ray) (float32, math.Vec3, bool) {
	n := p.Normal.Normalize()
	t, ok := r.IntersectPlane(p.Point, n)
	if !ok {
		return 0, math.Vec3{}, false
	}
	if p.Bounds != nil && !p.Bounds.Contains(r.At(t)) {
		return 0, math.Vec3{}, false
	}
	return t, n, true
}

// Collider is a shape placed in the world as part of a body.
type Collider struct {
	Shape Shape
	Body  *Body
	// Material overrides the body's default material for this collider.
	Material *Material
}

// World is a static set of colliders. It is safe for concurrent traces;
// adding colliders takes a write lock.
type World struct {
	mu        sync.RWMutex
	colliders []Collider
	traces    atomic.Uint64
}

// NewWorld creates an empty collision world.
func NewWorld() *World {
	return &World{}
}

// Add places colliders in the world.
func (w *World) Add(colliders ...Collider) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.colliders = append(w.colliders, colliders...)
}

// Len returns the number of colliders.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.colliders)
}

// TraceCount returns how many line traces the world has answered.
func (w *World) TraceCount() uint64 {
	return w.traces.Load()
}

// LineTrace returns the nearest blocking hit on the segment from start along
// direction for length units. Colliders owned by actors in ignore are skipped.
func (w *World) LineTrace(start, direction math.Vec3, length float32, ignore []ActorID) Hit {
	w.traces.Add(1)

	dir := direction.Normalize()
	if dir.IsZero() || length <= 0 {
		return Hit{}
	}
	ray := Ray{Origin: start, Direction: dir}

	w.mu.RLock()
	defer w.mu.RUnlock()

	best := Hit{Distance: length}
	for i := range w.colliders {
		c := &w.colliders[i]
		if c.Body != nil && c.Body.Owner != 0 && slices.Contains(ignore, c.Body.Owner) {
			continue
		}
		t, n, ok := c.Shape.intersect(ray)
		if !ok || t > best.Distance {
			continue
		}
		if best.Blocking && t == best.Distance {
			continue
		}
		best = Hit{
			Blocking:     true,
			ImpactPoint:  ray.At(t),
			ImpactNormal: n,
			Distance:     t,
			Material:     c.Material,
			Body:         c.Body,
		}
	}

	if best.Blocking {
		logger.Debug("line trace hit",
			zap.Float32("distance", best.Distance),
			zap.String("body", bodyName(best.Body)),
		)
	}
	if !best.Blocking {
		return Hit{}
	}
	return best
}

func bodyName(b *Body) string {
	if b == nil {
		return ""
	}
	return b.Name
}
