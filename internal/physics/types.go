// Package physics provides a small static collision world that answers line
// traces. It stands in for the host engine's physics scene in the simulator
// and in tests.
package physics

import (
	"fmt"

	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// ActorID identifies an actor in the host world. Zero means no actor.
type ActorID uint64

// SurfaceType is a physical surface identifier. Zero is the default
// surface; project surfaces use 1 through MaxSurfaceType.
type SurfaceType uint8

const (
	SurfaceDefault SurfaceType = 0
	MaxSurfaceType SurfaceType = 62
)

// Valid reports whether s is in the supported range.
func (s SurfaceType) Valid() bool {
	return s <= MaxSurfaceType
}

func (s SurfaceType) String() string {
	if s == SurfaceDefault {
		return "Default"
	}
	return fmt.Sprintf("SurfaceType%d", s)
}

// Material is a physical material. Several colliders may share one.
type Material struct {
	Name    string
	Surface SurfaceType
}

// Body is the collision body a collider belongs to.
type Body struct {
	Name  string
	Owner ActorID
	// DefaultMaterial is the body's simple material, used when the hit
	// collider carries no material of its own.
	DefaultMaterial *Material
}

// Hit is the outcome of a line trace.
type Hit struct {
	Blocking     bool
	ImpactPoint  math.Vec3
	ImpactNormal math.Vec3
	Distance     float32
	// Material is the material attached to the collider that was hit, if any.
	Material *Material
	Body     *Body
}

// Actor returns the owner of the hit body.
func (h Hit) Actor() ActorID {
	if h.Body == nil {
		return 0
	}
	return h.Body.Owner
}

// Raycaster answers line trace queries.
type Raycaster interface {
	LineTrace(start, direction math.Vec3, length float32, ignore []ActorID) Hit
}

// ResolveMaterial returns the material attached to the hit collider, falling
// back to the hit body's default material. Only one level of fallback is
// applied; nested bodies are not searched.
func ResolveMaterial(h Hit) *Material {
	if !h.Blocking {
		return nil
	}
	if h.Material != nil {
		return h.Material
	}
	if h.Body != nil {
		return h.Body.DefaultMaterial
	}
	return nil
}
