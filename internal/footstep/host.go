package footstep

import (
	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// NetMode is the network role of the running simulation.
type NetMode uint8

const (
	NetStandalone NetMode = iota
	NetDedicatedServer
	NetListenServer
	NetClient
)

func (m NetMode) String() string {
	switch m {
	case NetDedicatedServer:
		return "dedicated_server"
	case NetListenServer:
		return "listen_server"
	case NetClient:
		return "client"
	default:
		return "standalone"
	}
}

// HasClientEffects reports whether sounds and particles are presented.
func (m NetMode) HasClientEffects() bool {
	return m != NetDedicatedServer
}

// PoolingHost is implemented by the world root that owns the effect pool.
type PoolingHost interface {
	PoolingManager() *Pool
}

// World is the simulation world a mesh lives in.
type World interface {
	NetMode() NetMode
	// PoolingHost returns nil when the world root does not host a pool.
	PoolingHost() PoolingHost
}

// FootstepCapable is implemented by actors that take part in footsteps.
type FootstepCapable interface {
	// FootstepComponent may return nil.
	FootstepComponent() *Component
}

// Owner is the actor owning an animated mesh.
type Owner interface {
	ActorID() physics.ActorID
	// Label is the display name used in debug output.
	Label() string
	// FootstepCapability returns nil when the actor has no footstep support.
	FootstepCapability() FootstepCapable
}

// Mesh is the animated skeletal mesh a notify fires on.
type Mesh interface {
	// World returns nil when the mesh is not in a world.
	World() World
	// Owner returns nil when the mesh has no owner.
	Owner() Owner
	// Transform is the mesh's world transform.
	Transform() math.Transform
	// SocketTransform returns the world transform of a named socket.
	SocketTransform(name string) (math.Transform, bool)
}
