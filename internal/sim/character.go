package sim

import (
	stdmath "math"
	"time"

	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// arriveDistance is how close a character gets to a waypoint before
// heading for the next one.
const arriveDistance = 1

// Character is a walking actor. It is its own owner, footstep capability
// and mesh.
type Character struct {
	id        physics.ActorID
	name      string
	world     *World
	component *footstep.Component
	sockets   map[string]math.Vec3

	location math.Vec3
	yaw      float32
	path     []math.Vec3
	target   int
	speed    float32

	notifies []*footstep.Notify
	stride   time.Duration
	next     time.Duration
	step     int
}

// ActorID implements footstep.Owner.
func (c *Character) ActorID() physics.ActorID { return c.id }

// Label implements footstep.Owner.
func (c *Character) Label() string { return c.name }

// FootstepCapability implements footstep.Owner.
func (c *Character) FootstepCapability() footstep.FootstepCapable { return c }

// FootstepComponent implements footstep.FootstepCapable.
func (c *Character) FootstepComponent() *footstep.Component { return c.component }

// World implements footstep.Mesh.
func (c *Character) World() footstep.World { return c.world }

// Owner implements footstep.Mesh.
func (c *Character) Owner() footstep.Owner { return c }

// Transform implements footstep.Mesh.
func (c *Character) Transform() math.Transform {
	return math.NewTransform(math.QuatFromYaw(c.yaw), c.location)
}

// SocketTransform implements footstep.Mesh.
func (c *Character) SocketTransform(name string) (math.Transform, bool) {
	local, ok := c.sockets[name]
	if !ok {
		return math.Transform{}, false
	}
	return c.Transform().Compose(math.NewTransform(math.QuatIdentity(), local)), true
}

// Location returns the mesh root location.
func (c *Character) Location() math.Vec3 { return c.location }

// Component returns the footstep component.
func (c *Character) Component() *footstep.Component { return c.component }

// move walks toward the current waypoint, turning to face it.
func (c *Character) move(dt time.Duration) {
	if len(c.path) < 2 || c.speed <= 0 {
		return
	}
	budget := c.speed * float32(dt.Seconds())
	for i := 0; budget > 0 && i < 2*len(c.path); i++ {
		to := c.path[c.target].Sub(c.location)
		to.Z = 0
		dist := to.Length()
		if dist <= arriveDistance {
			c.target = (c.target + 1) % len(c.path)
			continue
		}
		c.yaw = float32(stdmath.Atan2(float64(to.Y), float64(to.X)))
		if budget >= dist {
			c.location = c.location.Add(to)
			budget -= dist
			c.target = (c.target + 1) % len(c.path)
			continue
		}
		c.location = c.location.Add(to.Scale(budget / dist))
		budget = 0
	}
}

// due returns the notify to fire if a footstep is due at elapsed, and
// schedules the next one.
func (c *Character) due(elapsed time.Duration) (*footstep.Notify, bool) {
	if elapsed < c.next {
		return nil, false
	}
	n := c.notifies[c.step%len(c.notifies)]
	c.step++
	c.next += c.stride
	return n, true
}
