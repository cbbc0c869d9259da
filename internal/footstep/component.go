package footstep

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// ComponentConfig is the authored configuration of a footstep component.
type ComponentConfig struct {
	// Owner is always excluded from traces.
	Owner physics.ActorID
	// FX maps surfaces to their data assets.
	FX map[physics.SurfaceType]*DataAsset
	// TraceLength is the length of the footstep trace. Negative values are
	// clamped to zero.
	TraceLength float32
	// ShowDebug prints a line for every footstep and logs traces. Ignored
	// in shipping builds.
	ShowDebug bool
	// LocallyControlled reports whether the owner is driven by the local
	// player. Its footsteps then play as 2D sounds.
	LocallyControlled func() bool
}

// Component is the per-character footstep state: surface table, trace
// configuration and the actors excluded from the trace.
type Component struct {
	settings *Settings
	tracer   physics.Raycaster

	owner             physics.ActorID
	fx                map[physics.SurfaceType]*DataAsset
	traceLength       float32
	showDebug         bool
	locallyControlled func() bool

	ignore []physics.ActorID

	mu        sync.Mutex
	listeners map[int]func(Generated)
	nextID    int
}

// NewComponent creates a component that traces through tracer.
func NewComponent(settings *Settings, tracer physics.Raycaster, cfg ComponentConfig) *Component {
	fx := make(map[physics.SurfaceType]*DataAsset, len(cfg.FX))
	for s, d := range cfg.FX {
		if d != nil {
			fx[s] = d
		}
	}
	length := cfg.TraceLength
	if length < 0 {
		length = 0
	}
	return &Component{
		settings:          settings,
		tracer:            tracer,
		owner:             cfg.Owner,
		fx:                fx,
		traceLength:       length,
		showDebug:         cfg.ShowDebug,
		locallyControlled: cfg.LocallyControlled,
		listeners:         make(map[int]func(Generated)),
	}
}

// PlaySound2D reports whether footsteps should play without spatialization.
func (c *Component) PlaySound2D() bool {
	return c.locallyControlled != nil && c.locallyControlled()
}

// SetActorsToIgnoreForTrace replaces the ignore list.
func (c *Component) SetActorsToIgnoreForTrace(actors []physics.ActorID) {
	c.ignore = nil
	for _, a := range actors {
		c.AddActorToIgnoreForTrace(a)
	}
}

// AddActorToIgnoreForTrace adds an actor to the ignore list. Zero ids and
// actors already present are skipped.
func (c *Component) AddActorToIgnoreForTrace(actor physics.ActorID) {
	if actor == 0 || slices.Contains(c.ignore, actor) {
		return
	}
	c.ignore = append(c.ignore, actor)
}

// RemoveActorToIgnoreForTrace removes an actor and reports whether it was
// present.
func (c *Component) RemoveActorToIgnoreForTrace(actor physics.ActorID) bool {
	i := slices.Index(c.ignore, actor)
	if i < 0 {
		return false
	}
	c.ignore = slices.Delete(c.ignore, i, i+1)
	return true
}

// ActorsToIgnore returns a copy of the ignore list.
func (c *Component) ActorsToIgnore() []physics.ActorID {
	return slices.Clone(c.ignore)
}

// traceIgnore is the ignore list plus the owner.
func (c *Component) traceIgnore() []physics.ActorID {
	if c.owner == 0 || slices.Contains(c.ignore, c.owner) {
		return c.ignore
	}
	return append(slices.Clone(c.ignore), c.owner)
}

// LineTrace traces from start along direction for the trace length.
func (c *Component) LineTrace(start, direction math.Vec3) physics.Hit {
	if c.tracer == nil {
		return physics.Hit{}
	}
	hit := c.tracer.LineTrace(start, direction, c.traceLength, c.traceIgnore())

	if c.ShowDebug() {
		end := start.Add(direction.Normalize().Scale(c.traceLength))
		logger.Debug("footstep trace",
			zap.Uint64("owner", uint64(c.owner)),
			zap.Any("start", start),
			zap.Any("end", end),
			zap.Bool("blocking", hit.Blocking),
			zap.Any("impact", hit.ImpactPoint),
		)
	}
	return hit
}

// FootstepData returns the data asset for surface, or nil.
func (c *Component) FootstepData(surface physics.SurfaceType) *DataAsset {
	return c.fx[surface]
}

// Surfaces returns the surfaces with a data asset, in ascending order.
func (c *Component) Surfaces() []physics.SurfaceType {
	out := make([]physics.SurfaceType, 0, len(c.fx))
	for s := range c.fx {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// TraceLength returns the configured trace length.
func (c *Component) TraceLength() float32 {
	return c.traceLength
}

// ShowDebug reports whether debug output is enabled for this component.
func (c *Component) ShowDebug() bool {
	return c.showDebug && (c.settings == nil || !c.settings.Shipping)
}

// Owner returns the owning actor.
func (c *Component) Owner() physics.ActorID {
	return c.owner
}

// Subscribe registers fn for every footstep the component generates. The
// returned func removes the subscription.
func (c *Component) Subscribe(fn func(Generated)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Component) publish(ev Generated) {
	c.mu.Lock()
	fns := make([]func(Generated), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
