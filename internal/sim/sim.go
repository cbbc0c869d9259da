// Package sim hosts footstep components in a small walking simulation:
// a collision world of floor patches, characters following paths and a
// fixed-step clock that fires their footstep notifies.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/assets"
	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// recentEvents is how many generated footsteps Recent keeps.
const recentEvents = 8

// floorOwnerBase offsets the actor ids of level geometry from characters.
const floorOwnerBase physics.ActorID = 1 << 20

// Options wires a simulation to its collaborators.
type Options struct {
	Settings  *footstep.Settings
	Pool      footstep.PoolConfig
	Sound     footstep.SoundEmitter
	Particles footstep.ParticleEmitter
	// Tickers run after the pool update every step, e.g. the particle
	// system and the diagnostics overlay.
	Tickers  []func(dt time.Duration)
	Assets   *assets.Manager
	Surfaces assets.SurfaceResolver
}

// World is the simulation world root. It hosts the footstep pool.
type World struct {
	netMode footstep.NetMode
	pool    *footstep.Pool
	physics *physics.World
}

// NetMode implements footstep.World.
func (w *World) NetMode() footstep.NetMode { return w.netMode }

// PoolingHost implements footstep.World.
func (w *World) PoolingHost() footstep.PoolingHost { return w }

// PoolingManager implements footstep.PoolingHost.
func (w *World) PoolingManager() *footstep.Pool { return w.pool }

// Physics returns the collision world.
func (w *World) Physics() *physics.World { return w.physics }

// Stats counts notify outcomes.
type Stats struct {
	Elapsed      time.Duration
	Notifies     int
	Outcomes     map[footstep.Outcome]int
	ConfigErrors int
}

// Sim is a running simulation. It is driven from one goroutine.
type Sim struct {
	world      *World
	characters []*Character
	tickers    []func(dt time.Duration)
	elapsed    time.Duration

	mu        sync.Mutex
	stats     Stats
	recent    []footstep.Generated
	listeners []func(footstep.Generated)
}

// New builds a simulation from a scene.
func New(scene *Scene, opts Options) (*Sim, error) {
	if opts.Settings == nil {
		return nil, errors.New("sim: settings are required")
	}
	mode, err := ParseNetMode(scene.NetMode)
	if err != nil {
		return nil, err
	}

	s := &Sim{
		world: &World{
			netMode: mode,
			pool:    footstep.NewPool(opts.Pool, opts.Sound, opts.Particles),
			physics: physics.NewWorld(),
		},
		tickers: opts.Tickers,
		stats:   Stats{Outcomes: make(map[footstep.Outcome]int)},
	}

	if err := s.buildLevel(scene, opts.Surfaces); err != nil {
		return nil, err
	}
	for i, spec := range scene.Characters {
		c, err := s.spawnCharacter(physics.ActorID(i+1), spec, opts)
		if err != nil {
			return nil, err
		}
		s.characters = append(s.characters, c)
	}

	logger.Info("simulation ready",
		zap.String("net_mode", mode.String()),
		zap.Int("colliders", s.world.physics.Len()),
		zap.Int("characters", len(s.characters)),
	)
	return s, nil
}

func (s *Sim) buildLevel(scene *Scene, surfaces assets.SurfaceResolver) error {
	owner := floorOwnerBase
	material := func(surface, name string) (*physics.Material, error) {
		if surface == "" {
			return nil, nil
		}
		id, ok := surfaces(surface)
		if !ok {
			return nil, fmt.Errorf("sim: unknown surface %q", surface)
		}
		if name == "" {
			name = "PM_" + surface
		}
		return &physics.Material{Name: name, Surface: id}, nil
	}

	for i, p := range scene.Floor {
		mat, err := material(p.Surface, p.Material)
		if err != nil {
			return err
		}
		bounds := physics.NewAABB(
			math.Vec3{X: p.Min.X, Y: p.Min.Y, Z: p.Z - 1},
			math.Vec3{X: p.Max.X, Y: p.Max.Y, Z: p.Z + 1},
		)
		owner++
		s.world.physics.Add(physics.Collider{
			Shape: physics.Plane{Point: math.Vec3{Z: p.Z}, Normal: math.UnitZ, Bounds: &bounds},
			Body:  &physics.Body{Name: fmt.Sprintf("Floor%d", i), Owner: owner, DefaultMaterial: mat},
		})
	}
	for i, o := range scene.Obstacles {
		mat, err := material(o.Surface, o.Material)
		if err != nil {
			return err
		}
		owner++
		s.world.physics.Add(physics.Collider{
			Shape:    physics.Box{Bounds: physics.NewAABB(o.Min, o.Max)},
			Body:     &physics.Body{Name: fmt.Sprintf("Obstacle%d", i), Owner: owner},
			Material: mat,
		})
	}
	return nil
}

func (s *Sim) spawnCharacter(id physics.ActorID, spec CharacterSpec, opts Options) (*Character, error) {
	profile, ok := opts.Assets.Profile(spec.Profile)
	if !ok {
		return nil, fmt.Errorf("sim: character %s: %w: profile %q", spec.Name, assets.ErrNotFound, spec.Profile)
	}
	cfg, err := opts.Assets.ComponentConfig(profile, id, opts.Surfaces)
	if err != nil {
		return nil, fmt.Errorf("sim: character %s: %w", spec.Name, err)
	}

	name := spec.Name
	if name == "" {
		name = profile.Name
	}
	c := &Character{
		id:       id,
		name:     name,
		world:    s.world,
		sockets:  profile.Sockets,
		location: spec.Path[0],
		path:     spec.Path,
		target:   1 % len(spec.Path),
		speed:    spec.Speed,
		stride:   spec.Stride,
		next:     spec.Stride,
	}
	c.component = footstep.NewComponent(opts.Settings, s.world.physics, cfg)
	c.component.Subscribe(s.record)

	sockets := spec.Sockets
	if len(sockets) == 0 {
		sockets = []string{""}
	}
	for _, socket := range sockets {
		n := footstep.NewNotify(opts.Settings)
		if spec.Category != "" {
			n.Category = footstep.Category(spec.Category)
		}
		n.FootSocket = socket
		n.TraceFromSocket = socket != ""
		n.Direction = spec.Direction
		c.notifies = append(c.notifies, n)
	}
	return c, nil
}

// Step advances the simulation by dt: characters move, due footsteps fire,
// then the pool and tickers update.
func (s *Sim) Step(dt time.Duration) {
	s.elapsed += dt
	for _, c := range s.characters {
		c.move(dt)
		for {
			n, ok := c.due(s.elapsed)
			if !ok {
				break
			}
			s.fire(c, n)
		}
	}

	s.world.pool.Update(dt)
	for _, tick := range s.tickers {
		tick(dt)
	}

	s.mu.Lock()
	s.stats.Elapsed = s.elapsed
	s.mu.Unlock()
}

// Run steps the simulation for d in increments of dt.
func (s *Sim) Run(d, dt time.Duration) {
	for end := s.elapsed + d; s.elapsed < end; {
		s.Step(dt)
	}
}

func (s *Sim) fire(c *Character, n *footstep.Notify) {
	res, err := n.Notify(c, "Locomotion")

	s.mu.Lock()
	s.stats.Notifies++
	s.stats.Outcomes[res.Outcome]++
	if err != nil {
		s.stats.ConfigErrors++
	}
	s.mu.Unlock()

	if err != nil {
		logger.Error("footstep notify failed",
			zap.String("character", c.name),
			zap.String("notify", n.Name()),
			zap.Error(err),
		)
		return
	}
	logger.Debug("footstep notify",
		zap.String("character", c.name),
		zap.String("notify", n.Name()),
		zap.Stringer("outcome", res.Outcome),
		zap.Stringer("stage", res.Stage),
	)
}

func (s *Sim) record(ev footstep.Generated) {
	s.mu.Lock()
	s.recent = append(s.recent, ev)
	if len(s.recent) > recentEvents {
		s.recent = s.recent[len(s.recent)-recentEvents:]
	}
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// Subscribe registers fn for every footstep generated in the simulation.
func (s *Sim) Subscribe(fn func(footstep.Generated)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners[:len(s.listeners):len(s.listeners)], fn)
}

// World returns the world root.
func (s *Sim) World() *World { return s.world }

// Characters returns the simulated characters.
func (s *Sim) Characters() []*Character { return s.characters }

// Elapsed returns the simulated time.
func (s *Sim) Elapsed() time.Duration { return s.elapsed }

// Stats returns a copy of the outcome counters.
func (s *Sim) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.Outcomes = make(map[footstep.Outcome]int, len(s.stats.Outcomes))
	for k, v := range s.stats.Outcomes {
		out.Outcomes[k] = v
	}
	return out
}

// Recent returns the last generated footsteps, oldest first.
func (s *Sim) Recent() []footstep.Generated {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]footstep.Generated, len(s.recent))
	copy(out, s.recent)
	return out
}
