// Package particle simulates footstep particle bursts such as dust and
// splashes.
package particle

import (
	"errors"
	"fmt"
	stdmath "math"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// Gravity pulls particles down the world Z axis, in units per second squared.
const Gravity = 980

// ErrUnknownTemplate is returned when spawning a particle that has no template.
var ErrUnknownTemplate = errors.New("unknown particle template")

// Template describes one kind of burst.
type Template struct {
	Count    int
	Lifetime time.Duration
	Speed    float32
	Size     float32
}

// Particle is a single simulated point.
type Particle struct {
	Position math.Vec3
	Velocity math.Vec3
	Size     float32
}

// Effect is a live burst. It implements footstep.Effect.
type Effect struct {
	system    *System
	name      footstep.ParticleRef
	origin    math.Transform
	particles []Particle
	age       time.Duration
	lifetime  time.Duration
	stopped   bool
}

// Stop retires the effect on the next Update.
func (e *Effect) Stop() {
	e.system.mu.Lock()
	defer e.system.mu.Unlock()
	e.stopped = true
}

// Name returns the template name.
func (e *Effect) Name() footstep.ParticleRef { return e.name }

// Origin returns the spawn transform.
func (e *Effect) Origin() math.Transform { return e.origin }

// Stats counts effects handled by a system.
type Stats struct {
	Spawned int
	Retired int
	Live    int
}

// System owns every live effect. It implements footstep.ParticleEmitter.
type System struct {
	mu        sync.Mutex
	templates map[footstep.ParticleRef]Template
	effects   []*Effect
	rng       *rand.Rand
	spawned   int
	retired   int
}

// NewSystem creates a system with the given templates. The seed makes
// bursts reproducible.
func NewSystem(templates map[footstep.ParticleRef]Template, seed uint64) *System {
	return &System{
		templates: templates,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SpawnParticle starts a burst at the given transform. Particles leave
// along the transform's up axis; the relative scale stretches their
// velocity per local axis and scales their size.
func (s *System) SpawnParticle(p footstep.ParticleParams, at math.Transform) (footstep.Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpl, ok := s.templates[p.Particle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, p.Particle)
	}

	scale := p.RelativeScale
	if scale.IsZero() {
		scale = math.Vec3{X: 1, Y: 1, Z: 1}
	}
	size := tmpl.Size * (scale.X + scale.Y + scale.Z) / 3

	e := &Effect{
		system:    s,
		name:      p.Particle,
		origin:    at,
		particles: make([]Particle, tmpl.Count),
		lifetime:  tmpl.Lifetime,
	}
	for i := range e.particles {
		local := s.emitDirection().Scale(tmpl.Speed).Mul(scale)
		e.particles[i] = Particle{
			Position: at.Location,
			Velocity: at.Rotation.Rotate(local),
			Size:     size,
		}
	}
	s.effects = append(s.effects, e)
	s.spawned++

	logger.Debug("particle spawned",
		zap.String("particle", string(p.Particle)),
		zap.Int("count", tmpl.Count),
	)
	return e, nil
}

// emitDirection returns a random unit vector in the local upper hemisphere.
func (s *System) emitDirection() math.Vec3 {
	angle := s.rng.Float64() * 2 * stdmath.Pi
	spread := float32(s.rng.Float64())
	dir := math.Vec3{
		X: spread * float32(stdmath.Cos(angle)),
		Y: spread * float32(stdmath.Sin(angle)),
		Z: 1,
	}
	return dir.Normalize()
}

// Update advances every effect by dt and retires finished or stopped ones.
// It returns the number retired.
func (s *System) Update(dt time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	secs := float32(dt.Seconds())
	live := s.effects[:0]
	retired := 0
	for _, e := range s.effects {
		e.age += dt
		if e.stopped || e.age >= e.lifetime {
			retired++
			continue
		}
		for i := range e.particles {
			pt := &e.particles[i]
			pt.Velocity.Z -= Gravity * secs
			pt.Position = pt.Position.Add(pt.Velocity.Scale(secs))
		}
		live = append(live, e)
	}
	clear(s.effects[len(live):])
	s.effects = live
	s.retired += retired
	return retired
}

// Live returns the number of live effects.
func (s *System) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.effects)
}

// Particles returns a copy of every live particle.
func (s *System) Particles() []Particle {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Particle
	for _, e := range s.effects {
		out = append(out, e.particles...)
	}
	return out
}

// Stats returns effect counters.
func (s *System) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Spawned: s.spawned, Retired: s.retired, Live: len(s.effects)}
}
