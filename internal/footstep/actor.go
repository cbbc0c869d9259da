package footstep

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// SoundParams configures the sound of a footstep actor.
type SoundParams struct {
	Sound  SoundRef
	Volume float32
	Pitch  float32
	// Play2D disables spatialization.
	Play2D      bool
	Attenuation string
	Concurrency string
}

// ParticleParams configures the particle of a footstep actor.
type ParticleParams struct {
	Particle      ParticleRef
	RelativeScale math.Vec3
}

// Voice is a playing sound.
type Voice interface {
	Stop()
}

// Effect is a playing particle effect.
type Effect interface {
	Stop()
}

// SoundEmitter starts footstep sounds.
type SoundEmitter interface {
	PlaySound(p SoundParams, at math.Transform) (Voice, error)
}

// ParticleEmitter starts footstep particle effects.
type ParticleEmitter interface {
	SpawnParticle(p ParticleParams, at math.Transform) (Effect, error)
}

// ActorState is the pooling state of an actor.
type ActorState uint8

const (
	// ActorIdle actors are back in the pool.
	ActorIdle ActorState = iota
	// ActorActive actors are playing an effect until their lifespan ends.
	ActorActive
)

func (s ActorState) String() string {
	if s == ActorActive {
		return "active"
	}
	return "idle"
}

// Handle is the stable index of an actor in its pool.
type Handle uint32

// Actor is a reusable footstep effect emitter.
type Actor struct {
	handle Handle
	pool   *Pool

	state ActorState
	// claimed is set from RequestActor until activation so the actor is not
	// handed out twice.
	claimed bool

	transform math.Transform
	sound     SoundParams
	particle  ParticleParams
	lifeSpan  time.Duration
	remaining time.Duration

	voice  Voice
	effect Effect

	activations int
}

// Handle returns the actor's index in its pool.
func (a *Actor) Handle() Handle { return a.handle }

// State returns the pooling state.
func (a *Actor) State() ActorState {
	a.pool.mu.Lock()
	defer a.pool.mu.Unlock()
	return a.state
}

// Transform returns the world transform.
func (a *Actor) Transform() math.Transform { return a.transform }

// Sound returns the configured sound.
func (a *Actor) Sound() SoundParams { return a.sound }

// Particle returns the configured particle.
func (a *Actor) Particle() ParticleParams { return a.particle }

// LifeSpan returns the configured lifespan.
func (a *Actor) LifeSpan() time.Duration { return a.lifeSpan }

// Remaining returns the time left before the actor returns to the pool.
func (a *Actor) Remaining() time.Duration { return a.remaining }

// Activations returns how many times the actor has been activated.
func (a *Actor) Activations() int { return a.activations }

// SetTransform places the actor.
func (a *Actor) SetTransform(t math.Transform) {
	a.transform = t
}

// InitSound stores the sound to play on activation. An empty reference
// leaves the actor silent.
func (a *Actor) InitSound(p SoundParams) {
	a.sound = p
}

// InitParticle stores the particle to spawn on activation. An empty
// reference spawns nothing.
func (a *Actor) InitParticle(p ParticleParams) {
	a.particle = p
}

// SetLifeSpan sets how long the actor stays active. Non-positive values
// use DefaultLifeSpan so every actor eventually returns to the pool.
func (a *Actor) SetLifeSpan(d time.Duration) {
	if d <= 0 {
		d = DefaultLifeSpan
	}
	a.lifeSpan = d
}

// SetPoolingActive switches the actor between Active and Idle. Activating
// starts the configured sound and particle and the lifespan timer.
// Deactivating stops them.
func (a *Actor) SetPoolingActive(active bool) {
	a.pool.mu.Lock()
	defer a.pool.mu.Unlock()

	if !active {
		a.deactivate()
		return
	}
	a.deactivate()
	a.state = ActorActive
	a.claimed = false
	a.remaining = a.lifeSpan
	if a.remaining <= 0 {
		a.remaining = DefaultLifeSpan
	}
	a.activations++
	a.play()
}

func (a *Actor) deactivate() {
	if a.voice != nil {
		a.voice.Stop()
		a.voice = nil
	}
	if a.effect != nil {
		a.effect.Stop()
		a.effect = nil
	}
	a.state = ActorIdle
	a.remaining = 0
}

func (a *Actor) play() {
	if a.sound.Sound != "" && a.pool.sound != nil {
		v, err := a.pool.sound.PlaySound(a.sound, a.transform)
		if err != nil {
			logger.Warn("footstep sound failed",
				zap.String("sound", string(a.sound.Sound)),
				zap.Error(err),
			)
		}
		a.voice = v
	}
	if a.particle.Particle != "" && a.pool.particles != nil {
		e, err := a.pool.particles.SpawnParticle(a.particle, a.transform)
		if err != nil {
			logger.Warn("footstep particle failed",
				zap.String("particle", string(a.particle.Particle)),
				zap.Error(err),
			)
		}
		a.effect = e
	}
}

// tick advances the lifespan timer and reports whether the actor expired.
func (a *Actor) tick(dt time.Duration) bool {
	if a.state != ActorActive {
		return false
	}
	a.remaining -= dt
	if a.remaining > 0 {
		return false
	}
	a.deactivate()
	return true
}
