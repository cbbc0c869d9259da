package footstep

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/logger"
)

// ErrPoolExhausted is returned when every actor is busy and the pool is at
// its size limit.
var ErrPoolExhausted = errors.New("footstep pool exhausted")

// PoolConfig sizes a pool.
type PoolConfig struct {
	// Prewarm is the number of actors created up front.
	Prewarm int
	// MaxSize caps the number of actors. Zero means unbounded.
	MaxSize int
}

// Pool hands out footstep actors and takes them back when their lifespan
// ends. Actors are created lazily and never destroyed. Access is serialized
// by an internal mutex so hosts that fire notifies from several threads
// stay correct.
type Pool struct {
	mu sync.Mutex

	actors  []*Actor
	maxSize int

	last    Handle
	hasLast bool

	sound     SoundEmitter
	particles ParticleEmitter
}

// NewPool creates a pool whose actors play through sound and particles.
// Either emitter may be nil.
func NewPool(cfg PoolConfig, sound SoundEmitter, particles ParticleEmitter) *Pool {
	p := &Pool{
		maxSize:   cfg.MaxSize,
		sound:     sound,
		particles: particles,
	}
	for i := 0; i < cfg.Prewarm && (p.maxSize == 0 || i < p.maxSize); i++ {
		p.spawn()
	}
	return p
}

func (p *Pool) spawn() *Actor {
	a := &Actor{handle: Handle(len(p.actors)), pool: p}
	p.actors = append(p.actors, a)
	return a
}

// RequestActor returns an idle actor, creating one when none is idle. The
// actor stays reserved for the caller until it is activated.
func (p *Pool) RequestActor() (*Actor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var a *Actor
	for _, candidate := range p.actors {
		if candidate.state == ActorIdle && !candidate.claimed {
			a = candidate
			break
		}
	}
	if a == nil {
		if p.maxSize > 0 && len(p.actors) >= p.maxSize {
			return nil, ErrPoolExhausted
		}
		a = p.spawn()
		logger.Debug("footstep actor created", zap.Int("pool_size", len(p.actors)))
	}

	a.claimed = true
	p.last = a.handle
	p.hasLast = true
	return a, nil
}

// Release returns a requested actor that was never activated.
func (p *Pool) Release(a *Actor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a.state == ActorIdle {
		a.claimed = false
	}
}

// ActiveInstance returns the actor most recently handed out, or nil.
func (p *Pool) ActiveInstance() *Actor {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasLast {
		return nil
	}
	return p.actors[p.last]
}

// Actor returns the actor with handle h, or nil.
func (p *Pool) Actor(h Handle) *Actor {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(h) >= len(p.actors) {
		return nil
	}
	return p.actors[h]
}

// Update advances every active actor's lifespan by dt and returns the
// number of actors that went back to idle.
func (p *Pool) Update(dt time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	expired := 0
	for _, a := range p.actors {
		if a.tick(dt) {
			expired++
		}
	}
	return expired
}

// Len returns the number of actors ever created.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.actors)
}

// ActiveCount returns the number of active actors.
func (p *Pool) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, a := range p.actors {
		if a.state == ActorActive {
			n++
		}
	}
	return n
}

// Stats is a snapshot of pool occupancy.
type Stats struct {
	Size        int
	Active      int
	Idle        int
	Activations int
}

// Stats returns a snapshot of the pool.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Stats{Size: len(p.actors)}
	for _, a := range p.actors {
		if a.state == ActorActive {
			s.Active++
		} else {
			s.Idle++
		}
		s.Activations += a.activations
	}
	return s
}
