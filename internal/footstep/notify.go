package footstep

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/diagnostics"
	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// ErrConfiguration is the class of errors caused by project setup. Every
// error returned by Notify.Notify wraps it.
var ErrConfiguration = errors.New("footstep configuration error")

var (
	ErrNoCategories    = fmt.Errorf("%w: no footstep category", ErrConfiguration)
	ErrUnknownCategory = fmt.Errorf("%w: invalid footstep category", ErrConfiguration)
	ErrNoPoolingHost   = fmt.Errorf("%w: world has no pooling manager", ErrConfiguration)
)

// NotifyBaseName is the name of a notify that traces from the mesh root.
const NotifyBaseName = "SurfaceFootstep"

// Stage is a step of the notify pipeline.
type Stage uint8

const (
	StageIdle Stage = iota
	StageValidating
	StageTracing
	StageResolving
	StageSpawning
)

func (s Stage) String() string {
	switch s {
	case StageValidating:
		return "validating"
	case StageTracing:
		return "tracing"
	case StageResolving:
		return "resolving"
	case StageSpawning:
		return "spawning"
	default:
		return "idle"
	}
}

// Outcome says how a notify ended.
type Outcome uint8

const (
	// OutcomeSpawned means a footstep actor was activated.
	OutcomeSpawned Outcome = iota
	// OutcomeNoClientEffects means the world does not present effects.
	OutcomeNoClientEffects
	// OutcomeNotCapable means the mesh, world or owner cannot take footsteps.
	OutcomeNotCapable
	// OutcomeConfigError means validation failed; Notify also returns an error.
	OutcomeConfigError
	OutcomeNoComponent
	OutcomeNoHit
	OutcomeNoSurface
	OutcomeNoData
	OutcomeNoEffect
	// OutcomePoolExhausted means the pool was full of busy actors.
	OutcomePoolExhausted
)

var outcomeNames = [...]string{
	OutcomeSpawned:         "spawned",
	OutcomeNoClientEffects: "no_client_effects",
	OutcomeNotCapable:      "not_capable",
	OutcomeConfigError:     "config_error",
	OutcomeNoComponent:     "no_component",
	OutcomeNoHit:           "no_hit",
	OutcomeNoSurface:       "no_surface",
	OutcomeNoData:          "no_data",
	OutcomeNoEffect:        "no_effect",
	OutcomePoolExhausted:   "pool_exhausted",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", o)
}

// Result reports what a notify did.
type Result struct {
	Outcome Outcome
	// Stage is where the pipeline stopped. A spawned footstep ends in
	// StageIdle.
	Stage Stage
	// Actor is the activated actor when Outcome is OutcomeSpawned.
	Actor *Actor
	// Event is the published footstep when Outcome is OutcomeSpawned.
	Event *Generated
}

// Notify is a footstep event placed on an animation timeline. One notify
// may fire for many meshes; each call runs the whole pipeline synchronously.
type Notify struct {
	Category Category
	// FootSocket is the socket traced from when TraceFromSocket is set.
	FootSocket      string
	TraceFromSocket bool
	Direction       TraceDirection

	settings *Settings
}

// NewNotify creates a notify using the catalog's first category, tracing
// down from the mesh root.
func NewNotify(settings *Settings) *Notify {
	return &Notify{
		Category:  settings.catalog().Default(),
		Direction: TraceDown,
		settings:  settings,
	}
}

// TraceFromFootSocket reports whether the notify traces from a socket.
func (n *Notify) TraceFromFootSocket() bool {
	return n.TraceFromSocket && n.FootSocket != ""
}

// Name returns the display name, suffixed with the socket when tracing from
// one.
func (n *Notify) Name() string {
	if n.TraceFromFootSocket() {
		return NotifyBaseName + "_" + n.FootSocket
	}
	return NotifyBaseName
}

func (n *Notify) configError(err error, text string) (Result, error) {
	n.settings.sink().Report(diagnostics.Message{
		Severity: diagnostics.SeverityError,
		Text:     text,
	})
	return Result{Outcome: OutcomeConfigError, Stage: StageValidating}, err
}

// Notify runs the footstep pipeline for mesh. The returned error is non-nil
// only for configuration errors; every other early exit is reported through
// the Result outcome.
func (n *Notify) Notify(mesh Mesh, animation string) (Result, error) {
	stage := StageValidating
	exit := func(o Outcome) (Result, error) {
		return Result{Outcome: o, Stage: stage}, nil
	}

	if n.settings == nil || mesh == nil {
		return exit(OutcomeNotCapable)
	}
	world := mesh.World()
	if world == nil {
		return exit(OutcomeNotCapable)
	}
	if !world.NetMode().HasClientEffects() {
		return exit(OutcomeNoClientEffects)
	}
	owner := mesh.Owner()
	if owner == nil {
		return exit(OutcomeNotCapable)
	}
	capable := owner.FootstepCapability()
	if capable == nil {
		return exit(OutcomeNotCapable)
	}

	catalog := n.settings.catalog()
	if catalog.Count() == 0 {
		return n.configError(ErrNoCategories,
			"There is no footstep category. Add a footstep category to the categories list in the footstep settings.")
	}
	if !catalog.Contains(n.Category) {
		return n.configError(fmt.Errorf("%w %q", ErrUnknownCategory, n.Category),
			fmt.Sprintf("%q category is invalid. Add this footstep category to the footstep settings or pick a registered category on the %s notify.", n.Category, n.Name()))
	}

	var pool *Pool
	if host := world.PoolingHost(); host != nil {
		pool = host.PoolingManager()
	}
	if pool == nil {
		return n.configError(ErrNoPoolingHost,
			"The world root does not provide a footstep pooling manager. Use a world root that implements PoolingHost and returns a pool from PoolingManager.")
	}

	comp := capable.FootstepComponent()
	if comp == nil {
		return exit(OutcomeNoComponent)
	}

	stage = StageTracing
	req := TraceRequest{
		Socket:     n.FootSocket,
		FromSocket: n.TraceFromFootSocket(),
		Direction:  n.Direction,
	}
	trace := TraceFootstep(mesh, req, comp)
	if !trace.Blocking {
		return exit(OutcomeNoHit)
	}

	stage = StageResolving
	surface, ok := trace.Surface()
	if !ok {
		return exit(OutcomeNoSurface)
	}
	data := comp.FootstepData(surface)
	if data == nil {
		return exit(OutcomeNoData)
	}

	if comp.ShowDebug() && !n.settings.Shipping {
		n.reportDebug(owner, trace, data, animation)
	}

	entry, ok := data.LookupEntry(n.Category)
	if !ok {
		return exit(OutcomeNoEffect)
	}

	stage = StageSpawning
	actor, err := pool.RequestActor()
	if err != nil {
		logger.Warn("footstep dropped",
			zap.String("owner", owner.Label()),
			zap.Error(err),
		)
		return exit(OutcomePoolExhausted)
	}

	actor.SetPoolingActive(false)

	transform := math.NewTransform(math.QuatFromZ(trace.ImpactNormal), trace.ImpactPoint)
	actor.SetTransform(transform)

	play2D := comp.PlaySound2D()
	actor.InitSound(SoundParams{
		Sound:       entry.Sound,
		Volume:      entry.Volume,
		Pitch:       entry.Pitch,
		Play2D:      play2D,
		Attenuation: entry.Attenuation,
		Concurrency: entry.Concurrency,
	})
	actor.InitParticle(ParticleParams{
		Particle:      entry.Particle,
		RelativeScale: entry.ParticleScale,
	})
	actor.SetLifeSpan(entry.LifeSpan)
	actor.SetPoolingActive(true)

	ev := newGenerated()
	ev.Owner = owner.Label()
	ev.Animation = animation
	ev.Surface = surface
	ev.Material = trace.Material.Name
	ev.Asset = data.Name
	ev.Category = n.Category
	ev.Transform = transform
	ev.Volume = entry.Volume
	ev.Pitch = entry.Pitch
	ev.ParticleScale = entry.ParticleScale
	ev.Play2D = play2D
	comp.publish(ev)

	return Result{Outcome: OutcomeSpawned, Stage: StageIdle, Actor: actor, Event: &ev}, nil
}

func (n *Notify) reportDebug(owner Owner, trace TraceResult, data *DataAsset, animation string) {
	socket := "ROOT"
	if n.TraceFromFootSocket() {
		socket = n.FootSocket
	}
	text := fmt.Sprintf("PhysMat: %s, DataAsset: %s, Anim: %s, Category: %s, Socket: %s, Owner: %s",
		trace.Material.Name, data.Name, animation, n.Category, socket, owner.Label())

	n.settings.sink().Report(diagnostics.Message{
		Severity: diagnostics.SeverityInfo,
		Text:     text,
		Duration: n.settings.DebugMessageDuration,
	})
}
