package footstep

import (
	"time"

	"github.com/Faultbox/surface-footsteps/internal/diagnostics"
	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

const (
	surfaceConcrete physics.SurfaceType = 1
	surfaceGrass    physics.SurfaceType = 2
	surfaceWater    physics.SurfaceType = 3
)

var (
	pmConcrete = &physics.Material{Name: "PM_Concrete", Surface: surfaceConcrete}
	pmGrass    = &physics.Material{Name: "PM_Grass", Surface: surfaceGrass}
	pmWater    = &physics.Material{Name: "PM_Water", Surface: surfaceWater}
)

type fakeWorld struct {
	mode NetMode
	host PoolingHost
}

func (w *fakeWorld) NetMode() NetMode { return w.mode }
func (w *fakeWorld) PoolingHost() PoolingHost { return w.host }

type poolHost struct{ pool *Pool }

func (h poolHost) PoolingManager() *Pool { return h.pool }

type capable struct{ comp *Component }

func (c capable) FootstepComponent() *Component { return c.comp }

type fakeOwner struct {
	id      physics.ActorID
	label   string
	capable FootstepCapable
}

func (o *fakeOwner) ActorID() physics.ActorID { return o.id }
func (o *fakeOwner) Label() string { return o.label }
func (o *fakeOwner) FootstepCapability() FootstepCapable { return o.capable }

type fakeMesh struct {
	world     World
	owner     Owner
	transform math.Transform
	sockets   map[string]math.Transform
}

func (m *fakeMesh) World() World { return m.world }
func (m *fakeMesh) Owner() Owner { return m.owner }
func (m *fakeMesh) Transform() math.Transform { return m.transform }
func (m *fakeMesh) SocketTransform(name string) (math.Transform, bool) {
	t, ok := m.sockets[name]
	return t, ok
}

// scriptedTracer returns a fixed hit and records every query.
type scriptedTracer struct {
	hit     physics.Hit
	queries []traceQuery
}

type traceQuery struct {
	start, dir math.Vec3
	length     float32
	ignore     []physics.ActorID
}

func (s *scriptedTracer) LineTrace(start, dir math.Vec3, length float32, ignore []physics.ActorID) physics.Hit {
	s.queries = append(s.queries, traceQuery{start, dir, length, append([]physics.ActorID(nil), ignore...)})
	return s.hit
}

type stopCounter struct{ stops int }

func (s *stopCounter) Stop() { s.stops++ }

type playedSound struct {
	params SoundParams
	at     math.Transform
	voice  *stopCounter
}

type recordingSound struct{ played []playedSound }

func (r *recordingSound) PlaySound(p SoundParams, at math.Transform) (Voice, error) {
	v := &stopCounter{}
	r.played = append(r.played, playedSound{p, at, v})
	return v, nil
}

type spawnedParticle struct {
	params ParticleParams
	at     math.Transform
}

type recordingParticles struct{ spawned []spawnedParticle }

func (r *recordingParticles) SpawnParticle(p ParticleParams, at math.Transform) (Effect, error) {
	r.spawned = append(r.spawned, spawnedParticle{p, at})
	return &stopCounter{}, nil
}

// rig is a complete host around one character.
type rig struct {
	settings  *Settings
	diag      *diagnostics.Recorder
	tracer    *scriptedTracer
	sound     *recordingSound
	particles *recordingParticles
	pool      *Pool
	world     *fakeWorld
	owner     *fakeOwner
	comp      *Component
	mesh      *fakeMesh
	notify    *Notify
}

func concreteAsset() *DataAsset {
	d := NewDataAsset("DA_Concrete")
	d.Volume = 0.8
	d.LifeSpan = time.Second
	d.FX["Walk"] = CategoryFX{Sound: "S1"}
	d.FX["Run"] = CategoryFX{Sound: "S_run", Particle: "P_dust"}
	d.FX["Land"] = CategoryFX{}
	return d
}

func newRig(categories ...string) *rig {
	cat, err := NewCatalog(categories...)
	if err != nil {
		panic(err)
	}
	r := &rig{
		diag:      &diagnostics.Recorder{},
		sound:     &recordingSound{},
		particles: &recordingParticles{},
	}
	r.settings = &Settings{Catalog: cat, Diagnostics: r.diag, DebugMessageDuration: 2 * time.Second}
	r.tracer = &scriptedTracer{hit: physics.Hit{
		Blocking:     true,
		ImpactPoint:  math.Vec3{X: 10, Y: 20, Z: 0},
		ImpactNormal: math.UnitZ,
		Material:     pmConcrete,
		Body:         &physics.Body{Name: "Ground"},
	}}
	r.pool = NewPool(PoolConfig{}, r.sound, r.particles)
	r.world = &fakeWorld{mode: NetStandalone, host: poolHost{r.pool}}
	r.comp = NewComponent(r.settings, r.tracer, ComponentConfig{
		Owner:       42,
		FX:          map[physics.SurfaceType]*DataAsset{surfaceConcrete: concreteAsset()},
		TraceLength: 50,
	})
	r.owner = &fakeOwner{id: 42, label: "BP_Hero", capable: capable{r.comp}}
	r.mesh = &fakeMesh{
		world:     r.world,
		owner:     r.owner,
		transform: math.NewTransform(math.QuatIdentity(), math.Vec3{X: 10, Y: 20, Z: 90}),
		sockets: map[string]math.Transform{
			"foot_L": math.NewTransform(math.QuatIdentity(), math.Vec3{X: 10, Y: 15, Z: 5}),
		},
	}
	r.notify = NewNotify(r.settings)
	return r
}
