package footstep

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/surface-footsteps/internal/diagnostics"
	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// assertNoSideEffects checks that nothing was spawned or played.
func assertNoSideEffects(t *testing.T, r *rig) {
	t.Helper()
	if r.pool.Len() != 0 {
		t.Errorf("pool has %d actors, want untouched pool", r.pool.Len())
	}
	if len(r.sound.played) != 0 || len(r.particles.spawned) != 0 {
		t.Errorf("effects started: %d sounds, %d particles", len(r.sound.played), len(r.particles.spawned))
	}
}

func TestNotifyNameAndDefaults(t *testing.T) {
	r := newRig("Walk", "Run")
	n := r.notify

	if n.Category != "Walk" {
		t.Errorf("default category = %q, want first catalog entry", n.Category)
	}
	if n.Direction != TraceDown {
		t.Errorf("default direction = %v", n.Direction)
	}
	if n.Name() != "SurfaceFootstep" {
		t.Errorf("Name = %q", n.Name())
	}

	n.TraceFromSocket = true
	if n.TraceFromFootSocket() || n.Name() != "SurfaceFootstep" {
		t.Error("socket tracing requires a socket name")
	}
	n.FootSocket = "foot_L"
	if !n.TraceFromFootSocket() || n.Name() != "SurfaceFootstep_foot_L" {
		t.Errorf("Name = %q, TraceFromFootSocket = %v", n.Name(), n.TraceFromFootSocket())
	}

	empty := newRig()
	if empty.notify.Category != NoCategory {
		t.Errorf("empty catalog default = %q", empty.notify.Category)
	}
}

// Scenario A.
func TestNotifySpawnsFootstep(t *testing.T) {
	r := newRig("Walk", "Run")
	r.notify.FootSocket = "foot_L"
	r.notify.TraceFromSocket = true

	var events []Generated
	r.comp.Subscribe(func(ev Generated) { events = append(events, ev) })

	res, err := r.notify.Notify(r.mesh, "Walk_Fwd")
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if res.Outcome != OutcomeSpawned || res.Stage != StageIdle {
		t.Fatalf("result = %v at %v", res.Outcome, res.Stage)
	}

	if r.pool.Len() != 1 || r.pool.ActiveCount() != 1 {
		t.Fatalf("pool size %d active %d, want 1/1", r.pool.Len(), r.pool.ActiveCount())
	}
	a := r.pool.ActiveInstance()
	if a != res.Actor || a.State() != ActorActive {
		t.Fatal("result actor is not the active pool instance")
	}

	tr := a.Transform()
	if tr.Location != (math.Vec3{X: 10, Y: 20, Z: 0}) {
		t.Errorf("actor location = %v, want impact point", tr.Location)
	}
	if up := tr.Rotation.Up(); !up.ApproxEqual(math.UnitZ, 1e-5) {
		t.Errorf("actor up = %v, want impact normal", up)
	}

	if len(r.sound.played) != 1 {
		t.Fatalf("played %d sounds, want 1", len(r.sound.played))
	}
	s := r.sound.played[0].params
	if s.Sound != "S1" || s.Volume != 0.8 || s.Pitch != 1 || s.Play2D {
		t.Errorf("sound params = %+v", s)
	}
	if len(r.particles.spawned) != 0 {
		t.Errorf("spawned %d particles for a sound-only entry", len(r.particles.spawned))
	}
	if a.LifeSpan() != time.Second {
		t.Errorf("lifespan = %v, want 1s", a.LifeSpan())
	}

	q := r.tracer.queries[0]
	if q.start != (math.Vec3{X: 10, Y: 15, Z: 5}) || !q.dir.ApproxEqual(math.Vec3{Z: -1}, 1e-6) {
		t.Errorf("trace from %v along %v, want foot_L downwards", q.start, q.dir)
	}

	if len(events) != 1 || res.Event == nil {
		t.Fatalf("published %d events", len(events))
	}
	ev := events[0]
	if ev.ID == "" || ev.Surface != surfaceConcrete || ev.Material != "PM_Concrete" ||
		ev.Asset != "DA_Concrete" || ev.Category != "Walk" || ev.Owner != "BP_Hero" || ev.Animation != "Walk_Fwd" {
		t.Errorf("event = %+v", ev)
	}
	if r.diag.Count(diagnostics.SeverityError) != 0 {
		t.Errorf("unexpected errors: %+v", r.diag.Messages())
	}
}

func TestNotifySpawnsParticle(t *testing.T) {
	r := newRig("Walk", "Run")
	r.notify.Category = "Run"
	r.comp = NewComponent(r.settings, r.tracer, ComponentConfig{
		FX:                map[physics.SurfaceType]*DataAsset{surfaceConcrete: concreteAsset()},
		TraceLength:       50,
		LocallyControlled: func() bool { return true },
	})
	r.owner.capable = capable{r.comp}

	res, err := r.notify.Notify(r.mesh, "Run_Fwd")
	if err != nil || res.Outcome != OutcomeSpawned {
		t.Fatalf("Notify = %v, %v", res.Outcome, err)
	}
	if len(r.particles.spawned) != 1 || r.particles.spawned[0].params.Particle != "P_dust" {
		t.Fatalf("particles = %+v", r.particles.spawned)
	}
	if scale := r.particles.spawned[0].params.RelativeScale; scale != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("particle scale = %v", scale)
	}
	if !r.sound.played[0].params.Play2D {
		t.Error("locally controlled owner should play 2D")
	}
}

// Scenario B.
func TestNotifyEmptyCatalog(t *testing.T) {
	r := newRig()
	r.notify.Category = "Walk"

	res, err := r.notify.Notify(r.mesh, "Walk_Fwd")
	if !errors.Is(err, ErrNoCategories) || !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrNoCategories", err)
	}
	if res.Outcome != OutcomeConfigError || res.Stage != StageValidating {
		t.Errorf("result = %v at %v", res.Outcome, res.Stage)
	}
	if r.diag.Count(diagnostics.SeverityError) != 1 {
		t.Errorf("reported %d errors, want 1", r.diag.Count(diagnostics.SeverityError))
	}
	if len(r.tracer.queries) != 0 {
		t.Error("traced despite configuration error")
	}
	assertNoSideEffects(t, r)
}

func TestNotifyUnknownCategory(t *testing.T) {
	for _, cat := range []Category{"Jump", "walk", NoCategory} {
		t.Run(string(cat), func(t *testing.T) {
			r := newRig("Walk", "Run")
			r.notify.Category = cat

			res, err := r.notify.Notify(r.mesh, "Jump")
			if !errors.Is(err, ErrUnknownCategory) {
				t.Fatalf("err = %v, want ErrUnknownCategory", err)
			}
			if res.Outcome != OutcomeConfigError {
				t.Errorf("outcome = %v", res.Outcome)
			}
			msgs := r.diag.Messages()
			if len(msgs) != 1 || !strings.Contains(msgs[0].Text, "category is invalid") {
				t.Errorf("messages = %+v", msgs)
			}
			assertNoSideEffects(t, r)
		})
	}
}

// Scenario C.
func TestNotifyMissingPoolingHost(t *testing.T) {
	tests := []struct {
		name string
		host PoolingHost
	}{
		{"no host", nil},
		{"host returns nil", poolHost{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig("Walk")
			r.world.host = tt.host

			res, err := r.notify.Notify(r.mesh, "Walk_Fwd")
			if !errors.Is(err, ErrNoPoolingHost) {
				t.Fatalf("err = %v, want ErrNoPoolingHost", err)
			}
			if res.Outcome != OutcomeConfigError {
				t.Errorf("outcome = %v", res.Outcome)
			}
			if r.diag.Count(diagnostics.SeverityError) != 1 {
				t.Error("configuration error not reported")
			}
			if len(r.tracer.queries) != 0 {
				t.Error("traced despite configuration error")
			}
			assertNoSideEffects(t, r)
		})
	}
}

// Scenario D and the other silent exits.
func TestNotifySilentExits(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *rig)
		outcome Outcome
		stage   Stage
	}{
		{"dedicated server", func(r *rig) { r.world.mode = NetDedicatedServer }, OutcomeNoClientEffects, StageValidating},
		{"no world", func(r *rig) { r.mesh.world = nil }, OutcomeNotCapable, StageValidating},
		{"no owner", func(r *rig) { r.mesh.owner = nil }, OutcomeNotCapable, StageValidating},
		{"owner not capable", func(r *rig) { r.owner.capable = nil }, OutcomeNotCapable, StageValidating},
		{"no component", func(r *rig) { r.owner.capable = capable{nil} }, OutcomeNoComponent, StageValidating},
		{"no blocking hit", func(r *rig) { r.tracer.hit = physics.Hit{} }, OutcomeNoHit, StageTracing},
		{"no surface", func(r *rig) {
			r.tracer.hit.Material = nil
			r.tracer.hit.Body = &physics.Body{}
		}, OutcomeNoSurface, StageResolving},
		{"no data asset for surface", func(r *rig) { r.tracer.hit.Material = pmWater }, OutcomeNoData, StageResolving},
		{"no sound or particle", func(r *rig) { r.notify.Category = "Land" }, OutcomeNoEffect, StageResolving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig("Walk", "Run", "Land")
			tt.mutate(r)

			res, err := r.notify.Notify(r.mesh, "Walk_Fwd")
			if err != nil {
				t.Fatalf("silent exit returned error: %v", err)
			}
			if res.Outcome != tt.outcome || res.Stage != tt.stage {
				t.Errorf("result = %v at %v, want %v at %v", res.Outcome, res.Stage, tt.outcome, tt.stage)
			}
			if len(r.diag.Messages()) != 0 {
				t.Errorf("silent exit reported %+v", r.diag.Messages())
			}
			assertNoSideEffects(t, r)
		})
	}
}

func TestNotifyFallsBackToDefaultSurface(t *testing.T) {
	r := newRig("Walk")
	r.tracer.hit.Material = nil
	r.tracer.hit.Body = &physics.Body{DefaultMaterial: pmConcrete}

	res, err := r.notify.Notify(r.mesh, "Walk_Fwd")
	if err != nil || res.Outcome != OutcomeSpawned {
		t.Fatalf("Notify = %v, %v", res.Outcome, err)
	}
	if res.Event.Surface != surfaceConcrete {
		t.Errorf("surface = %v, want body default", res.Event.Surface)
	}
}

// Scenario E.
func TestNotifyReusesIdleActor(t *testing.T) {
	r := newRig("Walk")

	first, err := r.notify.Notify(r.mesh, "Walk_Fwd")
	if err != nil || first.Outcome != OutcomeSpawned {
		t.Fatalf("first = %v, %v", first.Outcome, err)
	}
	r.pool.Update(time.Second)
	if first.Actor.State() != ActorIdle {
		t.Fatal("first actor still active after lifespan")
	}

	second, err := r.notify.Notify(r.mesh, "Walk_Fwd")
	if err != nil || second.Outcome != OutcomeSpawned {
		t.Fatalf("second = %v, %v", second.Outcome, err)
	}
	if second.Actor != first.Actor {
		t.Error("second footstep allocated a new actor instead of reusing the idle one")
	}
	if r.pool.Len() != 1 {
		t.Errorf("pool size = %d, want 1", r.pool.Len())
	}

	// Overlapping footsteps need a second actor.
	third, _ := r.notify.Notify(r.mesh, "Walk_Fwd")
	if third.Actor == second.Actor {
		t.Error("active actor reused while its effect is still playing")
	}
}

func TestNotifyPoolExhausted(t *testing.T) {
	r := newRig("Walk")
	r.pool = NewPool(PoolConfig{MaxSize: 1}, r.sound, r.particles)
	r.world.host = poolHost{r.pool}

	if res, _ := r.notify.Notify(r.mesh, "a"); res.Outcome != OutcomeSpawned {
		t.Fatalf("first outcome = %v", res.Outcome)
	}
	res, err := r.notify.Notify(r.mesh, "a")
	if err != nil || res.Outcome != OutcomePoolExhausted || res.Stage != StageSpawning {
		t.Errorf("second = %v at %v, %v", res.Outcome, res.Stage, err)
	}
}

func TestNotifyDebugMessage(t *testing.T) {
	r := newRig("Walk")
	r.comp = NewComponent(r.settings, r.tracer, ComponentConfig{
		FX:          map[physics.SurfaceType]*DataAsset{surfaceConcrete: concreteAsset()},
		TraceLength: 50,
		ShowDebug:   true,
	})
	r.owner.capable = capable{r.comp}

	if _, err := r.notify.Notify(r.mesh, "Walk_Fwd"); err != nil {
		t.Fatal(err)
	}
	msgs := r.diag.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	want := "PhysMat: PM_Concrete, DataAsset: DA_Concrete, Anim: Walk_Fwd, Category: Walk, Socket: ROOT, Owner: BP_Hero"
	if msgs[0].Text != want {
		t.Errorf("debug line = %q, want %q", msgs[0].Text, want)
	}
	if msgs[0].Duration != 2*time.Second || msgs[0].Severity != diagnostics.SeverityInfo {
		t.Errorf("message = %+v", msgs[0])
	}

	r.settings.Shipping = true
	r.diag = &diagnostics.Recorder{}
	r.settings.Diagnostics = r.diag
	if _, err := r.notify.Notify(r.mesh, "Walk_Fwd"); err != nil {
		t.Fatal(err)
	}
	if len(r.diag.Messages()) != 0 {
		t.Error("shipping build printed debug output")
	}
}

func TestOutcomeAndStageNames(t *testing.T) {
	if OutcomeNoData.String() != "no_data" || Outcome(99).String() != "Outcome(99)" {
		t.Error("unexpected outcome names")
	}
	if StageTracing.String() != "tracing" || StageIdle.String() != "idle" {
		t.Error("unexpected stage names")
	}
	if NetDedicatedServer.HasClientEffects() || !NetClient.HasClientEffects() {
		t.Error("unexpected client effects flags")
	}
}
