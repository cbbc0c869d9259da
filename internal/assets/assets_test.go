package assets

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"footsteps/concrete.yaml": {Data: []byte(`
name: DA_Concrete
volume: 0.8
pitch: 1.1
particle_scale: {x: 2, y: 2, z: 1}
lifespan: 1500ms
attenuation: footstep
concurrency: footsteps
fx:
  Walk: {sound: sounds/concrete_walk.wav}
  Run: {sound: sounds/concrete_run.wav, particle: dust}
`)},
		"footsteps/grass.yaml": {Data: []byte(`
fx:
  Walk: {sound: sounds/grass.wav, particle: leaves}
  Crawl: {sound: sounds/grass.wav}
`)},
		"characters/hero.yaml": {Data: []byte(`
name: Hero
trace_length: 50
show_debug: true
locally_controlled: true
sockets:
  foot_l: {x: 0, y: -10, z: 5}
  foot_r: {x: 0, y: 10, z: 5}
surfaces:
  Concrete: DA_Concrete
  Default: grass
`)},
		"sounds/grass.wav": {Data: []byte("RIFF")},
	}
}

func newCatalog(t *testing.T) *footstep.Catalog {
	t.Helper()
	c, err := footstep.NewCatalog("Walk", "Run")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func surfaces(name string) (physics.SurfaceType, bool) {
	switch name {
	case "Default":
		return physics.SurfaceDefault, true
	case "Concrete":
		return 1, true
	}
	return 0, false
}

func TestLoadDataAssets(t *testing.T) {
	m := NewManager(testFS())
	if err := m.LoadDataAssets(newCatalog(t)); err != nil {
		t.Fatalf("LoadDataAssets: %v", err)
	}

	if got := m.DataAssetNames(); len(got) != 2 || got[0] != "DA_Concrete" || got[1] != "grass" {
		t.Fatalf("names = %v", got)
	}

	c, _ := m.DataAsset("DA_Concrete")
	if c.Volume != 0.8 || c.Pitch != 1.1 {
		t.Errorf("volume/pitch = %v/%v", c.Volume, c.Pitch)
	}
	if c.ParticleScale != (math.Vec3{X: 2, Y: 2, Z: 1}) {
		t.Errorf("ParticleScale = %v", c.ParticleScale)
	}
	if c.LifeSpan != 1500*time.Millisecond {
		t.Errorf("LifeSpan = %v", c.LifeSpan)
	}
	if c.AttenuationOverride != "footstep" || c.ConcurrencyOverride != "footsteps" {
		t.Errorf("overrides = %q/%q", c.AttenuationOverride, c.ConcurrencyOverride)
	}
	if e, ok := c.LookupEntry("Run"); !ok || e.Sound != "sounds/concrete_run.wav" || e.Particle != "dust" {
		t.Errorf("Run entry = %+v, %v", e, ok)
	}

	// Unset fields keep the defaults; unknown categories are kept.
	g, _ := m.DataAsset("grass")
	if g.Volume != footstep.DefaultVolume || g.LifeSpan != footstep.DefaultLifeSpan {
		t.Errorf("grass defaults = %v/%v", g.Volume, g.LifeSpan)
	}
	if g.Sound("Crawl") != "sounds/grass.wav" {
		t.Error("expected unknown category to be kept")
	}

	refs := m.SoundRefs()
	want := []footstep.SoundRef{"sounds/concrete_run.wav", "sounds/concrete_walk.wav", "sounds/grass.wav"}
	if len(refs) != len(want) {
		t.Fatalf("SoundRefs = %v", refs)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("SoundRefs[%d] = %q, want %q", i, refs[i], want[i])
		}
	}
}

func TestLoadDataAssetsErrors(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
	}{
		{"unknown field", fstest.MapFS{
			"footsteps/bad.yaml": {Data: []byte("volum: 0.5\n")},
		}},
		{"invalid yaml", fstest.MapFS{
			"footsteps/bad.yaml": {Data: []byte("fx: [unclosed\n")},
		}},
		{"duplicate name", fstest.MapFS{
			"footsteps/a.yaml": {Data: []byte("name: Same\n")},
			"footsteps/b.yaml": {Data: []byte("name: Same\n")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.fs)
			if err := m.LoadDataAssets(nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadProfiles(t *testing.T) {
	m := NewManager(testFS())
	if err := m.LoadDataAssets(newCatalog(t)); err != nil {
		t.Fatalf("LoadDataAssets: %v", err)
	}
	if err := m.LoadProfiles(); err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}

	p, ok := m.Profile("Hero")
	if !ok {
		t.Fatalf("profiles = %v", m.ProfileNames())
	}
	if p.TraceLength != 50 || !p.ShowDebug || !p.LocallyControlled {
		t.Errorf("profile = %+v", p)
	}
	if p.Sockets["foot_r"] != (math.Vec3{Y: 10, Z: 5}) {
		t.Errorf("foot_r = %v", p.Sockets["foot_r"])
	}

	cfg, err := m.ComponentConfig(p, 7, surfaces)
	if err != nil {
		t.Fatalf("ComponentConfig: %v", err)
	}
	if cfg.Owner != 7 || cfg.TraceLength != 50 || !cfg.ShowDebug {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.LocallyControlled == nil || !cfg.LocallyControlled() {
		t.Error("expected locally controlled callback")
	}
	if cfg.FX[1].Name != "DA_Concrete" || cfg.FX[physics.SurfaceDefault].Name != "grass" {
		t.Errorf("FX = %v", cfg.FX)
	}
}

func TestComponentConfigErrors(t *testing.T) {
	m := NewManager(testFS())
	m.LoadDataAssets(newCatalog(t))

	_, err := m.ComponentConfig(&Profile{Name: "x", Surfaces: map[string]string{"Lava": "grass"}}, 1, surfaces)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown surface: err = %v", err)
	}
	_, err = m.ComponentConfig(&Profile{Name: "x", Surfaces: map[string]string{"Concrete": "DA_Missing"}}, 1, surfaces)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown asset: err = %v", err)
	}
}

func TestLoadCaches(t *testing.T) {
	m := NewManager(testFS())

	for range 3 {
		data, err := m.Load("/sounds/grass.wav")
		if err != nil || string(data) != "RIFF" {
			t.Fatalf("Load = %q, %v", data, err)
		}
	}
	if hits, misses := m.Cache().Stats(); hits != 2 || misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", hits, misses)
	}

	if _, err := m.Load("sounds/missing.wav"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: err = %v", err)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	c.Set("a", []byte{1})
	if _, ok := c.Get("a"); !ok {
		t.Error("expected hit")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected miss")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
	c.Clear()
	if hits, misses := c.Stats(); hits != 0 || misses != 0 || c.Len() != 0 {
		t.Errorf("after Clear: %d/%d/%d", hits, misses, c.Len())
	}
}
