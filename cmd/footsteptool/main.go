// footsteptool is a CLI utility for inspecting footstep configuration and
// data assets.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Faultbox/surface-footsteps/internal/assets"
	"github.com/Faultbox/surface-footsteps/internal/config"
	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/internal/sim"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "categories", "cat":
		cmdCategories(args)
	case "assets", "ls":
		cmdAssets(args)
	case "validate", "check":
		cmdValidate(args)
	case "trace":
		cmdTrace(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`footsteptool - surface footstep data utility

Usage:
  footsteptool <command> [options]

Commands:
  categories [-config file]                  List footstep categories
  assets [-config file] [-data dir]          List data assets and their effects
  validate [-config file] [-data dir]        Check config, assets, profiles and scene
  trace [-config file] [-data dir] x y z     Trace the scene from a point

Examples:
  footsteptool categories
  footsteptool assets -data ./data
  footsteptool validate -scene scene.yaml
  footsteptool trace -dir down -length 100 150 0 20`)
}

type common struct {
	config string
	data   string
}

func newFlagSet(name string) (*flag.FlagSet, *common) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	c := &common{}
	fs.StringVar(&c.config, "config", "", "Path to config file")
	fs.StringVar(&c.data, "data", "", "Data directory (overrides config)")
	return fs, c
}

func (c *common) load() (*config.Config, *footstep.Settings, *assets.Manager) {
	logger.InitNop()

	cfg, err := config.LoadFile(c.config)
	if err != nil {
		fail(err)
	}
	if c.data != "" {
		cfg.Data.Dir = c.data
	}
	settings, err := cfg.Settings(nil)
	if err != nil {
		fail(err)
	}
	return cfg, settings, assets.NewManager(os.DirFS(cfg.Data.Dir))
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdCategories(args []string) {
	fs, c := newFlagSet("categories")
	fs.Parse(args)

	_, settings, _ := c.load()
	if settings.Catalog.Count() == 0 {
		fmt.Println("No categories configured.")
		return
	}
	for i, cat := range settings.Catalog.Categories() {
		marker := ""
		if i == 0 {
			marker = " (default)"
		}
		fmt.Printf("  %d  %s%s\n", i, cat, marker)
	}
}

func cmdAssets(args []string) {
	fs, c := newFlagSet("assets")
	fs.Parse(args)

	_, settings, lib := c.load()
	if err := lib.LoadDataAssets(settings.Catalog); err != nil {
		fail(err)
	}

	for _, name := range lib.DataAssetNames() {
		asset, _ := lib.DataAsset(name)
		fmt.Printf("%s  volume=%.2f pitch=%.2f lifespan=%v\n", name, asset.Volume, asset.Pitch, asset.LifeSpan)

		cats := make([]string, 0, len(asset.FX))
		for cat := range asset.FX {
			cats = append(cats, string(cat))
		}
		sort.Strings(cats)
		for _, cat := range cats {
			fx := asset.FX[footstep.Category(cat)]
			fmt.Printf("  %-10s sound=%-32s particle=%s\n", cat, orNone(string(fx.Sound)), orNone(string(fx.Particle)))
		}
	}
}

func cmdValidate(args []string) {
	fs, c := newFlagSet("validate")
	scene := fs.String("scene", "", "Scene file inside the data directory")
	fs.Parse(args)

	cfg, settings, lib := c.load()
	var problems []string
	report := func(format string, a ...any) {
		problems = append(problems, fmt.Sprintf(format, a...))
	}

	if err := lib.LoadDataAssets(settings.Catalog); err != nil {
		fail(err)
	}
	if err := lib.LoadProfiles(); err != nil {
		fail(err)
	}

	for _, name := range lib.DataAssetNames() {
		asset, _ := lib.DataAsset(name)
		for cat, fx := range asset.FX {
			if !settings.Catalog.Contains(cat) {
				report("%s: unknown category %q", name, cat)
			}
			if fx.Sound != "" {
				if _, err := lib.Load(string(fx.Sound)); err != nil {
					report("%s/%s: %v", name, cat, err)
				}
			}
			if fx.Particle != "" {
				if _, ok := cfg.Particles[string(fx.Particle)]; !ok {
					report("%s/%s: unknown particle template %q", name, cat, fx.Particle)
				}
			}
		}
		if a := asset.AttenuationOverride; a != "" {
			if _, ok := cfg.Audio.Attenuation[a]; !ok {
				report("%s: unknown attenuation preset %q", name, a)
			}
		}
		if cc := asset.ConcurrencyOverride; cc != "" {
			if _, ok := cfg.Audio.Concurrency[cc]; !ok {
				report("%s: unknown concurrency preset %q", name, cc)
			}
		}
	}

	for _, name := range lib.ProfileNames() {
		p, _ := lib.Profile(name)
		if _, err := lib.ComponentConfig(p, 1, cfg.SurfaceID); err != nil {
			report("%v", err)
		}
	}

	if *scene != "" {
		if _, err := loadScene(cfg, settings, lib, *scene); err != nil {
			report("%v", err)
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Println("  " + p)
		}
		fmt.Printf("%d problem(s) found\n", len(problems))
		os.Exit(1)
	}
	fmt.Printf("OK: %d categories, %d data assets, %d profiles\n",
		settings.Catalog.Count(), len(lib.DataAssetNames()), len(lib.ProfileNames()))
}

func cmdTrace(args []string) {
	fs, c := newFlagSet("trace")
	scene := fs.String("scene", "scene.yaml", "Scene file inside the data directory")
	dir := fs.String("dir", "down", "Trace direction (down, up, forward, backward, left, right)")
	length := fs.Float64("length", 100, "Trace length")
	fs.Parse(args)

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: footsteptool trace [options] <x> <y> <z>")
		os.Exit(1)
	}
	var start math.Vec3
	for i, p := range []*float32{&start.X, &start.Y, &start.Z} {
		var v float32
		if _, err := fmt.Sscan(fs.Arg(i), &v); err != nil {
			fail(fmt.Errorf("coordinate %q: %w", fs.Arg(i), err))
		}
		*p = v
	}
	direction, err := footstep.ParseTraceDirection(*dir)
	if err != nil {
		fail(err)
	}

	cfg, settings, lib := c.load()
	if err := lib.LoadDataAssets(settings.Catalog); err != nil {
		fail(err)
	}
	if err := lib.LoadProfiles(); err != nil {
		fail(err)
	}
	s, err := loadScene(cfg, settings, lib, *scene)
	if err != nil {
		fail(err)
	}

	vec := footstep.DirectionVector(math.QuatIdentity(), direction)
	hit := s.World().Physics().LineTrace(start, vec, float32(*length), nil)
	if !hit.Blocking {
		fmt.Println("No hit.")
		return
	}
	fmt.Printf("Hit at (%.2f, %.2f, %.2f) distance %.2f normal (%.2f, %.2f, %.2f)\n",
		hit.ImpactPoint.X, hit.ImpactPoint.Y, hit.ImpactPoint.Z, hit.Distance,
		hit.ImpactNormal.X, hit.ImpactNormal.Y, hit.ImpactNormal.Z)
	if hit.Body != nil {
		fmt.Printf("Body:     %s\n", hit.Body.Name)
	}
	mat := physics.ResolveMaterial(hit)
	if mat == nil {
		fmt.Println("Material: (none)")
		return
	}
	fmt.Printf("Material: %s\n", mat.Name)
	fmt.Printf("Surface:  %s\n", cfg.SurfaceName(mat.Surface))
}

func loadScene(cfg *config.Config, settings *footstep.Settings, lib *assets.Manager, name string) (*sim.Sim, error) {
	data, err := lib.Load(name)
	if err != nil {
		return nil, err
	}
	scene, err := sim.ParseScene(data)
	if err != nil {
		return nil, err
	}
	return sim.New(scene, sim.Options{
		Settings: settings,
		Assets:   lib,
		Surfaces: cfg.SurfaceID,
	})
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
