// Package main is the entry point of the footstep simulator.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gopxl/beep/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/assets"
	"github.com/Faultbox/surface-footsteps/internal/audio"
	"github.com/Faultbox/surface-footsteps/internal/config"
	"github.com/Faultbox/surface-footsteps/internal/diagnostics"
	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/internal/particle"
	"github.com/Faultbox/surface-footsteps/internal/sim"
	"github.com/Faultbox/surface-footsteps/internal/telemetry"
	"github.com/Faultbox/surface-footsteps/internal/viewer"
)

var (
	flagScene    = flag.String("scene", "scene.yaml", "Scene file inside the data directory")
	flagDuration = flag.Duration("duration", 10*time.Second, "Simulated time for headless runs")
	flagStep     = flag.Duration("step", time.Second/60, "Simulation step")
	flagRealtime = flag.Bool("realtime", false, "Pace headless runs to the wall clock")
	flagWAV      = flag.String("wav", "", "Render the footstep audio of a headless run to this WAV file")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Surface Footsteps Simulator ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("simulation finished")
}

func run(cfg *config.Config) error {
	overlay := diagnostics.NewOverlay(0)
	settings, err := cfg.Settings(diagnostics.Multi{
		diagnostics.NewLogSink(logger.Named("footstep")),
		overlay,
	})
	if err != nil {
		return err
	}

	lib := assets.NewManager(os.DirFS(cfg.Data.Dir))
	if err := lib.LoadDataAssets(settings.Catalog); err != nil {
		return fmt.Errorf("loading data assets: %w", err)
	}
	if err := lib.LoadProfiles(); err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}
	sceneData, err := lib.Load(*flagScene)
	if err != nil {
		return err
	}
	scene, err := sim.ParseScene(sceneData)
	if err != nil {
		return err
	}

	engine, err := newAudio(cfg, lib)
	if err != nil {
		return err
	}
	var sound footstep.SoundEmitter
	if engine != nil {
		defer engine.Close()
		sound = engine
	}

	particles := particle.NewSystem(particleTemplates(cfg), uint64(time.Now().UnixNano()))

	s, err := sim.New(scene, sim.Options{
		Settings: settings,
		Pool: footstep.PoolConfig{
			Prewarm: cfg.Footstep.Pool.Prewarm,
			MaxSize: cfg.Footstep.Pool.MaxSize,
		},
		Sound:     sound,
		Particles: particles,
		Tickers: []func(time.Duration){
			func(dt time.Duration) { particles.Update(dt) },
			overlay.Update,
		},
		Assets:   lib,
		Surfaces: cfg.SurfaceID,
	})
	if err != nil {
		return err
	}

	if cfg.Telemetry.Listen != "" {
		hub := telemetry.NewHub()
		defer hub.Close()
		s.Subscribe(hub.Publish)
		srv := &http.Server{Addr: cfg.Telemetry.Listen, Handler: hub.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("telemetry server failed", zap.Error(err))
			}
		}()
		defer srv.Close()
		logger.Info("telemetry listening", zap.String("addr", cfg.Telemetry.Listen+telemetry.Path))
	}

	if cfg.Viewer.Enabled {
		return runWindow(cfg, s, engine, particles, overlay)
	}
	return runHeadless(s, engine)
}

// newAudio returns nil when sounds are neither played nor recorded.
func newAudio(cfg *config.Config, lib *assets.Manager) (*audio.Engine, error) {
	if !cfg.Audio.Enabled && *flagWAV == "" {
		return nil, nil
	}
	opts := audio.Options{
		SampleRate:   beep.SampleRate(cfg.Audio.SampleRate),
		MasterVolume: float64(cfg.Audio.MasterVolume),
		SFXVolume:    float64(cfg.Audio.SFXVolume),
		Muted:        cfg.Audio.Muted,
		Attenuation:  make(map[string]audio.Attenuation, len(cfg.Audio.Attenuation)),
		Concurrency:  make(map[string]audio.Concurrency, len(cfg.Audio.Concurrency)),
	}
	for name, a := range cfg.Audio.Attenuation {
		opts.Attenuation[name] = audio.Attenuation{InnerRadius: a.InnerRadius, FalloffDistance: a.FalloffDistance}
	}
	for name, c := range cfg.Audio.Concurrency {
		res, err := audio.ParseResolution(c.Resolution)
		if err != nil {
			return nil, err
		}
		opts.Concurrency[name] = audio.Concurrency{MaxCount: c.MaxCount, Resolution: res}
	}

	engine := audio.New(lib, opts)
	if err := engine.Preload(lib.SoundRefs()...); err != nil {
		return nil, err
	}
	if *flagWAV == "" {
		if err := engine.Init(); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

func particleTemplates(cfg *config.Config) map[footstep.ParticleRef]particle.Template {
	out := make(map[footstep.ParticleRef]particle.Template, len(cfg.Particles))
	for name, p := range cfg.Particles {
		out[footstep.ParticleRef(name)] = particle.Template{
			Count:    p.Count,
			Lifetime: p.Lifetime,
			Speed:    p.Speed,
			Size:     p.Size,
		}
	}
	return out
}

func runHeadless(s *sim.Sim, engine *audio.Engine) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	var frames [][2]float64
	tick := time.NewTicker(*flagStep)
	defer tick.Stop()

	for s.Elapsed() < *flagDuration {
		s.Step(*flagStep)

		if engine != nil && *flagWAV != "" {
			out, err := engine.Render(engine.SampleRate().N(*flagStep))
			if err != nil {
				return err
			}
			frames = append(frames, out...)
		}

		if *flagRealtime {
			select {
			case <-tick.C:
			case <-interrupt:
				logger.Info("interrupted")
				return report(s)
			}
		}
	}

	if engine != nil && *flagWAV != "" {
		f, err := os.Create(*flagWAV)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := audio.WriteWAV(f, frames, engine.SampleRate()); err != nil {
			return fmt.Errorf("writing %s: %w", *flagWAV, err)
		}
		logger.Info("audio written", zap.String("path", *flagWAV), zap.Int("frames", len(frames)))
	}
	return report(s)
}

func runWindow(cfg *config.Config, s *sim.Sim, engine *audio.Engine, particles *particle.System, overlay *diagnostics.Overlay) error {
	w, err := viewer.Open("Surface Footsteps", cfg.Viewer.Width, cfg.Viewer.Height, overlay)
	if err != nil {
		return err
	}

	last := time.Now()
	w.Run(func() viewer.Snapshot {
		now := time.Now()
		s.Step(now.Sub(last))
		last = now
		snap := viewer.Snapshot{
			Elapsed:   s.Elapsed().Seconds(),
			Pool:      s.World().PoolingManager().Stats(),
			Particles: particles.Stats(),
			Recent:    s.Recent(),
		}
		if engine != nil {
			snap.Audio = engine.Stats()
		}
		return snap
	})
	return report(s)
}

func report(s *sim.Sim) error {
	st := s.Stats()
	fields := []zap.Field{
		zap.Duration("elapsed", st.Elapsed),
		zap.Int("notifies", st.Notifies),
	}
	for outcome, n := range st.Outcomes {
		fields = append(fields, zap.Int(outcome.String(), n))
	}
	logger.Info("footstep summary", fields...)

	if st.ConfigErrors > 0 {
		return fmt.Errorf("%d footstep notifies hit configuration errors", st.ConfigErrors)
	}
	return nil
}
