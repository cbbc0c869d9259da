package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/surface-footsteps/internal/diagnostics"
	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/physics"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Validate checks the config for values the footstep system cannot use.
func (c *Config) Validate() error {
	if _, err := footstep.NewCatalog(c.Footstep.Categories...); err != nil {
		return fmt.Errorf("%w: footstep.categories: %w", ErrInvalid, err)
	}
	if c.Footstep.Pool.Prewarm < 0 || c.Footstep.Pool.MaxSize < 0 {
		return fmt.Errorf("%w: footstep.pool sizes must not be negative", ErrInvalid)
	}

	ids := make(map[uint8]bool, len(c.Surfaces))
	names := make(map[string]bool, len(c.Surfaces))
	for _, s := range c.Surfaces {
		if !physics.SurfaceType(s.ID).Valid() || s.ID == uint8(physics.SurfaceDefault) {
			return fmt.Errorf("%w: surface %q id %d out of range 1-%d", ErrInvalid, s.Name, s.ID, physics.MaxSurfaceType)
		}
		if s.Name == "" {
			return fmt.Errorf("%w: surface %d has no name", ErrInvalid, s.ID)
		}
		if ids[s.ID] || names[s.Name] {
			return fmt.Errorf("%w: duplicate surface %d %q", ErrInvalid, s.ID, s.Name)
		}
		ids[s.ID] = true
		names[s.Name] = true
	}

	if c.Audio.MasterVolume < 0 || c.Audio.SFXVolume < 0 {
		return fmt.Errorf("%w: audio volumes must not be negative", ErrInvalid)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: audio.sample_rate must be positive", ErrInvalid)
	}
	for name, cc := range c.Audio.Concurrency {
		switch cc.Resolution {
		case "", "stop_oldest", "prevent_new":
		default:
			return fmt.Errorf("%w: audio.concurrency.%s: unknown resolution %q", ErrInvalid, name, cc.Resolution)
		}
		if cc.MaxCount < 0 {
			return fmt.Errorf("%w: audio.concurrency.%s: max_count must not be negative", ErrInvalid, name)
		}
	}
	for name, p := range c.Particles {
		if p.Count < 0 || p.Lifetime < 0 {
			return fmt.Errorf("%w: particles.%s: negative count or lifetime", ErrInvalid, name)
		}
	}
	return nil
}

// Settings builds the footstep settings, reporting diagnostics to sink.
func (c *Config) Settings(sink diagnostics.Sink) (*footstep.Settings, error) {
	catalog, err := footstep.NewCatalog(c.Footstep.Categories...)
	if err != nil {
		return nil, err
	}
	return &footstep.Settings{
		Catalog:              catalog,
		Shipping:             c.Footstep.Shipping,
		DebugMessageDuration: c.Footstep.DebugMessageDuration,
		Diagnostics:          sink,
	}, nil
}

// SurfaceID returns the surface type with the given name.
func (c *Config) SurfaceID(name string) (physics.SurfaceType, bool) {
	if name == "Default" {
		return physics.SurfaceDefault, true
	}
	for _, s := range c.Surfaces {
		if s.Name == name {
			return physics.SurfaceType(s.ID), true
		}
	}
	return 0, false
}

// SurfaceName returns the configured name of a surface type.
func (c *Config) SurfaceName(id physics.SurfaceType) string {
	for _, s := range c.Surfaces {
		if physics.SurfaceType(s.ID) == id {
			return s.Name
		}
	}
	return id.String()
}
