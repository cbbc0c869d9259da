// Package config handles footstep simulator configuration loading and
// management.
package config

import "time"

// Config holds all settings.
type Config struct {
	Footstep  FootstepConfig            `yaml:"footstep"`
	Surfaces  []SurfaceConfig           `yaml:"surfaces"`
	Audio     AudioConfig               `yaml:"audio"`
	Particles map[string]ParticleConfig `yaml:"particles"`
	Data      DataConfig                `yaml:"data"`
	Telemetry TelemetryConfig           `yaml:"telemetry"`
	Viewer    ViewerConfig              `yaml:"viewer"`
	Logging   LoggingConfig             `yaml:"logging"`
}

// FootstepConfig holds the footstep system settings.
type FootstepConfig struct {
	Categories []string `yaml:"categories"`
	// Shipping strips all debug output.
	Shipping             bool          `yaml:"shipping"`
	DebugMessageDuration time.Duration `yaml:"debug_message_duration"`
	Pool                 PoolConfig    `yaml:"pool"`
}

// PoolConfig sizes the footstep actor pool.
type PoolConfig struct {
	Prewarm int `yaml:"prewarm"`
	MaxSize int `yaml:"max_size"` // 0 = unbounded
}

// SurfaceConfig names a physical surface type.
type SurfaceConfig struct {
	ID   uint8  `yaml:"id"`
	Name string `yaml:"name"`
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Enabled      bool                         `yaml:"enabled"`
	SampleRate   int                          `yaml:"sample_rate"`
	MasterVolume float32                      `yaml:"master_volume"`
	SFXVolume    float32                      `yaml:"sfx_volume"`
	Muted        bool                         `yaml:"muted"`
	Attenuation  map[string]AttenuationConfig `yaml:"attenuation"`
	Concurrency  map[string]ConcurrencyConfig `yaml:"concurrency"`
}

// AttenuationConfig is a distance attenuation preset.
type AttenuationConfig struct {
	InnerRadius     float32 `yaml:"inner_radius"`
	FalloffDistance float32 `yaml:"falloff_distance"`
}

// ConcurrencyConfig limits how many sounds of a group play at once.
type ConcurrencyConfig struct {
	MaxCount   int    `yaml:"max_count"`
	Resolution string `yaml:"resolution"` // stop_oldest or prevent_new
}

// ParticleConfig is a particle template.
type ParticleConfig struct {
	Count    int           `yaml:"count"`
	Lifetime time.Duration `yaml:"lifetime"`
	Speed    float32       `yaml:"speed"`
	Size     float32       `yaml:"size"`
}

// DataConfig holds data file locations.
type DataConfig struct {
	Dir string `yaml:"dir"` // Root holding footsteps/ and characters/
}

// TelemetryConfig holds the footstep event stream settings.
type TelemetryConfig struct {
	Listen string `yaml:"listen"` // Empty disables the server
}

// ViewerConfig holds the debug window settings.
type ViewerConfig struct {
	Enabled bool `yaml:"enabled"`
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Footstep: FootstepConfig{
			Categories:           []string{"Walk", "Run", "Land"},
			Shipping:             false,
			DebugMessageDuration: 2 * time.Second,
			Pool: PoolConfig{
				Prewarm: 8,
				MaxSize: 64,
			},
		},
		Surfaces: []SurfaceConfig{
			{ID: 1, Name: "Concrete"},
			{ID: 2, Name: "Grass"},
			{ID: 3, Name: "Metal"},
			{ID: 4, Name: "Water"},
		},
		Audio: AudioConfig{
			Enabled:      false,
			SampleRate:   44100,
			MasterVolume: 0.8,
			SFXVolume:    1.0,
			Muted:        false,
			Attenuation: map[string]AttenuationConfig{
				"footstep": {InnerRadius: 200, FalloffDistance: 1800},
			},
			Concurrency: map[string]ConcurrencyConfig{
				"footsteps": {MaxCount: 8, Resolution: "stop_oldest"},
			},
		},
		Particles: map[string]ParticleConfig{
			"dust":   {Count: 12, Lifetime: 600 * time.Millisecond, Speed: 60, Size: 4},
			"splash": {Count: 20, Lifetime: 400 * time.Millisecond, Speed: 120, Size: 3},
		},
		Data: DataConfig{
			Dir: "data",
		},
		Telemetry: TelemetryConfig{
			Listen: "",
		},
		Viewer: ViewerConfig{
			Enabled: false,
			Width:   1280,
			Height:  720,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
