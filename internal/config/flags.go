package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagShipping  = flag.Bool("shipping", false, "Strip footstep debug output")
	flagData      = flag.String("data", "", "Data directory")
	flagTelemetry = flag.String("telemetry", "", "Footstep event stream listen address")
	flagAudio     = flag.Bool("audio", false, "Play footstep sounds")
	flagWindow    = flag.Bool("window", false, "Open the debug viewer window")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagShipping {
		cfg.Footstep.Shipping = true
	}
	if *flagData != "" {
		cfg.Data.Dir = *flagData
	}
	if *flagTelemetry != "" {
		cfg.Telemetry.Listen = *flagTelemetry
	}
	if *flagAudio {
		cfg.Audio.Enabled = true
	}
	if *flagWindow {
		cfg.Viewer.Enabled = true
	}
}
