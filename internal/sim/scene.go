package sim

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// Scene is the authored layout of a simulation: floor patches, obstacles
// and the characters walking through them.
type Scene struct {
	NetMode    string           `yaml:"net_mode"`
	Floor      []PatchSpec      `yaml:"floor"`
	Obstacles  []ObstacleSpec   `yaml:"obstacles"`
	Characters []CharacterSpec  `yaml:"characters"`
}

// PatchSpec is a rectangular floor region at height Z. An empty Surface
// leaves the patch without a physical material.
type PatchSpec struct {
	Surface  string    `yaml:"surface"`
	Material string    `yaml:"material"`
	Min      math.Vec3 `yaml:"min"`
	Max      math.Vec3 `yaml:"max"`
	Z        float32   `yaml:"z"`
}

// ObstacleSpec is an axis-aligned box.
type ObstacleSpec struct {
	Surface  string    `yaml:"surface"`
	Material string    `yaml:"material"`
	Min      math.Vec3 `yaml:"min"`
	Max      math.Vec3 `yaml:"max"`
}

// CharacterSpec places a character walking a closed path.
type CharacterSpec struct {
	Name     string        `yaml:"name"`
	Profile  string        `yaml:"profile"`
	Path     []math.Vec3   `yaml:"path"`
	Speed    float32       `yaml:"speed"`  // units per second
	Stride   time.Duration `yaml:"stride"` // time between footsteps
	Category string        `yaml:"category"`
	// Sockets alternate footstep by footstep. Empty traces from the root.
	Sockets []string `yaml:"sockets"`
	// Direction is the trace direction, Down when empty.
	Direction footstep.TraceDirection `yaml:"direction"`
}

// ParseScene decodes a scene. Unknown fields are rejected.
func ParseScene(data []byte) (*Scene, error) {
	s := &Scene{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	for i, c := range s.Characters {
		if len(c.Path) == 0 {
			return nil, fmt.Errorf("parse scene: character %d (%s) has no path", i, c.Name)
		}
		if c.Stride <= 0 {
			return nil, fmt.Errorf("parse scene: character %d (%s) needs a positive stride", i, c.Name)
		}
	}
	return s, nil
}

// ParseNetMode parses the scene spelling of a network mode. Empty means
// standalone.
func ParseNetMode(s string) (footstep.NetMode, error) {
	for _, m := range []footstep.NetMode{
		footstep.NetStandalone,
		footstep.NetDedicatedServer,
		footstep.NetListenServer,
		footstep.NetClient,
	} {
		if s == m.String() {
			return m, nil
		}
	}
	if s == "" {
		return footstep.NetStandalone, nil
	}
	return 0, fmt.Errorf("unknown net mode %q", s)
}
