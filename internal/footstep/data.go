package footstep

import (
	"time"

	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// Default playback parameters of a data asset.
const (
	DefaultVolume   = 1.0
	DefaultPitch    = 1.0
	DefaultLifeSpan = 2 * time.Second
)

// SoundRef names a sound asset. Empty means no sound.
type SoundRef string

// ParticleRef names a particle template. Empty means no particle.
type ParticleRef string

// CategoryFX is the sound and particle configured for one category.
type CategoryFX struct {
	Sound    SoundRef    `yaml:"sound"`
	Particle ParticleRef `yaml:"particle"`
}

// DataAsset describes the footstep effects of one surface type.
type DataAsset struct {
	Name string
	FX   map[Category]CategoryFX

	Volume        float32
	Pitch         float32
	ParticleScale math.Vec3
	LifeSpan      time.Duration

	// Optional preset names applied to the sound.
	AttenuationOverride string
	ConcurrencyOverride string
}

// NewDataAsset returns an asset with default playback parameters.
func NewDataAsset(name string) *DataAsset {
	return &DataAsset{
		Name:          name,
		FX:            make(map[Category]CategoryFX),
		Volume:        DefaultVolume,
		Pitch:         DefaultPitch,
		ParticleScale: math.Vec3{X: 1, Y: 1, Z: 1},
		LifeSpan:      DefaultLifeSpan,
	}
}

// Entry is everything needed to play one footstep.
type Entry struct {
	Sound         SoundRef
	Particle      ParticleRef
	Volume        float32
	Pitch         float32
	ParticleScale math.Vec3
	LifeSpan      time.Duration
	Attenuation   string
	Concurrency   string
}

// Sound returns the sound for cat.
func (d *DataAsset) Sound(cat Category) SoundRef {
	return d.FX[cat].Sound
}

// Particle returns the particle for cat.
func (d *DataAsset) Particle(cat Category) ParticleRef {
	return d.FX[cat].Particle
}

// LookupEntry returns the effects for cat. It reports false when neither a
// sound nor a particle is configured.
func (d *DataAsset) LookupEntry(cat Category) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	fx := d.FX[cat]
	if fx.Sound == "" && fx.Particle == "" {
		return Entry{}, false
	}
	return Entry{
		Sound:         fx.Sound,
		Particle:      fx.Particle,
		Volume:        d.Volume,
		Pitch:         d.Pitch,
		ParticleScale: d.ParticleScale,
		LifeSpan:      d.LifeSpan,
		Attenuation:   d.AttenuationOverride,
		Concurrency:   d.ConcurrencyOverride,
	}, true
}
