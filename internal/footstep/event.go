package footstep

import (
	"time"

	"github.com/google/uuid"

	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// Generated describes a footstep effect that was just activated.
type Generated struct {
	ID            string              `json:"id"`
	Time          time.Time           `json:"time"`
	Owner         string              `json:"owner"`
	Animation     string              `json:"animation"`
	Surface       physics.SurfaceType `json:"surface"`
	Material      string              `json:"material"`
	Asset         string              `json:"asset"`
	Category      Category            `json:"category"`
	Transform     math.Transform      `json:"transform"`
	Volume        float32             `json:"volume"`
	Pitch         float32             `json:"pitch"`
	ParticleScale math.Vec3           `json:"particle_scale"`
	Play2D        bool                `json:"play_2d"`
}

func newGenerated() Generated {
	return Generated{ID: uuid.NewString(), Time: time.Now()}
}
