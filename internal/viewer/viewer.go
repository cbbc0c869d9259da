// Package viewer is the optional debug window of the footstep simulator.
package viewer

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/surface-footsteps/internal/audio"
	"github.com/Faultbox/surface-footsteps/internal/diagnostics"
	"github.com/Faultbox/surface-footsteps/internal/diagnostics/imguioverlay"
	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/particle"
)

const statsWidth = 360

// Snapshot is what the window shows for one frame.
type Snapshot struct {
	Elapsed   float64 // seconds of simulated time
	Pool      footstep.Stats
	Audio     audio.Stats
	Particles particle.Stats
	Recent    []footstep.Generated
}

// Window wraps the ImGui SDL backend.
type Window struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	overlay *diagnostics.Overlay
}

// Open creates the window.
func Open(title string, width, height int, overlay *diagnostics.Overlay) (*Window, error) {
	w := &Window{overlay: overlay}

	var err error
	w.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	w.backend.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	w.backend.CreateWindow(title, width, height)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	return w, nil
}

// Run starts the render loop. step advances the simulation by one frame
// and returns what to draw.
func (w *Window) Run(step func() Snapshot) {
	w.backend.Run(func() {
		snap := step()
		imguioverlay.Draw(w.overlay)
		drawStats(snap)
	})
}

func drawStats(s Snapshot) {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+workSize.X-statsWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(statsWidth, workSize.Y))
	flags := imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove | imgui.WindowFlagsNoSavedSettings

	if imgui.BeginV("Footsteps", nil, flags) {
		imgui.Text(fmt.Sprintf("Time: %.2fs", s.Elapsed))
		imgui.Separator()

		imgui.Text("Pool")
		imgui.Text(fmt.Sprintf("  Actors: %d (%d active, %d idle)", s.Pool.Size, s.Pool.Active, s.Pool.Idle))
		imgui.Text(fmt.Sprintf("  Activations: %d", s.Pool.Activations))
		imgui.Separator()

		imgui.Text("Audio")
		imgui.Text(fmt.Sprintf("  Played: %d  Culled: %d", s.Audio.Played, s.Audio.Culled))
		imgui.Text(fmt.Sprintf("  Rejected: %d  Stopped: %d", s.Audio.Rejected, s.Audio.Stopped))
		imgui.Separator()

		imgui.Text("Particles")
		imgui.Text(fmt.Sprintf("  Live: %d  Spawned: %d", s.Particles.Live, s.Particles.Spawned))
		imgui.Separator()

		imgui.Text("Recent")
		for i := len(s.Recent) - 1; i >= 0; i-- {
			ev := s.Recent[i]
			imgui.Text(fmt.Sprintf("  %s %s on %s", ev.Owner, ev.Category, ev.Material))
		}
	}
	imgui.End()
}
