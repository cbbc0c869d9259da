// Package imguioverlay draws the diagnostics overlay with Dear ImGui.
package imguioverlay

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/surface-footsteps/internal/diagnostics"
)

// Draw renders the overlay lines in a borderless window at the top-left
// corner. It must be called between the host's ImGui NewFrame and Render.
func Draw(o *diagnostics.Overlay) {
	lines := o.Lines()
	if len(lines) == 0 {
		return
	}

	imgui.SetNextWindowPos(imgui.NewVec2(10, 10))
	imgui.SetNextWindowSize(imgui.NewVec2(640, 0))

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsNoSavedSettings | imgui.WindowFlagsNoFocusOnAppearing |
		imgui.WindowFlagsNoInputs

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(8, 8))
	imgui.SetNextWindowBgAlpha(0.5)

	if imgui.BeginV("##FootstepDiagnostics", nil, flags) {
		for _, l := range lines {
			imgui.TextColored(color(l.Severity), l.Text)
		}
	}
	imgui.End()
	imgui.PopStyleVar()
}

func color(s diagnostics.Severity) imgui.Vec4 {
	switch s {
	case diagnostics.SeverityError:
		return imgui.NewVec4(1, 0.3, 0.3, 1)
	case diagnostics.SeverityWarning:
		return imgui.NewVec4(1, 0.8, 0.2, 1)
	default:
		return imgui.NewVec4(0, 0.74, 0, 1)
	}
}
