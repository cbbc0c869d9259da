package footstep

import (
	"fmt"
	"strings"

	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// TraceDirection is the axis a footstep trace follows.
type TraceDirection uint8

const (
	TraceDown TraceDirection = iota
	TraceUp
	TraceForward
	TraceBackward
	TraceLeft
	TraceRight
)

var traceDirectionNames = [...]string{
	TraceDown:     "down",
	TraceUp:       "up",
	TraceForward:  "forward",
	TraceBackward: "backward",
	TraceLeft:     "left",
	TraceRight:    "right",
}

// traceAxes maps each direction to a local axis and sign.
var traceAxes = [...]struct {
	axis math.Axis
	sign float32
}{
	TraceDown:     {math.AxisZ, -1},
	TraceUp:       {math.AxisZ, 1},
	TraceForward:  {math.AxisX, 1},
	TraceBackward: {math.AxisX, -1},
	TraceLeft:     {math.AxisY, -1},
	TraceRight:    {math.AxisY, 1},
}

func (d TraceDirection) String() string {
	if int(d) < len(traceDirectionNames) {
		return traceDirectionNames[d]
	}
	return fmt.Sprintf("TraceDirection(%d)", d)
}

// Valid reports whether d is one of the six directions.
func (d TraceDirection) Valid() bool {
	return int(d) < len(traceAxes)
}

// ParseTraceDirection parses a direction name, case-insensitively.
func ParseTraceDirection(s string) (TraceDirection, error) {
	for i, name := range traceDirectionNames {
		if strings.EqualFold(s, name) {
			return TraceDirection(i), nil
		}
	}
	return TraceDown, fmt.Errorf("unknown trace direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d TraceDirection) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid trace direction %d", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *TraceDirection) UnmarshalText(b []byte) error {
	v, err := ParseTraceDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DirectionVector returns the world-space unit vector of d in frame.
func DirectionVector(frame math.Quat, d TraceDirection) math.Vec3 {
	if !d.Valid() {
		d = TraceDown
	}
	e := traceAxes[d]
	return frame.Axis(e.axis).Scale(e.sign)
}

// TraceRequest selects where a footstep trace starts.
type TraceRequest struct {
	// Socket is the foot socket. It is used only when FromSocket is set and
	// the mesh has the socket.
	Socket     string
	FromSocket bool
	Direction  TraceDirection
}

// TraceOrigin is the resolved start and direction of a trace.
type TraceOrigin struct {
	Start     math.Vec3
	Direction math.Vec3
	// UsedSocket is false when the trace falls back to the mesh root.
	UsedSocket bool
}

// ResolveTraceOrigin picks the socket frame when it can, else the mesh root.
func ResolveTraceOrigin(mesh Mesh, req TraceRequest) TraceOrigin {
	if req.FromSocket && req.Socket != "" {
		if st, ok := mesh.SocketTransform(req.Socket); ok {
			return TraceOrigin{
				Start:      st.Location,
				Direction:  DirectionVector(st.Rotation, req.Direction),
				UsedSocket: true,
			}
		}
	}
	root := mesh.Transform()
	return TraceOrigin{
		Start:     root.Location,
		Direction: DirectionVector(root.Rotation, req.Direction),
	}
}

// TraceResult is the outcome of one footstep trace.
type TraceResult struct {
	Origin       TraceOrigin
	Blocking     bool
	ImpactPoint  math.Vec3
	ImpactNormal math.Vec3
	// Material is the resolved physical material, nil when none resolved.
	Material *physics.Material
}

// Surface returns the resolved surface type.
func (r TraceResult) Surface() (physics.SurfaceType, bool) {
	if r.Material == nil {
		return physics.SurfaceDefault, false
	}
	return r.Material.Surface, true
}

// TraceFootstep runs a single line trace for a footstep through the
// component's ignore list and trace length.
func TraceFootstep(mesh Mesh, req TraceRequest, comp *Component) TraceResult {
	origin := ResolveTraceOrigin(mesh, req)
	hit := comp.LineTrace(origin.Start, origin.Direction)

	res := TraceResult{Origin: origin, Blocking: hit.Blocking}
	if !hit.Blocking {
		return res
	}
	res.ImpactPoint = hit.ImpactPoint
	res.ImpactNormal = hit.ImpactNormal
	res.Material = physics.ResolveMaterial(hit)
	return res
}
