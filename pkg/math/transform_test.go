package math

import (
	"math"
	"testing"
)

func TestTransformPoint(t *testing.T) {
	tr := Transform{
		Location: Vec3{10, 0, 0},
		Rotation: QuatFromYaw(math.Pi / 2),
		Scale:    Vec3{2, 2, 2},
	}

	got := tr.TransformPoint(Vec3{1, 0, 0})
	want := Vec3{10, 2, 0}
	if !got.ApproxEqual(want, 1e-4) {
		t.Errorf("TransformPoint = %v, want %v", got, want)
	}
}

func TestTransformCompose(t *testing.T) {
	parent := NewTransform(QuatFromYaw(math.Pi/2), Vec3{0, 0, 100})
	socket := NewTransform(QuatIdentity(), Vec3{20, 0, -90})

	world := parent.Compose(socket)
	if want := (Vec3{0, 20, 10}); !world.Location.ApproxEqual(want, 1e-3) {
		t.Errorf("composed location = %v, want %v", world.Location, want)
	}
	if f := world.Rotation.Forward(); !f.ApproxEqual(UnitY, 1e-4) {
		t.Errorf("composed forward = %v, want %v", f, UnitY)
	}
}

func TestTransformIdentity(t *testing.T) {
	p := Vec3{1, 2, 3}
	if got := TransformIdentity().TransformPoint(p); got != p {
		t.Errorf("identity moved %v to %v", p, got)
	}
}
