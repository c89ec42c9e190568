package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestBoundsContains(t *testing.T) {
	b := Bounds{Min: rl.Vector3{X: -1, Y: -1, Z: -1}, Max: rl.Vector3{X: 1, Y: 1, Z: 1}}

	if !b.Contains(rl.Vector3{}) {
		t.Error("center not contained")
	}
	if !b.Contains(rl.Vector3{X: 1, Y: 1, Z: 1}) {
		t.Error("corner not contained")
	}
	if b.Contains(rl.Vector3{X: 1.01}) {
		t.Error("outside point reported contained")
	}
}

func TestBoundsMarginShrinksInward(t *testing.T) {
	b := NewBoundsWithMargin(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2}, 0.1)

	if b.Min.X != 0.1 || b.Max.X != 1.9 {
		t.Errorf("margin bounds = %+v, want shrunk by 0.1 per side", b)
	}
}

func TestSafetyZonePushDirectionAndFalloff(t *testing.T) {
	z := SafetyZone{Center: rl.Vector3{}, Radius: 1}

	deep := z.PushOut(rl.Vector3{X: 0.1}, 10)
	shallow := z.PushOut(rl.Vector3{X: 0.9}, 10)
	if deep.X <= 0 || shallow.X <= 0 {
		t.Fatalf("pushes not outward: deep %+v shallow %+v", deep, shallow)
	}
	if deep.X <= shallow.X {
		t.Errorf("deeper point pushed weaker: %v <= %v", deep.X, shallow.X)
	}
	if deep.Y != 0 {
		t.Errorf("vertical push %v, want horizontal only", deep.Y)
	}
}

func TestSafetyZoneOutsideIsZero(t *testing.T) {
	z := SafetyZone{Center: rl.Vector3{}, Radius: 1}
	if push := z.PushOut(rl.Vector3{X: 2}, 10); (push != rl.Vector3{}) {
		t.Errorf("outside point pushed %+v", push)
	}
}

func TestSafetyZoneDeadCenterStillPushes(t *testing.T) {
	z := SafetyZone{Center: rl.Vector3{X: 3, Z: 1}, Radius: 1}
	push := z.PushOut(rl.Vector3{X: 3, Z: 1}, 10)
	if push.X == 0 && push.Z == 0 {
		t.Error("dead-center point got no push")
	}
}
