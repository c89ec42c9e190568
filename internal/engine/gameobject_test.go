package engine

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type testComponent struct {
	BaseComponent
	started bool
	updates int
}

func (t *testComponent) Start()            { t.started = true }
func (t *testComponent) Update(dt float32) { t.updates++ }

func TestAddComponentAndGet(t *testing.T) {
	obj := NewGameObject("thing")
	comp := &testComponent{}
	obj.AddComponent(comp)

	got := GetComponent[*testComponent](obj)
	if got != comp {
		t.Errorf("GetComponent returned %v, want the added component", got)
	}
}

func TestGetComponentMissing(t *testing.T) {
	obj := NewGameObject("empty")
	if got := GetComponent[*testComponent](obj); got != nil {
		t.Errorf("expected nil for missing component, got %v", got)
	}
}

func TestUIDsAreUnique(t *testing.T) {
	a := NewGameObject("a")
	b := NewGameObject("b")
	if a.UID == b.UID {
		t.Errorf("two objects share UID %d", a.UID)
	}
}

func TestChildWorldPosition(t *testing.T) {
	parent := NewGameObject("parent")
	parent.Transform.Position = rl.Vector3{X: 10, Y: 5, Z: 0}

	child := NewGameObject("child")
	child.Transform.Position = rl.Vector3{X: 1, Y: 0, Z: 0}
	parent.AddChild(child)

	world := child.WorldPosition()
	if world.X != 11 || world.Y != 5 {
		t.Errorf("child world position = %+v, want (11, 5, 0)", world)
	}
}

func TestChildRotatesWithParent(t *testing.T) {
	parent := NewGameObject("parent")
	parent.Transform.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, rl.Pi/2)

	child := NewGameObject("child")
	child.Transform.Position = rl.Vector3{X: 1}
	parent.AddChild(child)

	world := child.WorldPosition()
	// raylib's row-vector matrices take +X to +Z under a positive
	// quarter turn about Y. WorldPosition follows the matrix path,
	// same as the physics and render code.
	if absf(world.X) > 1e-4 || absf(world.Z-1) > 1e-4 {
		t.Errorf("rotated child world position = %+v, want (0, 0, 1)", world)
	}
}

func TestUpdateRunsComponents(t *testing.T) {
	obj := NewGameObject("ticker")
	comp := &testComponent{}
	obj.AddComponent(comp)

	obj.Start()
	obj.Update(0.016)
	obj.Update(0.016)

	if !comp.started {
		t.Error("Start did not reach the component")
	}
	if comp.updates != 2 {
		t.Errorf("component updated %d times, want 2", comp.updates)
	}
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
