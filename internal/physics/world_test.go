package physics

import (
	"testing"

	"clawroom/internal/components"
	"clawroom/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const tick = float32(1.0 / 120.0)

// newBody builds a boxy test body with its mesh and bounding radius set.
func newBody(name string, pos rl.Vector3, size rl.Vector3, mass float32) (*engine.GameObject, *components.RigidBody) {
	obj := engine.NewGameObject(name)
	obj.Transform.Position = pos

	rb := components.NewRigidBody(mass)
	rb.Position = pos
	half := rl.Vector3Scale(size, 0.5)
	rb.SetBoundingRadiusFromBox(rl.Vector3Scale(half, -1), half)
	obj.AddComponent(rb)

	mesh := &components.MeshCollider{}
	mesh.BuildFromBox(size)
	obj.AddComponent(mesh)

	return obj, rb
}

func unitSize() rl.Vector3 { return rl.Vector3{X: 1, Y: 1, Z: 1} }

func newStatic(name string, center, size rl.Vector3) *engine.GameObject {
	obj := engine.NewGameObject(name)
	obj.Transform.Position = center
	mesh := &components.MeshCollider{}
	mesh.BuildFromBoxAt(center, size)
	obj.AddComponent(mesh)
	return obj
}

func TestGravityAcceleratesFreeBody(t *testing.T) {
	w := NewWorld()
	obj, rb := newBody("faller", rl.Vector3{Y: 5}, unitSize(), 1)
	w.AddBody(obj)

	w.Step(tick)

	if rb.Velocity.Y >= 0 {
		t.Errorf("velocity.Y = %v after a gravity step, want negative", rb.Velocity.Y)
	}
	if rb.Position.Y >= 5 {
		t.Errorf("body did not fall, Y = %v", rb.Position.Y)
	}
}

func TestStepClampsSpikes(t *testing.T) {
	w := NewWorld()
	obj, rb := newBody("spike", rl.Vector3{Y: 100}, unitSize(), 1)
	rb.Velocity = rl.Vector3{Y: -10}
	w.AddBody(obj)

	w.Step(10) // pathological frame time

	fell := 100 - rb.Position.Y
	if fell > 10*MaxStepSeconds+1 {
		t.Errorf("body fell %v in one clamped step", fell)
	}
	if w.Now() > float64(MaxStepSeconds)+1e-6 {
		t.Errorf("clock advanced %v, want at most %v", w.Now(), MaxStepSeconds)
	}
}

func TestZeroStepIsNoop(t *testing.T) {
	w := NewWorld()
	obj, rb := newBody("still", rl.Vector3{Y: 5}, unitSize(), 1)
	w.AddBody(obj)

	w.Step(0)
	w.Step(-1)

	if rb.Position.Y != 5 || w.Now() != 0 {
		t.Errorf("zero/negative step moved the body or clock: Y=%v clock=%v", rb.Position.Y, w.Now())
	}
}

func TestHeldBodyIgnoresGravity(t *testing.T) {
	w := NewWorld()
	obj, rb := newBody("held", rl.Vector3{Y: 2}, unitSize(), 1)
	w.AddBody(obj)
	rb.Hold()

	for i := 0; i < 60; i++ {
		w.Step(tick)
	}

	if rb.Position.Y != 2 {
		t.Errorf("held body moved to Y = %v", rb.Position.Y)
	}
	if (rb.Velocity != rl.Vector3{}) {
		t.Errorf("held body gained velocity %+v", rb.Velocity)
	}
}

func TestAddBodyRequiresRigidBody(t *testing.T) {
	w := NewWorld()
	w.AddBody(engine.NewGameObject("bare"))

	if len(w.Bodies()) != 0 {
		t.Errorf("body without RigidBody was registered")
	}
}

func TestAddStaticRefusesUnbuiltMesh(t *testing.T) {
	w := NewWorld()
	obj := engine.NewGameObject("wall")
	obj.AddComponent(&components.MeshCollider{})

	if w.AddStaticCollider(obj) {
		t.Error("unbuilt static collider was accepted")
	}
	if w.Diag.RejectedStatics != 1 {
		t.Errorf("RejectedStatics = %d, want 1", w.Diag.RejectedStatics)
	}
}

func TestReleaseWindowExpires(t *testing.T) {
	w := NewWorld()
	obj, rb := newBody("dropped", rl.Vector3{Y: 5}, unitSize(), 1)
	w.AddBody(obj)

	rb.Hold()
	rb.BeginRelease(w.Now())

	// Inside the window: horizontal velocity stays pinned under a
	// sideways shove, only vertical motion accumulates.
	for i := 0; i < 30; i++ {
		rb.Velocity.X = 3
		w.Step(tick)
	}
	if rb.Possession != components.PossessionReleasing {
		t.Fatalf("possession = %s mid-window, want releasing", rb.Possession)
	}
	if rb.Velocity.X != 0 {
		t.Errorf("horizontal velocity = %v mid-window, want 0", rb.Velocity.X)
	}
	if rb.Velocity.Y >= 0 {
		t.Errorf("no vertical fall during the window, velocity.Y = %v", rb.Velocity.Y)
	}

	// Run the clock past the window end.
	steps := int(ReleaseWindowSeconds/tick) + 5
	for i := 0; i < steps; i++ {
		w.Step(tick)
	}
	if rb.Possession != components.PossessionFree {
		t.Errorf("possession = %s after the window, want free", rb.Possession)
	}
}

func TestReleaseWithFutureTimestampAborts(t *testing.T) {
	w := NewWorld()
	obj, rb := newBody("weird", rl.Vector3{Y: 5}, unitSize(), 1)
	w.AddBody(obj)

	rb.BeginRelease(w.Now() + 100) // clock skew: elapsed is negative
	w.Step(tick)

	if rb.Possession != components.PossessionFree {
		t.Errorf("possession = %s, want free after an aborted window", rb.Possession)
	}
}

func TestReleasingBodySkipsPeerCollision(t *testing.T) {
	w := NewWorld()
	w.Gravity = rl.Vector3{}

	a, rbA := newBody("releasing", rl.Vector3{}, unitSize(), 1)
	b, rbB := newBody("bystander", rl.Vector3{X: 0.4}, unitSize(), 1)
	w.AddBody(a)
	w.AddBody(b)

	rbA.BeginRelease(w.Now())
	w.Step(tick)

	if rbB.Velocity.X != 0 {
		t.Errorf("bystander shoved during a clean release, velocity %+v", rbB.Velocity)
	}
	if rbA.Possession != components.PossessionReleasing {
		t.Errorf("possession = %s, want releasing", rbA.Possession)
	}
}

func TestOverlappingBodiesSeparate(t *testing.T) {
	w := NewWorld()
	w.Gravity = rl.Vector3{}

	a, rbA := newBody("a", rl.Vector3{X: -0.25}, unitSize(), 1)
	b, rbB := newBody("b", rl.Vector3{X: 0.25}, unitSize(), 1)
	w.AddBody(a)
	w.AddBody(b)

	for i := 0; i < 30; i++ {
		// keep them awake so separation runs to completion
		rbA.Wake()
		rbB.Wake()
		w.Step(tick)
	}

	dist := rl.Vector3Length(rl.Vector3Subtract(rbA.Position, rbB.Position))
	if dist <= 0.6 {
		t.Errorf("bodies still overlapping after separation, distance %v", dist)
	}
}

func TestCoincidentBodiesResolveWithoutNaN(t *testing.T) {
	w := NewWorld()
	w.SetWorldBounds(rl.Vector3{X: -5, Y: 0, Z: -5}, rl.Vector3{X: 5, Y: 10, Z: 5})

	// same position, zero center distance: the contact normal has no
	// direction to work with and must fall back to world up
	a, rbA := newBody("a", rl.Vector3{Y: 2}, unitSize(), 1)
	b, rbB := newBody("b", rl.Vector3{Y: 2}, unitSize(), 1)
	w.AddBody(a)
	w.AddBody(b)

	for i := 0; i < 120; i++ {
		w.Step(tick)
		for _, rb := range []*components.RigidBody{rbA, rbB} {
			for _, v := range []float32{
				rb.Position.X, rb.Position.Y, rb.Position.Z,
				rb.Velocity.X, rb.Velocity.Y, rb.Velocity.Z,
			} {
				if v != v {
					t.Fatalf("NaN physics state on tick %d: pos %+v vel %+v", i, rb.Position, rb.Velocity)
				}
			}
		}
	}

	sep := rl.Vector3Length(rl.Vector3Subtract(rbA.Position, rbB.Position))
	if sep < 0.1 {
		t.Errorf("coincident bodies never separated, distance %v", sep)
	}
}

func TestDispensedPlowShovesAndWakes(t *testing.T) {
	w := NewWorld()
	w.Gravity = rl.Vector3{}

	plowObj, plow := newBody("plow", rl.Vector3{X: -0.4}, unitSize(), 1)
	obsObj, obs := newBody("obstacle", rl.Vector3{X: 0.3}, unitSize(), 1)
	w.AddBody(plowObj)
	w.AddBody(obsObj)

	obs.IsSleeping = true
	if !plow.BeginDispense() {
		t.Fatal("BeginDispense refused")
	}
	plow.Velocity = rl.Vector3{X: 2}

	w.Step(tick)

	if obs.IsSleeping {
		t.Error("plow contact did not wake the sleeping obstacle")
	}
	if obs.Velocity.X <= 0 {
		t.Errorf("obstacle velocity.X = %v, want pushed along +X", obs.Velocity.X)
	}
	if plow.Position.X != -0.4 {
		t.Errorf("infinite-mass plow was displaced to %v", plow.Position.X)
	}
}

func TestBodySettlesOnFloor(t *testing.T) {
	w := NewWorld()
	w.SetPrizeBounds(rl.Vector3{X: -2, Y: 0, Z: -2}, rl.Vector3{X: 2, Y: 3, Z: 2})
	obj, rb := newBody("drop", rl.Vector3{Y: 2}, unitSize(), 1)
	w.AddBody(obj)

	for i := 0; i < 600; i++ {
		w.Step(tick)
	}

	if rb.Position.Y < 0.2 || rb.Position.Y > 1.0 {
		t.Errorf("body rest height %v, want roughly half-extent above the floor", rb.Position.Y)
	}
	speed := rl.Vector3Length(rb.Velocity)
	if !rb.IsSleeping && speed > 0.5 {
		t.Errorf("body still moving at %v after 5 seconds", speed)
	}
}

func TestFallThroughSkipsFloorOnly(t *testing.T) {
	w := NewWorld()
	w.SetPrizeBounds(rl.Vector3{X: -2, Y: 0, Z: -2}, rl.Vector3{X: 2, Y: 3, Z: 2})
	obj, rb := newBody("chuted", rl.Vector3{X: 1, Y: 0.6, Z: 1}, unitSize(), 1)
	rb.CanFallThrough = true
	w.AddBody(obj)

	for i := 0; i < 120; i++ {
		w.Step(tick)
	}

	if rb.Position.Y > -0.5 {
		t.Errorf("authorized body did not fall through the floor, Y = %v", rb.Position.Y)
	}
	// side walls still apply
	if rb.Position.X > 2.1 || rb.Position.Z > 2.1 {
		t.Errorf("fall-through body escaped sideways to %+v", rb.Position)
	}
}

func TestSafetyZonePushesIdlePrize(t *testing.T) {
	w := NewWorld()
	w.Gravity = rl.Vector3{}
	w.SetChuteSafetyZone(rl.Vector3{X: 1, Z: 1}, 0.6)

	obj, rb := newBody("lingerer", rl.Vector3{X: 1.1, Z: 1}, unitSize(), 1)
	w.AddBody(obj)

	for i := 0; i < 30; i++ {
		w.Step(tick)
	}

	dx := rb.Position.X - 1
	dz := rb.Position.Z - 1
	if dx*dx+dz*dz <= 0.1*0.1 {
		t.Errorf("body still near the zone center at %+v", rb.Position)
	}
}

type collisionRecorder struct {
	engine.BaseComponent
	enters int
	exits  int
}

func (c *collisionRecorder) OnCollisionEnter(other *engine.GameObject) { c.enters++ }
func (c *collisionRecorder) OnCollisionExit(other *engine.GameObject)  { c.exits++ }

func TestCollisionEnterAndExitCallbacks(t *testing.T) {
	w := NewWorld()
	w.Gravity = rl.Vector3{}

	a, rbA := newBody("watcher", rl.Vector3{X: -0.25}, unitSize(), 1)
	rec := &collisionRecorder{}
	a.AddComponent(rec)
	b, rbB := newBody("other", rl.Vector3{X: 0.25}, unitSize(), 1)
	w.AddBody(a)
	w.AddBody(b)

	w.Step(tick)
	if rec.enters != 1 {
		t.Fatalf("enters = %d after first contact, want 1", rec.enters)
	}

	// Teleport apart; the next step must report the exit.
	rbA.Position = rl.Vector3{X: -5}
	rbB.Position = rl.Vector3{X: 5}
	w.Step(tick)
	if rec.exits != 1 {
		t.Errorf("exits = %d after separation, want 1", rec.exits)
	}
}

func TestMissingMeshCountsDiagnostic(t *testing.T) {
	w := NewWorld()
	w.Gravity = rl.Vector3{}

	// bodies overlap but neither carries a mesh collider
	a := engine.NewGameObject("bare-a")
	rbA := components.NewRigidBody(1)
	rbA.BoundingRadius = 1
	a.AddComponent(rbA)
	b := engine.NewGameObject("bare-b")
	rbB := components.NewRigidBody(1)
	rbB.BoundingRadius = 1
	rbB.Position = rl.Vector3{X: 0.5}
	b.AddComponent(rbB)
	w.AddBody(a)
	w.AddBody(b)

	w.Step(tick)

	if w.Diag.SkippedColliders == 0 {
		t.Error("missing BVH pair did not count a skipped collider")
	}
	if rbA.Velocity.X != 0 || rbB.Velocity.X != 0 {
		t.Error("skipped pair still received impulses")
	}
}
