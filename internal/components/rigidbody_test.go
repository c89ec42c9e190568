package components

import (
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestSleepAfterQuietTicks(t *testing.T) {
	rb := NewRigidBody(1)
	rb.Velocity = rl.Vector3{X: 0.01}

	for i := 0; i < FramesToSleep+5; i++ {
		rb.Integrate(1.0 / 120.0)
	}

	if !rb.IsSleeping {
		t.Error("body stayed awake through the full quiet period")
	}
	if rb.Velocity.X != 0 || rb.Velocity.Y != 0 || rb.Velocity.Z != 0 {
		t.Errorf("sleep did not zero velocity, got %+v", rb.Velocity)
	}
}

func TestFastBodyStaysAwake(t *testing.T) {
	rb := NewRigidBody(1)
	rb.Velocity = rl.Vector3{X: 5}

	for i := 0; i < 10; i++ {
		rb.Integrate(1.0 / 120.0)
	}
	if rb.IsSleeping {
		t.Error("fast body fell asleep")
	}
}

func TestImpulseWakesSleeper(t *testing.T) {
	rb := NewRigidBody(1)
	rb.IsSleeping = true

	rb.ApplyImpulse(rl.Vector3{Y: 1}, rb.Position)

	if rb.IsSleeping {
		t.Error("impulse did not wake the body")
	}
	if rb.Velocity.Y != 1 {
		t.Errorf("velocity.Y = %v, want 1", rb.Velocity.Y)
	}
}

func TestImpulseIgnoredOnInfiniteMass(t *testing.T) {
	rb := NewRigidBody(1)
	rb.InverseMass = 0
	rb.ApplyImpulse(rl.Vector3{Y: 100}, rb.Position)

	if rb.Velocity.Y != 0 {
		t.Errorf("infinite-mass body gained velocity %v", rb.Velocity)
	}
}

func TestOffCenterImpulseSpins(t *testing.T) {
	rb := NewRigidBody(1)
	point := rl.Vector3{X: 1} // arm along +X, impulse along +Y, torque along +Z
	rb.ApplyImpulse(rl.Vector3{Y: 1}, point)

	if rb.AngularVelocity.Z <= 0 {
		t.Errorf("expected positive spin about Z, got %+v", rb.AngularVelocity)
	}
}

func TestIntegrateSkipsNonFreeStates(t *testing.T) {
	for _, p := range []Possession{PossessionHeld, PossessionDispensed, PossessionBlocked} {
		rb := NewRigidBody(1)
		rb.Possession = p
		if p == PossessionDispensed {
			rb.InverseMass = 0
		}
		rb.Velocity = rl.Vector3{Y: -3}
		start := rb.Position

		rb.Integrate(1.0 / 120.0)

		if rb.Position != start {
			t.Errorf("%s body moved during Integrate: %+v", p, rb.Position)
		}
	}
}

func TestOrientationStaysNormalized(t *testing.T) {
	rb := NewRigidBody(1)
	rb.AngularVelocity = rl.Vector3{X: 3, Y: 7, Z: 1}

	for i := 0; i < 600; i++ {
		rb.Integrate(1.0 / 120.0)
		rb.AngularVelocity = rl.Vector3{X: 3, Y: 7, Z: 1} // keep it spinning past damping
	}

	q := rb.Orientation
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if math32.Abs(length-1) > 1e-3 {
		t.Errorf("quaternion drifted to length %v", length)
	}
}

func TestDispenseStoresAndRestoresMass(t *testing.T) {
	rb := NewRigidBody(2)
	origInv := rb.InverseMass

	if !rb.BeginDispense() {
		t.Fatal("BeginDispense refused a free body")
	}
	if rb.InverseMass != 0 {
		t.Errorf("dispensed inverse mass = %v, want 0", rb.InverseMass)
	}

	rb.BeginRelease(1.5)
	if rb.InverseMass != origInv {
		t.Errorf("release restored inverse mass %v, want %v", rb.InverseMass, origInv)
	}
	if rb.ReleasedAt() != 1.5 {
		t.Errorf("ReleasedAt = %v, want 1.5", rb.ReleasedAt())
	}
}

func TestHoldIsExclusive(t *testing.T) {
	rb := NewRigidBody(1)
	if !rb.Hold() {
		t.Fatal("Hold refused a free body")
	}
	if rb.BeginDispense() {
		t.Error("BeginDispense succeeded on a held body")
	}
	if rb.Hold() {
		t.Error("second Hold succeeded")
	}
}

func TestBeginReleasePinsHorizontalVelocity(t *testing.T) {
	rb := NewRigidBody(1)
	rb.Velocity = rl.Vector3{X: 4, Y: -2, Z: 3}
	rb.AngularVelocity = rl.Vector3{X: 1, Y: 1, Z: 1}

	rb.BeginRelease(0)

	if rb.Velocity.X != 0 || rb.Velocity.Z != 0 {
		t.Errorf("horizontal velocity survived release: %+v", rb.Velocity)
	}
	if rb.Velocity.Y != -2 {
		t.Errorf("vertical velocity lost: %v, want -2", rb.Velocity.Y)
	}
	if (rb.AngularVelocity != rl.Vector3{}) {
		t.Errorf("angular velocity survived release: %+v", rb.AngularVelocity)
	}
}

func TestBlockClearsFallThrough(t *testing.T) {
	rb := NewRigidBody(1)
	rb.CanFallThrough = true
	rb.Velocity = rl.Vector3{Y: -5}

	rb.Block()

	if rb.CanFallThrough {
		t.Error("Block left CanFallThrough set")
	}
	if (rb.Velocity != rl.Vector3{}) {
		t.Errorf("Block left velocity %+v", rb.Velocity)
	}
	if rb.Possession != PossessionBlocked {
		t.Errorf("possession = %s, want blocked", rb.Possession)
	}
}

func TestEnergyProxyFormula(t *testing.T) {
	rb := NewRigidBody(2)
	rb.Velocity = rl.Vector3{X: 3}        // 0.5*2*9 = 9
	rb.AngularVelocity = rl.Vector3{Y: 2} // + 0.5*4 = 2

	got := rb.EnergyProxy()
	if math32.Abs(got-11) > 1e-5 {
		t.Errorf("EnergyProxy = %v, want 11", got)
	}
}

func TestBoundingRadiusFromBox(t *testing.T) {
	rb := NewRigidBody(1)
	rb.SetBoundingRadiusFromBox(rl.Vector3{X: -1, Y: -1, Z: -1}, rl.Vector3{X: 1, Y: 1, Z: 1})

	want := math32.Sqrt(3)
	if math32.Abs(rb.BoundingRadius-want) > 1e-5 {
		t.Errorf("BoundingRadius = %v, want %v", rb.BoundingRadius, want)
	}
}
