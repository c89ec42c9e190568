package components

import (
	"clawroom/internal/engine"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sleep tuning. The energy proxy is 0.5*m*|v|^2 + 0.5*|w|^2 with no inertia
// term; the thresholds are calibrated to that exact formula, so don't "fix"
// the units without retuning.
const (
	SleepThreshold = 0.05 // energy proxy floor
	FramesToSleep  = 40   // consecutive low-energy ticks before sleep

	LinearDamping  = 0.995 // per-tick multiplicative velocity damping
	AngularDamping = 0.97  // angular damped slightly harder for stability
)

// Possession says who owns a body's transform this tick. Anything other
// than PossessionFree suppresses some or all of ordinary physics; the
// enum makes held/dispensed exclusivity structural instead of a flag
// convention.
type Possession int

const (
	// PossessionFree: ordinary physics.
	PossessionFree Possession = iota
	// PossessionHeld: claw rigid link. Integration and all collision
	// passes skip the body; the claw writes position and velocity.
	PossessionHeld
	// PossessionDispensed: candy machine transport. Inverse mass is
	// forced to zero so the body plows dynamic peers aside without
	// being affected itself.
	PossessionDispensed
	// PossessionReleasing: timed clean-drop window. Vertical gravity
	// only, horizontal and angular velocity pinned, no body-body or
	// body-static collision.
	PossessionReleasing
	// PossessionBlocked: frozen in the delivery chute for the win
	// animation. No forces, no integration.
	PossessionBlocked
)

func (p Possession) String() string {
	switch p {
	case PossessionFree:
		return "free"
	case PossessionHeld:
		return "held"
	case PossessionDispensed:
		return "dispensed"
	case PossessionReleasing:
		return "releasing"
	case PossessionBlocked:
		return "blocked"
	}
	return "unknown"
}

// RigidBody is the dynamic state of one grabbable object (prize or candy).
// It owns the authoritative position/orientation and copies them onto the
// GameObject transform every tick, so puppeteered motion is visible even
// when integration is suppressed.
type RigidBody struct {
	engine.BaseComponent

	Position        rl.Vector3
	Orientation     rl.Quaternion
	Velocity        rl.Vector3
	AngularVelocity rl.Vector3
	force           rl.Vector3
	torque          rl.Vector3

	Mass        float32
	InverseMass float32 // 0 = infinite mass (static or kinematic this tick)

	// BoundingRadius is the half-diagonal of the object's bounding box.
	// Broad phase and static resolution treat the body as this sphere.
	BoundingRadius float32

	Restitution float32 // near 0: prizes pile, they don't bounce
	Friction    float32

	IsSleeping  bool
	sleepyTicks int

	Possession     Possession
	CanFallThrough bool // skip the downward floor check (chute authorized)
	IsCandy        bool // selects the candy bounds region

	releasedAt    float64 // world-clock seconds when the clean drop began
	storedInvMass float32
}

func NewRigidBody(mass float32) *RigidBody {
	if mass <= 0 {
		mass = 1
	}
	return &RigidBody{
		Orientation: rl.QuaternionIdentity(),
		Mass:        mass,
		InverseMass: 1 / mass,
		Restitution: 0.05,
		Friction:    0.4,
	}
}

// Wake forces the body out of sleep state.
func (r *RigidBody) Wake() {
	r.IsSleeping = false
	r.sleepyTicks = 0
}

// AddForce accumulates a force through the center of mass.
func (r *RigidBody) AddForce(f rl.Vector3) {
	r.force = rl.Vector3Add(r.force, f)
}

// AddForceAtPoint accumulates a force applied at a world-space point,
// including the resulting torque from the off-center application.
func (r *RigidBody) AddForceAtPoint(f, worldPoint rl.Vector3) {
	r.force = rl.Vector3Add(r.force, f)
	arm := rl.Vector3Subtract(worldPoint, r.Position)
	r.torque = rl.Vector3Add(r.torque, rl.Vector3CrossProduct(arm, f))
}

// ApplyImpulse is the sole channel by which collision resolution perturbs
// a body. No-op on infinite mass. Always wakes the body.
func (r *RigidBody) ApplyImpulse(impulse, worldPoint rl.Vector3) {
	if r.InverseMass == 0 {
		return
	}
	r.Wake()
	r.Velocity = rl.Vector3Add(r.Velocity, rl.Vector3Scale(impulse, r.InverseMass))
	arm := rl.Vector3Subtract(worldPoint, r.Position)
	spin := rl.Vector3CrossProduct(arm, impulse)
	r.AngularVelocity = rl.Vector3Add(r.AngularVelocity, rl.Vector3Scale(spin, r.InverseMass))
}

// EnergyProxy is the arcade kinetic-energy stand-in used for the sleep
// decision. Not physically meaningful; see the constant block above.
func (r *RigidBody) EnergyProxy() float32 {
	v2 := rl.Vector3DotProduct(r.Velocity, r.Velocity)
	w2 := rl.Vector3DotProduct(r.AngularVelocity, r.AngularVelocity)
	return 0.5*r.Mass*v2 + 0.5*w2
}

// Integrate advances the body by one fixed timestep. Suppressed states
// still sync the visual transform so the puppeteer's writes are visible.
func (r *RigidBody) Integrate(dt float32) {
	if r.InverseMass == 0 || r.IsSleeping || r.Possession == PossessionBlocked ||
		r.Possession == PossessionDispensed || r.Possession == PossessionHeld {
		r.force = rl.Vector3{}
		r.torque = rl.Vector3{}
		r.SyncTransform()
		return
	}

	r.Velocity = rl.Vector3Add(r.Velocity, rl.Vector3Scale(r.force, r.InverseMass*dt))
	r.AngularVelocity = rl.Vector3Add(r.AngularVelocity, rl.Vector3Scale(r.torque, dt))
	r.force = rl.Vector3{}
	r.torque = rl.Vector3{}

	r.Velocity = rl.Vector3Scale(r.Velocity, LinearDamping)
	r.AngularVelocity = rl.Vector3Scale(r.AngularVelocity, AngularDamping)

	r.Position = rl.Vector3Add(r.Position, rl.Vector3Scale(r.Velocity, dt))

	// dq/dt = 0.5 * w * q, with w as a pure quaternion. Renormalizing
	// every tick is mandatory to counter integration drift.
	omega := rl.Quaternion{X: r.AngularVelocity.X, Y: r.AngularVelocity.Y, Z: r.AngularVelocity.Z, W: 0}
	dq := rl.QuaternionScale(rl.QuaternionMultiply(omega, r.Orientation), 0.5*dt)
	r.Orientation = rl.QuaternionNormalize(rl.QuaternionAdd(r.Orientation, dq))

	if r.EnergyProxy() < SleepThreshold {
		r.sleepyTicks++
		if r.sleepyTicks >= FramesToSleep {
			r.IsSleeping = true
			r.Velocity = rl.Vector3{}
			r.AngularVelocity = rl.Vector3{}
		}
	} else {
		r.sleepyTicks = 0
	}

	r.SyncTransform()
}

// SyncTransform copies the physics state onto the owned visual transform.
func (r *RigidBody) SyncTransform() {
	if g := r.GetGameObject(); g != nil {
		g.Transform.Position = r.Position
		g.Transform.Rotation = r.Orientation
	}
}

// Hold hands the body to a claw rigid link. Returns false if another
// mechanism already owns it.
func (r *RigidBody) Hold() bool {
	if r.Possession != PossessionFree {
		return false
	}
	r.Wake()
	r.Possession = PossessionHeld
	return true
}

// BeginDispense hands the body to the candy transport and makes it a
// kinematic plow (infinite mass). Returns false if already owned.
func (r *RigidBody) BeginDispense() bool {
	if r.Possession != PossessionFree {
		return false
	}
	r.Wake()
	r.Possession = PossessionDispensed
	r.storedInvMass = r.InverseMass
	r.InverseMass = 0
	return true
}

// BeginRelease starts the clean-drop window at world-clock time now
// (seconds). Valid from Held, Dispensed or Free.
func (r *RigidBody) BeginRelease(now float64) {
	if r.Possession == PossessionDispensed {
		r.InverseMass = r.storedInvMass
	}
	r.Wake()
	r.Possession = PossessionReleasing
	r.releasedAt = now
	r.Velocity = rl.Vector3{X: 0, Y: r.Velocity.Y, Z: 0}
	r.AngularVelocity = rl.Vector3{}
}

// ReleasedAt reports the clean-drop start time.
func (r *RigidBody) ReleasedAt() float64 {
	return r.releasedAt
}

// Block freezes the body permanently (accepted into the delivery chute).
func (r *RigidBody) Block() {
	if r.Possession == PossessionDispensed {
		r.InverseMass = r.storedInvMass
	}
	r.Possession = PossessionBlocked
	r.Velocity = rl.Vector3{}
	r.AngularVelocity = rl.Vector3{}
	r.CanFallThrough = false
}

// ReturnToPhysics puts the body back under ordinary simulation.
func (r *RigidBody) ReturnToPhysics() {
	if r.Possession == PossessionDispensed {
		r.InverseMass = r.storedInvMass
	}
	r.Possession = PossessionFree
	r.Wake()
}

// SetBoundingRadiusFromBox precomputes the half-diagonal from a bounding box.
func (r *RigidBody) SetBoundingRadiusFromBox(min, max rl.Vector3) {
	d := rl.Vector3Subtract(max, min)
	r.BoundingRadius = 0.5 * math32.Sqrt(d.X*d.X+d.Y*d.Y+d.Z*d.Z)
}
