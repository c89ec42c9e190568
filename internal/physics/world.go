package physics

import (
	"log"
	"time"

	"clawroom/internal/components"
	"clawroom/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Step tuning. The cast is tens of bodies, so the broad phase stays a
// deterministic O(n^2) pair scan over the insertion-ordered body list.
const (
	// MaxStepSeconds clamps pathological frame spikes so a hitch cannot
	// multiply the positional corrections into a tunneling event.
	MaxStepSeconds = 0.05

	// ReleaseWindowSeconds is the clean-drop duration after a claw or
	// dispenser lets go of a body: vertical gravity only, no collision.
	ReleaseWindowSeconds = 1.2

	safetyZoneStrength = 6.0
)

// Diagnostics are soft-failure counters the tests assert on. Nothing in
// the step loop throws; degraded paths count instead.
type Diagnostics struct {
	SkippedColliders uint64 // narrow-phase skips due to missing BVH
	Unsticks         uint64 // deep-penetration escape heuristic firings
	RejectedStatics  uint64 // AddStaticCollider calls without a built BVH
}

type staticCollider struct {
	obj  *engine.GameObject
	mesh *components.MeshCollider
}

// World owns the rigid bodies, the static machine geometry, the
// confinement regions and the fixed-tick stepping loop.
type World struct {
	Gravity rl.Vector3

	bodies  []*engine.GameObject
	statics []staticCollider

	worldBounds *Bounds
	prizeBounds *Bounds
	candyBounds *Bounds

	dispenserZone *SafetyZone
	chuteZone     *SafetyZone

	// Simulation clock in seconds; the clean-release window and tests
	// measure elapsed time against this, not the wall clock.
	clock float64

	activeCollisions  map[[2]uint64]bool
	currentCollisions map[[2]uint64]bool

	Diag        Diagnostics
	lastLogTime time.Time
}

func NewWorld() *World {
	return &World{
		Gravity:           rl.Vector3{Y: -20.0},
		bodies:            make([]*engine.GameObject, 0),
		activeCollisions:  make(map[[2]uint64]bool),
		currentCollisions: make(map[[2]uint64]bool),
	}
}

// Now returns the simulation clock in seconds.
func (w *World) Now() float64 {
	return w.clock
}

// Bodies returns the live body list (insertion order).
func (w *World) Bodies() []*engine.GameObject {
	return w.bodies
}

// AddBody registers a dynamic body. The object must carry a RigidBody.
func (w *World) AddBody(g *engine.GameObject) {
	if engine.GetComponent[*components.RigidBody](g) == nil {
		log.Printf("physics: AddBody(%s): no RigidBody, ignored", g.Name)
		return
	}
	w.bodies = append(w.bodies, g)
}

// RemoveBody removes a body by identity.
func (w *World) RemoveBody(g *engine.GameObject) {
	for i, obj := range w.bodies {
		if obj == g {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

// AddStaticCollider registers immovable machine geometry. Meshes without
// a built acceleration structure are refused with a diagnostic; a wall
// that silently can't collide is better than a crash mid-game.
func (w *World) AddStaticCollider(g *engine.GameObject) bool {
	mesh := engine.GetComponent[*components.MeshCollider](g)
	if mesh == nil || !mesh.IsBuilt() {
		w.Diag.RejectedStatics++
		log.Printf("physics: static collider %q has no built BVH, skipped", g.Name)
		return false
	}
	w.statics = append(w.statics, staticCollider{obj: g, mesh: mesh})
	return true
}

// SetWorldBounds confines every body that has no narrower region.
func (w *World) SetWorldBounds(min, max rl.Vector3) {
	b := Bounds{Min: min, Max: max}
	w.worldBounds = &b
}

// SetPrizeBounds confines prize bodies, with a small inward margin.
func (w *World) SetPrizeBounds(min, max rl.Vector3) {
	b := NewBoundsWithMargin(min, max, 0.05)
	w.prizeBounds = &b
}

// SetCandyBounds confines candy bodies.
func (w *World) SetCandyBounds(min, max rl.Vector3) {
	b := Bounds{Min: min, Max: max}
	w.candyBounds = &b
}

func (w *World) SetDispenserSafetyZone(center rl.Vector3, radius float32) {
	w.dispenserZone = &SafetyZone{Center: center, Radius: radius}
}

func (w *World) SetChuteSafetyZone(center rl.Vector3, radius float32) {
	w.chuteZone = &SafetyZone{Center: center, Radius: radius}
}

// boundsFor selects the confinement region for a body by category.
func (w *World) boundsFor(rb *components.RigidBody) *Bounds {
	if rb.IsCandy && w.candyBounds != nil {
		return w.candyBounds
	}
	if w.prizeBounds != nil {
		return w.prizeBounds
	}
	return w.worldBounds
}

// Step advances the simulation by one tick. Order is fixed: forces and
// special-state handling, then body-body, body-static, boundary
// resolution, then integration, then the post-integration zone pushes.
// Reordering any of these changes physical behavior.
func (w *World) Step(deltaTime float32) {
	if deltaTime <= 0 {
		return
	}
	if deltaTime > MaxStepSeconds {
		deltaTime = MaxStepSeconds
	}
	w.clock += float64(deltaTime)

	w.currentCollisions = make(map[[2]uint64]bool)

	// 1. Gravity and possession-state handling
	for _, obj := range w.bodies {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil {
			continue
		}
		switch rb.Possession {
		case components.PossessionFree:
			if !rb.IsSleeping && rb.InverseMass > 0 {
				rb.AddForce(rl.Vector3Scale(w.Gravity, rb.Mass))
			}
		case components.PossessionReleasing:
			w.stepRelease(rb)
		case components.PossessionHeld, components.PossessionDispensed, components.PossessionBlocked:
			// Puppeteer or freeze owns the transform; no forces.
		}
	}

	// 2. Collision passes, fixed order: peers first, then immovable
	// geometry (so peer corrections can't leave a body inside a wall),
	// then confinement.
	w.resolveBodyBody()
	w.resolveBodyStatic()
	w.resolveBoundaries()

	// 3. Integration. Suppressed states still sync their visual
	// transform inside Integrate, so puppeteered motion stays visible.
	for _, obj := range w.bodies {
		if rb := engine.GetComponent[*components.RigidBody](obj); rb != nil {
			rb.Integrate(deltaTime)
		}
	}

	// 4. Post-integration positional constraints
	w.applySafetyZones()

	w.dispatchCollisionCallbacks()
}

// stepRelease runs one tick of the clean-drop protocol: pin horizontal
// and angular motion, apply vertical gravity only, and hand the body
// back to normal physics when the window elapses. A nonsensical
// timestamp (negative elapsed) aborts the window immediately.
func (w *World) stepRelease(rb *components.RigidBody) {
	elapsed := w.clock - rb.ReleasedAt()
	if elapsed < 0 || elapsed >= ReleaseWindowSeconds {
		rb.ReturnToPhysics()
		return
	}
	rb.Velocity = rl.Vector3{Y: rb.Velocity.Y}
	rb.AngularVelocity = rl.Vector3{}
	rb.AddForce(rl.Vector3{Y: w.Gravity.Y * rb.Mass})
}

// applySafetyZones nudges settled free bodies out of the mechanisms'
// working areas. Dispenser zone guards candy spawns, chute zone guards
// the prize drop-off.
func (w *World) applySafetyZones() {
	for _, obj := range w.bodies {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil || rb.Possession != components.PossessionFree {
			continue
		}
		var push rl.Vector3
		if rb.IsCandy && w.dispenserZone != nil {
			push = w.dispenserZone.PushOut(rb.Position, safetyZoneStrength)
		} else if !rb.IsCandy && w.chuteZone != nil {
			push = w.chuteZone.PushOut(rb.Position, safetyZoneStrength)
		}
		if push.X != 0 || push.Z != 0 {
			rb.Wake()
			rb.AddForce(push)
		}
	}
}

// ---- collision bookkeeping (enter/exit callbacks) ----

func pairKey(a, b *engine.GameObject) [2]uint64 {
	if a.UID > b.UID {
		a, b = b, a
	}
	return [2]uint64{a.UID, b.UID}
}

func (w *World) recordCollision(a, b *engine.GameObject) {
	w.currentCollisions[pairKey(a, b)] = true
}

func (w *World) dispatchCollisionCallbacks() {
	for key := range w.currentCollisions {
		if !w.activeCollisions[key] {
			w.notifyCollision(key, true)
		}
	}
	for key := range w.activeCollisions {
		if !w.currentCollisions[key] {
			w.notifyCollision(key, false)
		}
	}
	w.activeCollisions = w.currentCollisions
}

func (w *World) notifyCollision(key [2]uint64, enter bool) {
	a := w.findObject(key[0])
	b := w.findObject(key[1])
	if a == nil || b == nil {
		return
	}
	notify := func(obj, other *engine.GameObject) {
		for _, comp := range obj.Components() {
			if handler, ok := comp.(engine.CollisionHandler); ok {
				if enter {
					handler.OnCollisionEnter(other)
				} else {
					handler.OnCollisionExit(other)
				}
			}
		}
	}
	notify(a, b)
	notify(b, a)
}

func (w *World) findObject(uid uint64) *engine.GameObject {
	for _, obj := range w.bodies {
		if obj.UID == uid {
			return obj
		}
	}
	for _, s := range w.statics {
		if s.obj.UID == uid {
			return s.obj
		}
	}
	return nil
}

// logRateLimited emits at most one diagnostic line per second; the step
// loop runs 60 times a second and must not spam.
func (w *World) logRateLimited(format string, args ...any) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	w.lastLogTime = time.Now()
	log.Printf(format, args...)
}
