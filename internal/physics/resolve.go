package physics

import (
	"clawroom/internal/components"
	"clawroom/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Resolution tuning. These are arcade values: prizes should pile and
// settle dead, never jiggle or pop.
const (
	// PenetrationSlop is the overlap below which no correction happens,
	// so settled contacts are not "fixed" forever.
	PenetrationSlop = 0.01

	// SoftContactSpeed: closing speeds below this get zero restitution,
	// turning a tiny bounce into a dead-stop settle.
	SoftContactSpeed = 0.25

	// Positional correction factors. A kinematic plow displaces
	// obstacles firmly; two ordinary bodies separate gently.
	DynamicCorrection   float32 = 0.25
	KinematicCorrection float32 = 0.8

	// Static geometry must never stay visibly penetrated, so its
	// correction overshoots. Known limitation: deep one-tick
	// penetration can overshoot past a thin wall; the unstick
	// heuristic below is the partial safeguard, there is no swept test.
	StaticCorrection = 2.0

	// Penalty spring/damper keeping bodies resting on static surfaces.
	StaticSpringK  = 60.0
	StaticDamperC  = 6.0
	UnstickSpeed   = -2.0 // forced downward velocity for engulfed bodies
	engulfFraction = 0.25 // closest-point distance under this*radius is "engulfed"

	BoundaryCorrection = 0.4
	MinBoundarySpeed   = 0.08
	boundaryFriction   = 0.3
)

var worldUp = rl.Vector3{Y: 1}

// bodyWorldMatrix builds the local-to-world matrix from the physics
// state (not the visual transform, which may lag one sync).
func bodyWorldMatrix(obj *engine.GameObject, rb *components.RigidBody) rl.Matrix {
	t := engine.Transform{
		Position: rb.Position,
		Rotation: rb.Orientation,
		Scale:    obj.Transform.Scale,
	}
	return t.Matrix()
}

// canReceive reports whether resolution may move this body. Sleeping
// does not disqualify: a plow or a falling peer must be able to shove a
// sleeper, and the impulse wakes it.
func canReceive(rb *components.RigidBody) bool {
	return rb.Possession == components.PossessionFree && rb.InverseMass > 0
}

// pairExcluded encodes the gameplay exclusion rules: held, blocked and
// releasing bodies never interact with peers. A dispensed body stays in
// the pass as the infinite-mass plow side.
func pairExcluded(rb *components.RigidBody) bool {
	switch rb.Possession {
	case components.PossessionHeld, components.PossessionBlocked, components.PossessionReleasing:
		return true
	}
	return false
}

// resolveBodyBody runs the broad-phase pair scan and the exact
// narrow-phase mesh test, then separates and applies impulses.
func (w *World) resolveBodyBody() {
	for i := 0; i < len(w.bodies); i++ {
		objA := w.bodies[i]
		rbA := engine.GetComponent[*components.RigidBody](objA)
		if rbA == nil || pairExcluded(rbA) {
			continue
		}
		for j := i + 1; j < len(w.bodies); j++ {
			objB := w.bodies[j]
			rbB := engine.GetComponent[*components.RigidBody](objB)
			if rbB == nil || pairExcluded(rbB) {
				continue
			}
			// A fully sleeping pair stays untouched, otherwise settled
			// piles would wake each other every tick.
			if rbA.IsSleeping && rbB.IsSleeping {
				continue
			}
			// At least one side must be able to move; a dispensed plow
			// counts only through the receiving partner.
			if !canReceive(rbA) && !canReceive(rbB) {
				continue
			}

			// Broad phase: bounding-sphere overlap
			diff := rl.Vector3Subtract(rbA.Position, rbB.Position)
			dist := rl.Vector3Length(diff)
			if dist >= rbA.BoundingRadius+rbB.BoundingRadius {
				continue
			}

			w.narrowPhase(objA, objB, rbA, rbB, diff, dist)
		}
	}
}

func (w *World) narrowPhase(objA, objB *engine.GameObject, rbA, rbB *components.RigidBody, diff rl.Vector3, dist float32) {
	meshA := engine.GetComponent[*components.MeshCollider](objA)
	meshB := engine.GetComponent[*components.MeshCollider](objB)
	if meshA == nil || !meshA.IsBuilt() || meshB == nil || !meshB.IsBuilt() {
		w.Diag.SkippedColliders++
		w.logRateLimited("physics: %s/%s pair skipped, missing BVH", objA.Name, objB.Name)
		return
	}

	// Exact test: B's geometry into A's local frame. Rejects the
	// bounding-sphere false positives.
	rel := rl.MatrixMultiply(bodyWorldMatrix(objB, rbB), rl.MatrixInvert(bodyWorldMatrix(objA, rbA)))
	if !meshA.IntersectsGeometry(meshB, rel) {
		return
	}

	// Contact normal is the center-to-center direction; an intentional
	// simplification over the true contact normal.
	normal := worldUp
	if dist > 1e-4 {
		normal = rl.Vector3Scale(diff, 1/dist)
	}
	penetration := rbA.BoundingRadius + rbB.BoundingRadius - dist
	if penetration < PenetrationSlop {
		return
	}

	w.recordCollision(objA, objB)

	invA, invB := rbA.InverseMass, rbB.InverseMass
	invSum := invA + invB
	if invSum == 0 {
		return
	}

	correction := DynamicCorrection
	if invA == 0 || invB == 0 {
		correction = KinematicCorrection
	}
	rbA.Position = rl.Vector3Add(rbA.Position, rl.Vector3Scale(normal, penetration*correction*invA/invSum))
	rbB.Position = rl.Vector3Subtract(rbB.Position, rl.Vector3Scale(normal, penetration*correction*invB/invSum))

	relVel := rl.Vector3Subtract(rbA.Velocity, rbB.Velocity)
	velAlongNormal := rl.Vector3DotProduct(relVel, normal)
	if velAlongNormal > 0 {
		return // already separating
	}

	e := rbA.Restitution
	if rbB.Restitution < e {
		e = rbB.Restitution
	}
	if -velAlongNormal < SoftContactSpeed {
		e = 0 // soft contact: settle, don't bounce
	}

	j := -(1 + e) * velAlongNormal / invSum
	impulse := rl.Vector3Scale(normal, j)
	contact := rl.Vector3Subtract(rbA.Position, rl.Vector3Scale(normal, rbA.BoundingRadius))
	rbA.ApplyImpulse(impulse, contact)
	rbB.ApplyImpulse(rl.Vector3Scale(impulse, -1), contact)
}

// resolveBodyStatic pushes bodies out of the immovable machine geometry
// and keeps them resting there with a penalty spring.
func (w *World) resolveBodyStatic() {
	for _, obj := range w.bodies {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil || rb.IsSleeping || rb.Possession != components.PossessionFree || rb.CanFallThrough {
			continue
		}
		bodyMesh := engine.GetComponent[*components.MeshCollider](obj)
		if bodyMesh == nil || !bodyMesh.IsBuilt() {
			w.Diag.SkippedColliders++
			continue
		}
		world := bodyWorldMatrix(obj, rb)
		for _, s := range w.statics {
			w.resolveAgainstStatic(obj, rb, bodyMesh, world, s)
		}
	}
}

func (w *World) resolveAgainstStatic(obj *engine.GameObject, rb *components.RigidBody, bodyMesh *components.MeshCollider, world rl.Matrix, s staticCollider) {
	// Statics bake their world transform at build time, so the body's
	// world matrix is the relative transform into the static's frame.
	if !s.mesh.IntersectsGeometry(bodyMesh, world) {
		return
	}

	rb.Wake()
	w.recordCollision(obj, s.obj)

	closest, ok := s.mesh.ClosestPointToPoint(rb.Position)
	if !ok {
		return
	}
	toCenter := rl.Vector3Subtract(rb.Position, closest)
	dist := rl.Vector3Length(toCenter)

	normal := worldUp // degenerate contact defaults to "up", never NaN
	if dist > 1e-4 {
		normal = rl.Vector3Scale(toCenter, 1/dist)
	}
	penetration := rb.BoundingRadius - dist
	if penetration <= PenetrationSlop {
		return
	}

	// Aggressive one-shot correction: static geometry must not stay
	// visibly penetrated.
	rb.Position = rl.Vector3Add(rb.Position, rl.Vector3Scale(normal, penetration*StaticCorrection))

	if dist < engulfFraction*rb.BoundingRadius {
		// Near-total engulfment (spawned inside geometry, tunneled).
		// Escape heuristic: kill spin, force a steady downward drop.
		rb.AngularVelocity = rl.Vector3{}
		rb.Velocity = rl.Vector3{Y: UnstickSpeed}
		w.Diag.Unsticks++
		w.logRateLimited("physics: unstick %s from %s", obj.Name, s.obj.Name)
		return
	}

	// Continuous penalty spring plus damping against the approach
	// velocity, applied at the contact so the off-center torque is
	// real. This keeps a resting body stable under gravity instead of
	// re-penetrating next tick.
	force := rl.Vector3Scale(normal, penetration*StaticSpringK)
	approach := rl.Vector3DotProduct(rb.Velocity, normal)
	if approach < 0 {
		force = rl.Vector3Add(force, rl.Vector3Scale(normal, -approach*StaticDamperC))
	}
	rb.AddForceAtPoint(force, closest)
}

// resolveBoundaries confines each body to its category's bounds region,
// testing the rotated bounding-box corners of the body.
func (w *World) resolveBoundaries() {
	for _, obj := range w.bodies {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil || rb.IsSleeping {
			continue
		}
		switch rb.Possession {
		case components.PossessionFree, components.PossessionReleasing:
		default:
			continue
		}
		bounds := w.boundsFor(rb)
		if bounds == nil {
			continue
		}
		w.confine(obj, rb, *bounds)
	}
}

func (w *World) confine(obj *engine.GameObject, rb *components.RigidBody, bounds Bounds) {
	corners := bodyCorners(obj, rb)
	for _, corner := range corners {
		arm := rl.Vector3Subtract(corner, rb.Position)
		contactVel := rl.Vector3Add(rb.Velocity, rl.Vector3CrossProduct(rb.AngularVelocity, arm))

		for axis := 0; axis < 3; axis++ {
			lo, hi := axisValue(bounds.Min, axis), axisValue(bounds.Max, axis)
			c := axisValue(corner, axis)

			if c < lo {
				// Downward Y is the floor: a fall-through-authorized
				// body passes it freely, which is how "allowed into
				// the chute" works without a separate code path.
				if axis == 1 && rb.CanFallThrough {
					continue
				}
				w.boundaryContact(rb, corner, contactVel, axisNormal(axis, 1), lo-c)
			} else if c > hi {
				w.boundaryContact(rb, corner, contactVel, axisNormal(axis, -1), c-hi)
			}
		}
	}
}

// boundaryContact pushes the body back by a fraction of the penetration
// and, when it is still closing, applies a normal+friction impulse.
func (w *World) boundaryContact(rb *components.RigidBody, corner, contactVel, normal rl.Vector3, penetration float32) {
	rb.Position = rl.Vector3Add(rb.Position, rl.Vector3Scale(normal, penetration*BoundaryCorrection))

	closing := rl.Vector3DotProduct(contactVel, normal)
	if closing >= -MinBoundarySpeed {
		return
	}
	if rb.InverseMass == 0 {
		return
	}

	j := -(1 + rb.Restitution) * closing / rb.InverseMass
	impulse := rl.Vector3Scale(normal, j)

	// Friction tangent to the boundary plane
	tangentVel := rl.Vector3Subtract(contactVel, rl.Vector3Scale(normal, closing))
	tangentSpeed := rl.Vector3Length(tangentVel)
	if tangentSpeed > 1e-4 {
		frictionMag := boundaryFriction * rb.Friction * j
		impulse = rl.Vector3Subtract(impulse,
			rl.Vector3Scale(rl.Vector3Scale(tangentVel, 1/tangentSpeed), frictionMag))
	}

	rb.ApplyImpulse(impulse, corner)
}

// bodyCorners returns the 8 world-space corners of the body's local
// bounding box. The boundary pass uses these instead of raw mesh
// vertices so its cost doesn't scale with mesh density.
func bodyCorners(obj *engine.GameObject, rb *components.RigidBody) [8]rl.Vector3 {
	var local components.AABB
	if mesh := engine.GetComponent[*components.MeshCollider](obj); mesh != nil && mesh.IsBuilt() {
		local = mesh.GetBounds()
	} else {
		h := rb.BoundingRadius * 0.577 // inscribed cube half-extent
		local = components.AABB{
			Min: rl.Vector3{X: -h, Y: -h, Z: -h},
			Max: rl.Vector3{X: h, Y: h, Z: h},
		}
	}
	world := bodyWorldMatrix(obj, rb)
	var out [8]rl.Vector3
	i := 0
	for _, x := range [2]float32{local.Min.X, local.Max.X} {
		for _, y := range [2]float32{local.Min.Y, local.Max.Y} {
			for _, z := range [2]float32{local.Min.Z, local.Max.Z} {
				out[i] = rl.Vector3Transform(rl.Vector3{X: x, Y: y, Z: z}, world)
				i++
			}
		}
	}
	return out
}

func axisValue(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func axisNormal(axis int, sign float32) rl.Vector3 {
	switch axis {
	case 0:
		return rl.Vector3{X: sign}
	case 1:
		return rl.Vector3{Y: sign}
	default:
		return rl.Vector3{Z: sign}
	}
}
