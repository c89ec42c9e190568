package claw

import (
	"clawroom/internal/components"
	"clawroom/internal/engine"
	"clawroom/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	contactPushStrength = float32(14)
	contactDamping      = float32(2.5)
)

// Sensor detects grab contacts while the fingers close. Each tick it
// runs exact mesh tests between every finger and every grabbable body;
// a body touched by enough distinct fingers in the same tick is the
// grab candidate for that tick. Candidacy is recomputed every tick, so
// a body that slips out of the fingers loses it. Contacts that fall
// short of the vote still push the body so a glancing close shoves
// prizes aside instead of clipping through them.
type Sensor struct {
	fingers   []*Finger
	threshold int

	candidateUID uint64
	hasCandidate bool
}

func NewSensor(fingers []*Finger, threshold int) *Sensor {
	if threshold < 1 {
		threshold = 1
	}
	if threshold > len(fingers) {
		threshold = len(fingers)
	}
	return &Sensor{fingers: fingers, threshold: threshold}
}

// Reset clears any candidate left over from an earlier closing phase.
func (s *Sensor) Reset() {
	s.candidateUID = 0
	s.hasCandidate = false
}

// Update runs the contact tests for one tick and recomputes the grab
// candidate from this tick's votes. Dropping below the threshold on a
// later tick revokes a candidacy established earlier.
func (s *Sensor) Update(world *physics.World) {
	votes := make(map[uint64]int)

	for fi, f := range s.fingers {
		fingerWorld := f.Obj.WorldMatrix()
		fingerInv := rl.MatrixInvert(fingerWorld)

		for _, obj := range world.Bodies() {
			rb := engine.GetComponent[*components.RigidBody](obj)
			if rb == nil || rb.Possession != components.PossessionFree || rb.InverseMass == 0 {
				continue
			}
			mesh := engine.GetComponent[*components.MeshCollider](obj)
			if mesh == nil || !mesh.IsBuilt() {
				continue
			}

			bodyWorld := obj.WorldMatrix()
			rel := rl.MatrixMultiply(bodyWorld, fingerInv)
			if !f.Mesh.IntersectsGeometry(mesh, rel) {
				continue
			}

			votes[obj.UID] |= 1 << fi
			s.pushBody(f, rb, mesh, fingerWorld, bodyWorld)
		}
	}

	s.candidateUID = 0
	s.hasCandidate = false
	for _, obj := range world.Bodies() {
		if popcount(votes[obj.UID]) >= s.threshold {
			s.candidateUID = obj.UID
			s.hasCandidate = true
			return
		}
	}
}

// pushBody applies a spring force shoving the body off the finger,
// damped against the body's own velocity so repeat contacts don't pump
// energy into the pile.
func (s *Sensor) pushBody(f *Finger, rb *components.RigidBody, mesh *components.MeshCollider, fingerWorld, bodyWorld rl.Matrix) {
	tip := fingerTipWorld(f, fingerWorld)

	// contact point on the body surface nearest the finger tip,
	// queried in the body's local frame
	local := rl.Vector3Transform(tip, rl.MatrixInvert(bodyWorld))
	closestLocal, ok := mesh.ClosestPointToPoint(local)
	contact := rb.Position
	if ok {
		contact = rl.Vector3Transform(closestLocal, bodyWorld)
	}

	dir := rl.Vector3Subtract(rb.Position, tip)
	if rl.Vector3Length(dir) < 1e-4 {
		dir = rl.Vector3{Y: 1}
	}
	dir = rl.Vector3Normalize(dir)

	force := rl.Vector3Scale(dir, contactPushStrength)
	force = rl.Vector3Subtract(force, rl.Vector3Scale(rb.Velocity, contactDamping))
	rb.Wake()
	rb.AddForceAtPoint(force, contact)
}

// Candidate resolves the current tick's grab vote to its object, or
// nil when no vote passed or the body has since left the world.
func (s *Sensor) Candidate(world *physics.World) *engine.GameObject {
	if !s.hasCandidate {
		return nil
	}
	for _, obj := range world.Bodies() {
		if obj.UID == s.candidateUID {
			return obj
		}
	}
	return nil
}

// fingerTipWorld is the world position of the finger's lower end.
func fingerTipWorld(f *Finger, fingerWorld rl.Matrix) rl.Vector3 {
	tipLocal := rl.Vector3{Y: -fingerLength * 0.5}
	return rl.Vector3Transform(tipLocal, fingerWorld)
}

func popcount(mask int) int {
	n := 0
	for mask != 0 {
		mask &= mask - 1
		n++
	}
	return n
}
