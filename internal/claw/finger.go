package claw

import (
	"clawroom/internal/components"
	"clawroom/internal/engine"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fingerCount   = 3
	fingerLength  = float32(0.5)
	fingerWidth   = float32(0.09)
	fingerRadius  = float32(0.28) // hinge distance from the head axis
	restAngleDeg  = float32(35)
	closeStepDeg  = float32(1.5)
	maxCloseAngle = float32(-20) // swung past vertical, tips nearly touching
	openRateDeg   = float32(90)  // reopen speed, degrees per second
)

// Finger is one kinematic finger proxy. It hangs off the head, swings
// on a hinge at the top, and carries a box collider plus a baked mesh
// for exact contact tests. Fingers are not rigid bodies; they move only
// under the controller's script.
type Finger struct {
	Obj  *engine.GameObject
	Box  *components.BoxCollider
	Mesh *components.MeshCollider

	azimuth   float32 // fixed placement angle around the head axis
	restAngle float32
	angle     float32 // current hinge angle, degrees from vertical
	stopped   bool
}

// makeFingers builds three fingers spread evenly around the head and
// parents them so head movement carries them along.
func makeFingers(head *engine.GameObject) []*Finger {
	size := rl.Vector3{X: fingerWidth, Y: fingerLength, Z: fingerWidth}
	fingers := make([]*Finger, 0, fingerCount)
	for i := 0; i < fingerCount; i++ {
		obj := engine.NewGameObject("ClawFinger")
		box := &components.BoxCollider{Size: size}
		mesh := &components.MeshCollider{}
		mesh.BuildFromBox(size)
		obj.AddComponent(box)
		obj.AddComponent(mesh)
		head.AddChild(obj)

		f := &Finger{
			Obj:       obj,
			Box:       box,
			Mesh:      mesh,
			azimuth:   float32(i) * (2 * math32.Pi / fingerCount),
			restAngle: restAngleDeg,
			angle:     restAngleDeg,
		}
		f.applyPose()
		fingers = append(fingers, f)
	}
	return fingers
}

// applyPose writes the finger's local transform from its hinge angle.
// The hinge sits at the head, the finger midpoint swings below it.
func (f *Finger) applyPose() {
	rad := f.angle * rl.Deg2rad
	// outward lean: positive angle pushes the tip away from the axis
	out := fingerRadius + math32.Sin(rad)*fingerLength*0.5
	down := -math32.Cos(rad) * fingerLength * 0.5

	local := rl.Vector3{
		X: math32.Cos(f.azimuth) * out,
		Y: down,
		Z: math32.Sin(f.azimuth) * out,
	}
	f.Obj.Transform.Position = local

	tilt := rl.QuaternionFromAxisAngle(rl.Vector3{X: -math32.Sin(f.azimuth), Z: math32.Cos(f.azimuth)}, rad)
	f.Obj.Transform.Rotation = tilt
}

func (f *Finger) BeginClose() {
	f.stopped = false
}

// StepClose advances one closing increment.
func (f *Finger) StepClose() {
	f.angle -= closeStepDeg
	if f.angle <= maxCloseAngle {
		f.angle = maxCloseAngle
		f.stopped = true
	}
	f.applyPose()
}

// Stop freezes the finger at its current angle for the rest of the
// closing phase.
func (f *Finger) Stop() {
	f.stopped = true
}

func (f *Finger) Stopped() bool {
	return f.stopped
}

func (f *Finger) BeginOpen() {
	f.stopped = false
}

// StepOpen swings back toward the recorded rest pose; true at rest.
func (f *Finger) StepOpen(dt float32) bool {
	if f.angle >= f.restAngle {
		return true
	}
	f.angle += openRateDeg * dt
	if f.angle >= f.restAngle {
		f.angle = f.restAngle
	}
	f.applyPose()
	return f.angle >= f.restAngle
}

// SnapOpen jumps straight to the rest pose. Used by the release
// timeout so the machine never stays wedged half-open.
func (f *Finger) SnapOpen() {
	f.angle = f.restAngle
	f.applyPose()
}

// WorldBox is the finger's world-space bounding box, used for the
// cheap finger-vs-finger stop test while closing.
func (f *Finger) WorldBox() rl.BoundingBox {
	return f.Box.WorldBox()
}
