// Package claw drives the claw mechanism: manual travel, the scripted
// pick/lift/deliver/release cycle, grab detection, and the rigid link
// that puppeteers a held prize through the delivery path.
package claw

import (
	"log"

	"clawroom/internal/components"
	"clawroom/internal/config"
	"clawroom/internal/engine"
	"clawroom/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// State is the claw automation state. The cycle is linear with one
// branch at the top of the ascent (holding vs empty).
type State int

const (
	StateManual State = iota
	StateDescending
	StateOperating
	StateAscending
	StateDeliverMoveX
	StateDeliverMoveZ
	StateDeliverDescend
	StateReleasing
	StateReturnAscend
	StateReturnMoveZ
	StateReturnMoveX
)

func (s State) String() string {
	switch s {
	case StateManual:
		return "manual"
	case StateDescending:
		return "descending"
	case StateOperating:
		return "operating"
	case StateAscending:
		return "ascending"
	case StateDeliverMoveX:
		return "deliver_move_x"
	case StateDeliverMoveZ:
		return "deliver_move_z"
	case StateDeliverDescend:
		return "deliver_descend"
	case StateReleasing:
		return "releasing"
	case StateReturnAscend:
		return "return_ascend"
	case StateReturnMoveZ:
		return "return_move_z"
	case StateReturnMoveX:
		return "return_move_x"
	}
	return "unknown"
}

// Direction is a movement intent from the input layer.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirForward
	DirBackward
)

// Controller is the claw state machine. It owns the head object, the
// three finger proxies, and (while holding) the grabbed body's physics.
type Controller struct {
	cfg   config.Claw
	world *physics.World

	Head    *engine.GameObject
	fingers []*Finger
	sensor  *Sensor

	state        State
	stateElapsed float32

	moving [4]bool

	spawnPos     rl.Vector3
	returnHeight float32
	dropTargetY  float32
	dropOffPos   rl.Vector3 // machine-corner delivery point
	deliverY     float32    // partial descent height before release
	floorY       float32

	travel      physics.Bounds  // horizontal travel limits, margin applied
	chuteRegion components.AABB // descent refused while the footprint overlaps this
	footprint   float32         // claw footprint half-extent

	grabbed     *components.RigidBody
	grabbedObj  *engine.GameObject
	prevHeadPos rl.Vector3

	// release sub-state
	cameFromDelivery bool
	fingersAtRest    bool
	settleElapsed    float32

	fingerStepTimer float32
	fingerSteps     int

	// SpendCoin gates the drop trigger on the currency resource. The
	// game wires it; nil means drops are free (tests).
	SpendCoin func() bool

	DeliveredCount int

	OnGrabbed   engine.EventWithArg[*engine.GameObject]
	OnDelivered engine.EventWithArg[*engine.GameObject]
	OnTimeout   engine.Event

	Debug bool
}

// Params locates the claw inside the machine.
type Params struct {
	Spawn       rl.Vector3
	DropOff     rl.Vector3
	DeliverY    float32
	FloorY      float32
	Travel      physics.Bounds
	ChuteRegion components.AABB
	Footprint   float32
}

func NewController(cfg config.Claw, world *physics.World, p Params) *Controller {
	head := engine.NewGameObject("ClawHead")
	head.Transform.Position = p.Spawn

	c := &Controller{
		cfg:         cfg,
		world:       world,
		Head:        head,
		state:       StateManual,
		spawnPos:    p.Spawn,
		dropOffPos:  p.DropOff,
		deliverY:    p.DeliverY,
		floorY:      p.FloorY,
		travel:      p.Travel,
		chuteRegion: p.ChuteRegion,
		footprint:   p.Footprint,
		prevHeadPos: p.Spawn,
	}
	c.fingers = makeFingers(head)
	c.sensor = NewSensor(c.fingers, cfg.GrabThreshold)
	return c
}

// State returns the current automation state.
func (c *Controller) State() State {
	return c.state
}

// IsAnimating reports whether a scripted cycle is in progress. Drop
// triggers and coin spends are refused while true.
func (c *Controller) IsAnimating() bool {
	return c.state != StateManual
}

// Fingers exposes the finger proxies for rendering.
func (c *Controller) Fingers() []*Finger {
	return c.fingers
}

// Holding returns the currently grabbed object, if any.
func (c *Controller) Holding() *engine.GameObject {
	return c.grabbedObj
}

// SetMoving sets one manual movement intent.
func (c *Controller) SetMoving(dir Direction, active bool) {
	c.moving[dir] = active
}

// StartDropSequence begins a grab cycle. Refused (returning false, no
// side effects) while animating, while the footprint overlaps the chute,
// or when the coin spend fails.
func (c *Controller) StartDropSequence() bool {
	if c.IsAnimating() {
		return false
	}
	if c.footprintOverChute() {
		return false
	}
	if c.SpendCoin != nil && !c.SpendCoin() {
		return false
	}

	c.returnHeight = c.Head.Transform.Position.Y
	c.dropTargetY = c.computeDropHeight()
	c.enter(StateDescending)
	return true
}

// footprintOverChute guards against starting a grab that would lower
// the claw straight into the delivery opening. The margin grows with
// the footprint so bigger claws refuse earlier.
func (c *Controller) footprintOverChute() bool {
	pos := c.Head.Transform.Position
	margin := c.footprint * 1.5
	return pos.X+margin > c.chuteRegion.Min.X && pos.X-margin < c.chuteRegion.Max.X &&
		pos.Z+margin > c.chuteRegion.Min.Z && pos.Z-margin < c.chuteRegion.Max.Z
}

// computeDropHeight aims the descent at the top of the pile: highest
// unheld grabbable minus a small penetration, never below floor+margin.
func (c *Controller) computeDropHeight() float32 {
	floor := c.floorY + c.cfg.FloorMargin
	best := float32(-math32.MaxFloat32)
	found := false
	for _, obj := range c.world.Bodies() {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil || rb.Possession != components.PossessionFree || rb.InverseMass == 0 || rb.IsCandy {
			continue
		}
		if rb.Position.Y > best {
			best = rb.Position.Y
			found = true
		}
	}
	if !found {
		return floor
	}
	target := best - c.cfg.GrabDepth
	if target < floor {
		target = floor
	}
	return target
}

func (c *Controller) enter(s State) {
	if c.Debug {
		log.Printf("claw: %s -> %s", c.state, s)
	}
	c.state = s
	c.stateElapsed = 0

	switch s {
	case StateOperating:
		c.beginClosing()
	case StateReleasing:
		c.beginRelease()
	}
}

// Update runs one tick of the state machine. Must be called exactly
// once per simulation tick, before or after the physics step but not
// both.
func (c *Controller) Update(dt float32) {
	if dt <= 0 {
		return
	}
	if dt > physics.MaxStepSeconds {
		dt = physics.MaxStepSeconds
	}
	c.stateElapsed += dt

	switch c.state {
	case StateManual:
		c.updateManual(dt)
	case StateDescending:
		if c.moveVertical(c.dropTargetY, c.cfg.DescendSpeed, dt) {
			c.enter(StateOperating)
		}
	case StateOperating:
		c.updateClosing(dt)
	case StateAscending:
		if c.moveVertical(c.returnHeight, c.cfg.AscendSpeed, dt) {
			if c.grabbed != nil {
				c.enter(StateDeliverMoveX)
			} else {
				c.cameFromDelivery = false
				c.enter(StateReleasing)
			}
		}
	case StateDeliverMoveX:
		if c.lerpAxis(0, c.dropOffPos.X, dt) {
			c.enter(StateDeliverMoveZ)
		}
	case StateDeliverMoveZ:
		if c.lerpAxis(2, c.dropOffPos.Z, dt) {
			c.enter(StateDeliverDescend)
		}
	case StateDeliverDescend:
		if c.moveVertical(c.deliverY, c.cfg.DescendSpeed, dt) {
			c.cameFromDelivery = true
			c.enter(StateReleasing)
		}
	case StateReleasing:
		c.updateReleasing(dt)
	case StateReturnAscend:
		if c.moveVertical(c.returnHeight, c.cfg.AscendSpeed, dt) {
			c.enter(StateReturnMoveZ)
		}
	case StateReturnMoveZ:
		if c.lerpAxis(2, c.spawnPos.Z, dt) {
			c.enter(StateReturnMoveX)
		}
	case StateReturnMoveX:
		if c.lerpAxis(0, c.spawnPos.X, dt) {
			c.enter(StateManual)
		}
	}

	// Grab sensor runs every tick during closing so brushing contacts
	// push objects even before a grab registers.
	if c.state == StateOperating {
		c.sensor.Update(c.world)
	}

	c.puppeteerHeld(dt)
	c.prevHeadPos = c.Head.Transform.Position
}

func (c *Controller) updateManual(dt float32) {
	var dir rl.Vector3
	if c.moving[DirLeft] {
		dir.X -= 1
	}
	if c.moving[DirRight] {
		dir.X += 1
	}
	if c.moving[DirForward] {
		dir.Z -= 1
	}
	if c.moving[DirBackward] {
		dir.Z += 1
	}
	if dir.X == 0 && dir.Z == 0 {
		return
	}
	dir = rl.Vector3Normalize(dir)
	pos := &c.Head.Transform.Position
	pos.X += dir.X * c.cfg.MoveSpeed * dt
	pos.Z += dir.Z * c.cfg.MoveSpeed * dt
	pos.X = clamp(pos.X, c.travel.Min.X, c.travel.Max.X)
	pos.Z = clamp(pos.Z, c.travel.Min.Z, c.travel.Max.Z)
}

// moveVertical moves linearly toward targetY; true when arrived.
func (c *Controller) moveVertical(targetY, speed, dt float32) bool {
	pos := &c.Head.Transform.Position
	diff := targetY - pos.Y
	step := speed * dt
	if math32.Abs(diff) <= step {
		pos.Y = targetY
		return true
	}
	if diff > 0 {
		pos.Y += step
	} else {
		pos.Y -= step
	}
	return false
}

// lerpAxis smooths one horizontal axis toward target (exponential, not
// constant velocity); true when within the completion epsilon.
func (c *Controller) lerpAxis(axis int, target, dt float32) bool {
	pos := &c.Head.Transform.Position
	var v *float32
	if axis == 0 {
		v = &pos.X
	} else {
		v = &pos.Z
	}
	*v += (target - *v) * math32.Min(1, c.cfg.LerpRate*dt)
	if math32.Abs(target-*v) <= c.cfg.ArriveEpsilon {
		*v = target
		return true
	}
	return false
}

// ---- finger closing ----

func (c *Controller) beginClosing() {
	for _, f := range c.fingers {
		f.BeginClose()
	}
	c.sensor.Reset()
	c.fingerSteps = 0
	c.fingerStepTimer = 0
}

// updateClosing advances each finger one increment per sub-interval.
// A finger stops individually when its bounding box meets another
// finger's proxy; the whole close stops when all fingers stopped or the
// step limit runs out, whichever first, so geometry that never
// registers a stop cannot hang the machine.
func (c *Controller) updateClosing(dt float32) {
	c.fingerStepTimer += dt
	for c.fingerStepTimer >= c.cfg.FingerStepSecs {
		c.fingerStepTimer -= c.cfg.FingerStepSecs
		c.fingerSteps++
		for i, f := range c.fingers {
			if f.Stopped() {
				continue
			}
			if c.fingerBlocked(i) {
				f.Stop()
				continue
			}
			f.StepClose()
		}
		if c.allFingersStopped() || c.fingerSteps >= c.cfg.FingerMaxSteps {
			c.finishClosing()
			return
		}
	}
}

func (c *Controller) fingerBlocked(i int) bool {
	a := c.fingers[i].WorldBox()
	for j, other := range c.fingers {
		if j == i {
			continue
		}
		b := other.WorldBox()
		if boxesOverlap(a, b) {
			return true
		}
	}
	return false
}

func (c *Controller) allFingersStopped() bool {
	for _, f := range c.fingers {
		if !f.Stopped() {
			return false
		}
	}
	return true
}

func (c *Controller) finishClosing() {
	if obj := c.sensor.Candidate(c.world); obj != nil {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb != nil && rb.Hold() {
			c.grabbed = rb
			c.grabbedObj = obj
			c.OnGrabbed.Invoke(obj)
		}
	}
	c.enter(StateAscending)
}

// ---- release protocol ----

func (c *Controller) beginRelease() {
	if c.grabbed != nil {
		c.DeliveredCount++
		c.grabbed.BeginRelease(c.world.Now())
		c.OnDelivered.Invoke(c.grabbedObj)
		c.grabbed = nil
		c.grabbedObj = nil
	}
	for _, f := range c.fingers {
		f.BeginOpen()
	}
	c.fingersAtRest = false
	c.settleElapsed = 0
}

func (c *Controller) updateReleasing(dt float32) {
	// Safety timeout: a reopen that never completes force-resets to
	// manual rather than wedging the machine.
	if c.stateElapsed > c.cfg.ReleaseTimeout {
		for _, f := range c.fingers {
			f.SnapOpen()
		}
		c.OnTimeout.Invoke()
		c.enter(StateManual)
		return
	}

	if !c.fingersAtRest {
		done := true
		for _, f := range c.fingers {
			if !f.StepOpen(dt) {
				done = false
			}
		}
		c.fingersAtRest = done
		return
	}

	c.settleElapsed += dt
	if c.settleElapsed < c.cfg.SettleDelay {
		return
	}
	if c.cameFromDelivery {
		c.enter(StateReturnAscend)
	} else {
		c.enter(StateManual)
	}
}

// puppeteerHeld is the rigid link: the held body tracks the head with a
// vertical offset, carrying the head's frame velocity so a collision of
// the claw itself doesn't look like a teleport. Angular velocity is
// pinned for visual stability.
func (c *Controller) puppeteerHeld(dt float32) {
	if c.grabbed == nil {
		return
	}
	head := c.Head.Transform.Position
	c.grabbed.Position = rl.Vector3{X: head.X, Y: head.Y - c.cfg.HoldOffset, Z: head.Z}
	if dt > 0 {
		delta := rl.Vector3Subtract(head, c.prevHeadPos)
		c.grabbed.Velocity = rl.Vector3Scale(delta, 1/dt)
	}
	c.grabbed.AngularVelocity = rl.Vector3{}
	c.grabbed.SyncTransform()
}

func boxesOverlap(a, b rl.BoundingBox) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
