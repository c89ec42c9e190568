// Package candy drives the candy dispenser: a gate drops to admit one
// piece, a transport plows it to the drop shaft, a door opens at the
// bottom and the piece is thrown into the room on an arc. A decorative
// knob turns in parallel; the sequence only rearms once both the
// mechanism and the knob have finished.
package candy

import (
	"log"

	"clawroom/internal/components"
	"clawroom/internal/config"
	"clawroom/internal/engine"
	"clawroom/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type State int

const (
	StateIdle State = iota
	StateLoweringGate
	StateMovingCandy
	StateDescending
	StateOpeningDoor
	StateEjecting
	StateClosingDoor
	StateRaisingGate
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoweringGate:
		return "lowering_gate"
	case StateMovingCandy:
		return "moving_candy"
	case StateDescending:
		return "descending"
	case StateOpeningDoor:
		return "opening_door"
	case StateEjecting:
		return "ejecting"
	case StateClosingDoor:
		return "closing_door"
	case StateRaisingGate:
		return "raising_gate"
	}
	return "unknown"
}

// Dispenser is the candy machine state machine. While a piece is in
// transit it is plowed kinematically: positions are written directly
// and the velocity is kept consistent so bystander candies get shoved
// rather than clipped through.
type Dispenser struct {
	cfg   config.Candy
	world *physics.World

	Gate *engine.GameObject
	Door *engine.GameObject
	Knob *engine.GameObject

	state        State
	stateElapsed float32
	totalElapsed float32

	gateRestY float32
	doorRestY float32

	knobRunning bool
	knobElapsed float32
	knobDone    bool

	selected    *components.RigidBody
	selectedObj *engine.GameObject

	shaftTop    rl.Vector3 // above the drop shaft, transport destination
	shaftExit   rl.Vector3 // bottom of the shaft, behind the door
	ejectTarget rl.Vector3 // landing area out in the room
	ejectStart  rl.Vector3

	// SpendCoin gates the dispense trigger; nil means free (tests).
	SpendCoin func() bool

	DispensedCount int

	OnEjected engine.EventWithArg[*engine.GameObject]
	OnAborted engine.Event

	Debug bool
}

// Params locates the mechanism inside the machine.
type Params struct {
	ShaftTop    rl.Vector3
	ShaftExit   rl.Vector3
	EjectTarget rl.Vector3
}

func NewDispenser(cfg config.Candy, world *physics.World, p Params) *Dispenser {
	gate := engine.NewGameObject("CandyGate")
	gate.Transform.Position = rl.Vector3{X: p.ShaftTop.X, Y: p.ShaftTop.Y + 0.4, Z: p.ShaftTop.Z}
	door := engine.NewGameObject("CandyDoor")
	door.Transform.Position = p.ShaftExit
	knob := engine.NewGameObject("CandyKnob")

	return &Dispenser{
		cfg:         cfg,
		world:       world,
		Gate:        gate,
		Door:        door,
		Knob:        knob,
		gateRestY:   gate.Transform.Position.Y,
		doorRestY:   door.Transform.Position.Y,
		shaftTop:    p.ShaftTop,
		shaftExit:   p.ShaftExit,
		ejectTarget: p.EjectTarget,
	}
}

func (d *Dispenser) State() State {
	return d.state
}

// IsAnimating reports whether a dispense sequence is in progress.
func (d *Dispenser) IsAnimating() bool {
	return d.state != StateIdle
}

// StartDispensing begins a sequence. Refused while one is already
// running, when no free candy exists, or when the coin spend fails.
func (d *Dispenser) StartDispensing() bool {
	if d.IsAnimating() {
		return false
	}
	obj, rb := d.nearestFreeCandy()
	if rb == nil {
		return false
	}
	if d.SpendCoin != nil && !d.SpendCoin() {
		return false
	}
	if !rb.BeginDispense() {
		return false
	}
	d.selected = rb
	d.selectedObj = obj
	d.totalElapsed = 0
	d.knobRunning = true
	d.knobElapsed = 0
	d.knobDone = false
	d.enter(StateLoweringGate)
	return true
}

// nearestFreeCandy picks the free candy closest to the shaft.
func (d *Dispenser) nearestFreeCandy() (*engine.GameObject, *components.RigidBody) {
	var bestObj *engine.GameObject
	var bestRB *components.RigidBody
	bestDist := float32(math32.MaxFloat32)
	for _, obj := range d.world.Bodies() {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil || !rb.IsCandy || rb.Possession != components.PossessionFree {
			continue
		}
		dist := rl.Vector3Length(rl.Vector3Subtract(rb.Position, d.shaftTop))
		if dist < bestDist {
			bestDist = dist
			bestObj = obj
			bestRB = rb
		}
	}
	return bestObj, bestRB
}

func (d *Dispenser) enter(s State) {
	if d.Debug {
		log.Printf("candy: %s -> %s", d.state, s)
	}
	d.state = s
	d.stateElapsed = 0
	if s == StateEjecting {
		d.ejectStart = d.selected.Position
	}
}

// Update runs one tick. The knob track advances in parallel with
// whatever mechanical state is active.
func (d *Dispenser) Update(dt float32) {
	if dt <= 0 || d.state == StateIdle {
		return
	}
	if dt > physics.MaxStepSeconds {
		dt = physics.MaxStepSeconds
	}
	d.stateElapsed += dt
	d.totalElapsed += dt

	// Hard abort for a wedged sequence. The candy goes back to the
	// simulation wherever it is rather than staying possessed forever.
	if d.totalElapsed > d.cfg.SequenceLimit {
		log.Printf("candy: sequence exceeded %.1fs in %s, aborting", d.cfg.SequenceLimit, d.state)
		d.abort()
		return
	}

	if d.knobRunning {
		d.knobElapsed += dt
		d.Knob.Transform.Rotation = rl.QuaternionFromAxisAngle(
			rl.Vector3{Z: 1}, d.knobElapsed/d.cfg.KnobSecs*2*math32.Pi)
		if d.knobElapsed >= d.cfg.KnobSecs {
			d.knobRunning = false
			d.knobDone = true
		}
	}

	switch d.state {
	case StateLoweringGate:
		if d.moveGate(d.gateRestY-d.cfg.GateTravel, dt) {
			d.enter(StateMovingCandy)
		}
	case StateMovingCandy:
		if d.plowToward(d.shaftTop, d.cfg.TransportSpeed, dt) {
			d.enter(StateDescending)
		}
	case StateDescending:
		if d.plowToward(d.shaftExit, d.cfg.TransportSpeed, dt) {
			d.enter(StateOpeningDoor)
		}
	case StateOpeningDoor:
		t := d.stateElapsed / d.cfg.DoorOpenSecs
		d.Door.Transform.Position.Y = d.doorRestY + math32.Min(t, 1)*0.3
		if t >= 1 {
			d.enter(StateEjecting)
		}
	case StateEjecting:
		d.updateEject(dt)
	case StateClosingDoor:
		t := d.stateElapsed / d.cfg.DoorOpenSecs
		d.Door.Transform.Position.Y = d.doorRestY + (1-math32.Min(t, 1))*0.3
		if t >= 1 {
			d.enter(StateRaisingGate)
		}
	case StateRaisingGate:
		// the knob must also finish before the machine rearms
		if d.moveGate(d.gateRestY, dt) && d.knobDone {
			d.enter(StateIdle)
		}
	}
}

func (d *Dispenser) moveGate(targetY, dt float32) bool {
	pos := &d.Gate.Transform.Position
	diff := targetY - pos.Y
	step := d.cfg.GateSpeed * dt
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

// plowToward moves the selected candy at constant speed and writes a
// matching velocity so collision passes see it as a moving kinematic
// plow. True on arrival.
func (d *Dispenser) plowToward(target rl.Vector3, speed, dt float32) bool {
	rb := d.selected
	diff := rl.Vector3Subtract(target, rb.Position)
	dist := rl.Vector3Length(diff)
	step := speed * dt
	if dist <= step {
		d.moveSelected(target, dt)
		return true
	}
	next := rl.Vector3Add(rb.Position, rl.Vector3Scale(rl.Vector3Normalize(diff), step))
	d.moveSelected(next, dt)
	return false
}

func (d *Dispenser) moveSelected(pos rl.Vector3, dt float32) {
	rb := d.selected
	delta := rl.Vector3Subtract(pos, rb.Position)
	rb.Position = pos
	if dt > 0 {
		rb.Velocity = rl.Vector3Scale(delta, 1/dt)
	}
	rb.AngularVelocity = rl.Vector3{}
	rb.SyncTransform()
}

// updateEject throws the candy along a two-segment path: a straight
// run clear of the door, then a horizontal glide with a sine arc in Y
// toward the landing point. At the end the candy is handed back to the
// simulation through the clean-release window so it settles instead of
// pinballing off whatever it lands on.
func (d *Dispenser) updateEject(dt float32) {
	t := d.stateElapsed / d.cfg.EjectSecs
	if t >= 1 {
		d.moveSelected(d.ejectTarget, dt)
		d.finishEject()
		return
	}

	mid := rl.Vector3{
		X: d.ejectStart.X + (d.ejectTarget.X-d.ejectStart.X)*0.3,
		Y: d.ejectStart.Y,
		Z: d.ejectStart.Z + (d.ejectTarget.Z-d.ejectStart.Z)*0.3,
	}

	var pos rl.Vector3
	if t < 0.5 {
		s := t / 0.5
		pos = rl.Vector3Add(d.ejectStart, rl.Vector3Scale(rl.Vector3Subtract(mid, d.ejectStart), s))
	} else {
		s := (t - 0.5) / 0.5
		pos = rl.Vector3Add(mid, rl.Vector3Scale(rl.Vector3Subtract(d.ejectTarget, mid), s))
		pos.Y = mid.Y + (d.ejectTarget.Y-mid.Y)*s + math32.Sin(s*math32.Pi)*d.cfg.EjectArcHeight
	}
	d.moveSelected(pos, dt)
}

func (d *Dispenser) finishEject() {
	rb := d.selected
	obj := d.selectedObj
	d.selected = nil
	d.selectedObj = nil
	d.DispensedCount++
	rb.BeginRelease(d.world.Now())
	d.OnEjected.Invoke(obj)
	d.enter(StateClosingDoor)
}

// abort force-resets the mechanism and returns the candy to the
// simulation in place.
func (d *Dispenser) abort() {
	if d.selected != nil {
		d.selected.ReturnToPhysics()
		d.selected = nil
		d.selectedObj = nil
	}
	d.Gate.Transform.Position.Y = d.gateRestY
	d.Door.Transform.Position.Y = d.doorRestY
	d.knobRunning = false
	d.knobDone = false
	d.OnAborted.Invoke()
	d.state = StateIdle
	d.stateElapsed = 0
}
