package claw

import (
	"testing"

	"clawroom/internal/components"
	"clawroom/internal/config"
	"clawroom/internal/engine"
	"clawroom/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const tick = float32(1.0 / 120.0)

func testParams() Params {
	return Params{
		Spawn:    rl.Vector3{X: 0, Y: 2.4, Z: 0},
		DropOff:  rl.Vector3{X: 1.5, Y: 2.4, Z: 1.5},
		DeliverY: 1.2,
		FloorY:   0,
		Travel: physics.Bounds{
			Min: rl.Vector3{X: -2, Z: -2},
			Max: rl.Vector3{X: 2, Z: 2},
		},
		ChuteRegion: components.AABB{
			Min: rl.Vector3{X: 5, Z: 5},
			Max: rl.Vector3{X: 6, Y: 1, Z: 6},
		},
		Footprint: 0.3,
	}
}

func newTestWorld() *physics.World {
	w := physics.NewWorld()
	w.SetPrizeBounds(rl.Vector3{X: -2, Y: 0, Z: -2}, rl.Vector3{X: 2, Y: 3, Z: 2})
	return w
}

func addPrize(w *physics.World, pos rl.Vector3) (*engine.GameObject, *components.RigidBody) {
	obj := engine.NewGameObject("Prize")
	obj.Transform.Position = pos

	size := rl.Vector3{X: 0.4, Y: 0.4, Z: 0.4}
	rb := components.NewRigidBody(0.5)
	rb.Position = pos
	rb.SetBoundingRadiusFromBox(rl.Vector3{X: -0.2, Y: -0.2, Z: -0.2}, rl.Vector3{X: 0.2, Y: 0.2, Z: 0.2})
	obj.AddComponent(rb)

	mesh := &components.MeshCollider{}
	mesh.BuildFromBox(size)
	obj.AddComponent(mesh)

	w.AddBody(obj)
	return obj, rb
}

func runTicks(c *Controller, w *physics.World, n int) {
	for i := 0; i < n; i++ {
		c.Update(tick)
		w.Step(tick)
	}
}

func TestDropRefusedWithoutCoin(t *testing.T) {
	w := newTestWorld()
	c := NewController(config.Default().Claw, w, testParams())
	c.SpendCoin = func() bool { return false }

	if c.StartDropSequence() {
		t.Error("drop started without a coin")
	}
	if c.State() != StateManual {
		t.Errorf("state = %s after refused drop, want manual", c.State())
	}
}

func TestDropRefusedWhileAnimating(t *testing.T) {
	w := newTestWorld()
	c := NewController(config.Default().Claw, w, testParams())

	if !c.StartDropSequence() {
		t.Fatal("first drop refused")
	}
	if c.StartDropSequence() {
		t.Error("second drop accepted mid-cycle")
	}
}

func TestDropRefusedOverChute(t *testing.T) {
	w := newTestWorld()
	p := testParams()
	p.ChuteRegion = components.AABB{
		Min: rl.Vector3{X: -0.5, Z: -0.5},
		Max: rl.Vector3{X: 0.5, Y: 1, Z: 0.5},
	}
	c := NewController(config.Default().Claw, w, p)

	// spawn is directly over the chute now
	if c.StartDropSequence() {
		t.Error("drop accepted with the claw over the delivery opening")
	}
}

func TestManualMovementClampsToTravel(t *testing.T) {
	w := newTestWorld()
	c := NewController(config.Default().Claw, w, testParams())

	c.SetMoving(DirRight, true)
	runTicks(c, w, 600)

	x := c.Head.Transform.Position.X
	if x > 2 {
		t.Errorf("head escaped travel bounds, X = %v", x)
	}
	if x < 1.9 {
		t.Errorf("head did not reach the travel limit, X = %v", x)
	}
}

func TestEmptyGrabCycleReturnsToManual(t *testing.T) {
	w := newTestWorld()
	c := NewController(config.Default().Claw, w, testParams())

	if !c.StartDropSequence() {
		t.Fatal("drop refused")
	}
	runTicks(c, w, 1800) // 15 seconds covers the whole empty cycle

	if c.State() != StateManual {
		t.Errorf("state = %s after an empty cycle, want manual", c.State())
	}
	if c.DeliveredCount != 0 {
		t.Errorf("DeliveredCount = %d for an empty grab", c.DeliveredCount)
	}
	if c.Holding() != nil {
		t.Error("empty cycle ended holding something")
	}
}

func TestFullGrabAndDeliveryCycle(t *testing.T) {
	w := newTestWorld()
	c := NewController(config.Default().Claw, w, testParams())

	obj, rb := addPrize(w, rl.Vector3{X: 0, Y: 0.2, Z: 0})

	var grabbed, delivered *engine.GameObject
	c.OnGrabbed.AddListener(func(g *engine.GameObject) { grabbed = g })
	c.OnDelivered.AddListener(func(g *engine.GameObject) { delivered = g })

	if !c.StartDropSequence() {
		t.Fatal("drop refused")
	}
	runTicks(c, w, 3000) // 25 seconds covers grab, delivery and return

	if grabbed != obj {
		t.Fatalf("OnGrabbed fired with %v, want the prize", grabbed)
	}
	if delivered != obj {
		t.Errorf("OnDelivered fired with %v, want the prize", delivered)
	}
	if c.DeliveredCount != 1 {
		t.Errorf("DeliveredCount = %d, want 1", c.DeliveredCount)
	}
	if c.State() != StateManual {
		t.Errorf("state = %s after the cycle, want manual", c.State())
	}
	if rb.Possession != components.PossessionFree {
		t.Errorf("prize possession = %s after the release window, want free", rb.Possession)
	}

	// the prize was let go near the drop-off corner
	if rb.Position.X < 0.8 || rb.Position.Z < 0.8 {
		t.Errorf("prize ended at %+v, want near the drop-off corner", rb.Position)
	}
}

func TestHeldPrizeTracksHead(t *testing.T) {
	w := newTestWorld()
	c := NewController(config.Default().Claw, w, testParams())
	_, rb := addPrize(w, rl.Vector3{X: 0, Y: 0.2, Z: 0})

	if !c.StartDropSequence() {
		t.Fatal("drop refused")
	}

	// run until the prize is held, then check the rigid link each tick
	for i := 0; i < 1200 && c.Holding() == nil; i++ {
		c.Update(tick)
		w.Step(tick)
	}
	if c.Holding() == nil {
		t.Fatal("prize never grabbed")
	}

	for i := 0; i < 60 && c.Holding() != nil; i++ {
		c.Update(tick)
		w.Step(tick)
		head := c.Head.Transform.Position
		if absf(rb.Position.X-head.X) > 1e-3 || absf(rb.Position.Y-(head.Y-config.Default().Claw.HoldOffset)) > 1e-3 {
			t.Fatalf("held prize at %+v drifted from head %+v", rb.Position, head)
		}
	}
}

func TestReleaseTimeoutForcesManual(t *testing.T) {
	w := newTestWorld()
	cfg := config.Default().Claw
	cfg.SettleDelay = 30 // far longer than the timeout: the guard must fire
	c := NewController(cfg, w, testParams())

	timedOut := false
	c.OnTimeout.AddListener(func() { timedOut = true })

	if !c.StartDropSequence() {
		t.Fatal("drop refused")
	}
	runTicks(c, w, 2400) // 20 seconds

	if !timedOut {
		t.Error("release timeout never fired")
	}
	if c.State() != StateManual {
		t.Errorf("state = %s, want manual after the timeout reset", c.State())
	}
}

func TestFingerStepLimitEndsClosing(t *testing.T) {
	w := newTestWorld()
	cfg := config.Default().Claw
	cfg.FingerMaxSteps = 3 // limit exhausts long before full close
	c := NewController(cfg, w, testParams())

	if !c.StartDropSequence() {
		t.Fatal("drop refused")
	}
	// run through the descent and a short closing phase
	runTicks(c, w, 1200)

	if c.State() == StateOperating {
		t.Error("closing phase still running, the step limit did not end it")
	}
}

func TestGrabVoteThreshold(t *testing.T) {
	fingers := makeFingers(engine.NewGameObject("head"))
	s := NewSensor(fingers, 2)
	if s.threshold != 2 {
		t.Errorf("threshold = %d, want 2", s.threshold)
	}

	// out-of-range thresholds clamp to the finger count
	s = NewSensor(fingers, 99)
	if s.threshold != len(fingers) {
		t.Errorf("threshold = %d, want %d", s.threshold, len(fingers))
	}
	s = NewSensor(fingers, 0)
	if s.threshold != 1 {
		t.Errorf("threshold = %d, want 1", s.threshold)
	}
}

func TestGrabVoteCreatesAndRevokesCandidacy(t *testing.T) {
	w := newTestWorld()
	head := engine.NewGameObject("head")
	head.Transform.Position = rl.Vector3{Y: 2}
	fingers := makeFingers(head)
	s := NewSensor(fingers, 2)

	// a cube wide enough that its faces cross all three resting fingers
	obj := engine.NewGameObject("Prize")
	obj.Transform.Position = rl.Vector3{Y: 1.8}
	size := rl.Vector3{X: 0.8, Y: 0.8, Z: 0.8}
	rb := components.NewRigidBody(0.5)
	rb.Position = obj.Transform.Position
	rb.SetBoundingRadiusFromBox(rl.Vector3{X: -0.4, Y: -0.4, Z: -0.4}, rl.Vector3{X: 0.4, Y: 0.4, Z: 0.4})
	obj.AddComponent(rb)
	mesh := &components.MeshCollider{}
	mesh.BuildFromBox(size)
	obj.AddComponent(mesh)
	w.AddBody(obj)

	s.Update(w)
	if got := s.Candidate(w); got != obj {
		t.Fatalf("prize inside all three fingers: candidate = %v, want the prize", got)
	}

	// the prize slips out before the fingers finish closing
	rb.Position = rl.Vector3{X: 50, Y: 50, Z: 50}
	obj.Transform.Position = rb.Position
	s.Update(w)
	if got := s.Candidate(w); got != nil {
		t.Errorf("candidacy survived losing all finger contact, candidate = %v", got)
	}
}

func TestDropHeightClampsToFloorMargin(t *testing.T) {
	w := newTestWorld()
	cfg := config.Default().Claw
	c := NewController(cfg, w, testParams())

	// no prizes at all: the descent aims at the floor margin
	got := c.computeDropHeight()
	if got != cfg.FloorMargin {
		t.Errorf("empty-floor drop height = %v, want %v", got, cfg.FloorMargin)
	}

	// a prize on the floor: aim below its top but never under the margin
	addPrize(w, rl.Vector3{Y: 0.2})
	got = c.computeDropHeight()
	if got != cfg.FloorMargin {
		t.Errorf("low-pile drop height = %v, want clamped to %v", got, cfg.FloorMargin)
	}

	// a tall pile: aim relative to the top object
	_, high := addPrize(w, rl.Vector3{Y: 1.5})
	got = c.computeDropHeight()
	want := high.Position.Y - cfg.GrabDepth
	if absf(got-want) > 1e-5 {
		t.Errorf("tall-pile drop height = %v, want %v", got, want)
	}
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
