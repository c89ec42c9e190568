package game

import (
	"testing"

	"clawroom/internal/components"
	"clawroom/internal/config"
	"clawroom/internal/engine"
)

func TestNewGameAssemblesMachine(t *testing.T) {
	g := New(config.Default())

	if g.World.Diag.RejectedStatics != 0 {
		t.Errorf("%d statics rejected during assembly", g.World.Diag.RejectedStatics)
	}

	prizes, candies := 0, 0
	for _, obj := range g.World.Bodies() {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil {
			t.Fatalf("body %s has no RigidBody", obj.Name)
		}
		mesh := engine.GetComponent[*components.MeshCollider](obj)
		if mesh == nil || !mesh.IsBuilt() {
			t.Errorf("body %s has no built mesh collider", obj.Name)
		}
		if rb.IsCandy {
			candies++
		} else {
			prizes++
		}
	}
	if prizes == 0 || candies == 0 {
		t.Errorf("spawned %d prizes and %d candies, want both populated", prizes, candies)
	}
}

func TestCoinGatesBothMechanisms(t *testing.T) {
	g := New(config.Default())

	if g.Claw.StartDropSequence() {
		t.Error("claw drop accepted with zero coins")
	}
	if g.Candy.StartDispensing() {
		t.Error("candy dispense accepted with zero coins")
	}

	g.InsertCoin()
	if !g.Claw.StartDropSequence() {
		t.Error("claw drop refused with a coin available")
	}
	if g.Coins != 0 {
		t.Errorf("coins = %d after the drop, want 0", g.Coins)
	}
}

func TestSimulationSettlesAndStaysFinite(t *testing.T) {
	g := New(config.Default())

	for i := 0; i < 1200; i++ { // 10 seconds of free settling
		g.Tick(TickSeconds)
	}

	sleeping := 0
	for _, obj := range g.World.Bodies() {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb.Position.X != rb.Position.X || rb.Position.Y != rb.Position.Y {
			t.Fatalf("body %s has NaN position", obj.Name)
		}
		if rb.Position.Y < -2 {
			t.Errorf("body %s fell out of the machine to %+v", obj.Name, rb.Position)
		}
		if rb.IsSleeping {
			sleeping++
		}
	}
	if sleeping == 0 {
		t.Error("nothing fell asleep after 10 seconds of settling")
	}
}

func TestFixedStepAccumulator(t *testing.T) {
	g := New(config.Default())

	before := g.World.Now()
	g.Update(5 * TickSeconds)
	after := g.World.Now()

	advanced := after - before
	want := float64(5 * TickSeconds)
	if advanced < want-1e-6 || advanced > want+float64(TickSeconds) {
		t.Errorf("clock advanced %v for a 5-tick frame, want about %v", advanced, want)
	}
}
