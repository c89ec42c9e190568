// Headless soak harness. Runs the full machine without a window for a
// configurable number of ticks, periodically firing claw and candy
// cycles, and checks the invariants that matter in long sessions:
// finite state everywhere, bodies inside their confinement volumes,
// and an eventually-sleeping pile.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"clawroom/internal/components"
	"clawroom/internal/config"
	"clawroom/internal/engine"
	"clawroom/internal/game"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	ticks := flag.Int("ticks", 60000, "simulation ticks to run")
	report := flag.Int("report", 6000, "ticks between reports")
	flag.Parse()

	g := game.New(config.Default())
	g.Coins = 1 << 20

	violations := 0
	start := time.Now()

	for i := 0; i < *ticks; i++ {
		driveMechanisms(g, i)
		g.Tick(game.TickSeconds)
		violations += checkBodies(g, i)

		if (i+1)%*report == 0 {
			reportState(g, i+1)
		}
	}

	elapsed := time.Since(start)
	perTick := elapsed / time.Duration(*ticks)
	log.Printf("done: %d ticks in %v (%v/tick), %d violations, score %d, dispensed %d, diag %+v",
		*ticks, elapsed.Round(time.Millisecond), perTick, violations, g.Score, g.Candy.DispensedCount, g.World.Diag)

	if violations > 0 {
		os.Exit(1)
	}
}

// driveMechanisms wiggles the claw and fires grab and dispense cycles
// on a schedule so the soak exercises every possession transition.
func driveMechanisms(g *game.Game, tick int) {
	switch tick % 2400 {
	case 0:
		g.Claw.StartDropSequence()
	case 1200:
		g.Candy.StartDispensing()
	}
}

func checkBodies(g *game.Game, tick int) int {
	bad := 0
	min := rl.Vector3{X: -10, Y: -10, Z: -10}
	max := rl.Vector3{X: 10, Y: 10, Z: 10}
	for _, obj := range g.World.Bodies() {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil {
			continue
		}
		if !finite(rb.Position) || !finite(rb.Velocity) || !finite(rb.AngularVelocity) {
			log.Printf("tick %d: %s has non-finite state: pos %+v vel %+v", tick, obj.Name, rb.Position, rb.Velocity)
			bad++
			continue
		}
		if rb.Position.X < min.X || rb.Position.X > max.X ||
			rb.Position.Y < min.Y || rb.Position.Y > max.Y ||
			rb.Position.Z < min.Z || rb.Position.Z > max.Z {
			log.Printf("tick %d: %s escaped to %+v (%s)", tick, obj.Name, rb.Position, rb.Possession)
			bad++
		}
	}
	return bad
}

func reportState(g *game.Game, tick int) {
	sleeping := 0
	total := 0
	for _, obj := range g.World.Bodies() {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil {
			continue
		}
		total++
		if rb.IsSleeping {
			sleeping++
		}
	}
	log.Printf("tick %d: %d/%d sleeping, claw %s, candy %s, score %d",
		tick, sleeping, total, g.Claw.State(), g.Candy.State(), g.Score)
}

func finite(v rl.Vector3) bool {
	ok := func(f float32) bool {
		return !math32.IsNaN(f) && !math32.IsInf(f, 0)
	}
	return ok(v.X) && ok(v.Y) && ok(v.Z)
}
