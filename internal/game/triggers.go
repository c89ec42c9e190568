package game

import (
	"clawroom/internal/components"
	"clawroom/internal/engine"
	"clawroom/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ChuteTriggers implements delivery as two stacked zones. The outer
// zone over the floor opening grants pass-through so the boundary pass
// stops holding the prize up; the inner zone in the bin below captures
// it. Both apply to free bodies and to bodies still in their release
// window, so a prize dropped straight over the opening falls through
// without waiting out the window. Capture fires the delivery event
// exactly once per object no matter how long it rattles around the bin.
type ChuteTriggers struct {
	outer  components.AABB
	inner  components.AABB
	floorY float32

	delivered map[uint64]bool

	OnPrizeDelivered engine.EventWithArg[*engine.GameObject]
}

func NewChuteTriggers(outer, inner components.AABB, floorY float32) *ChuteTriggers {
	return &ChuteTriggers{
		outer:     outer,
		inner:     inner,
		floorY:    floorY,
		delivered: make(map[uint64]bool),
	}
}

// DeliveredCount returns how many distinct objects have been captured.
func (t *ChuteTriggers) DeliveredCount() int {
	return len(t.delivered)
}

// Update scans the free prizes against both zones. Runs after the
// physics step so it sees settled positions.
func (t *ChuteTriggers) Update(world *physics.World) {
	for _, obj := range world.Bodies() {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb == nil || rb.IsCandy {
			continue
		}

		switch {
		case rb.Possession == components.PossessionHeld ||
			rb.Possession == components.PossessionDispensed:
			// puppeteered, leave it alone
		case rb.Possession == components.PossessionBlocked:
			// already captured
		case containsPoint(t.inner, rb.Position):
			rb.Block()
			if !t.delivered[obj.UID] {
				t.delivered[obj.UID] = true
				t.OnPrizeDelivered.Invoke(obj)
			}
		case containsPoint(t.outer, rb.Position):
			if !rb.CanFallThrough {
				rb.CanFallThrough = true
				rb.Wake()
			}
		case rb.CanFallThrough && rb.Position.Y > t.floorY:
			// wandered off the opening without falling, revoke
			rb.CanFallThrough = false
		}
	}
}

func containsPoint(box components.AABB, p rl.Vector3) bool {
	return p.X >= box.Min.X && p.X <= box.Max.X &&
		p.Y >= box.Min.Y && p.Y <= box.Max.Y &&
		p.Z >= box.Min.Z && p.Z <= box.Max.Z
}
