// Package game assembles the machine: the room geometry, the physics
// world, the claw and candy mechanisms, the chute triggers, and the
// window loop that ties input and rendering to a fixed simulation tick.
package game

import (
	"log"

	"clawroom/internal/candy"
	"clawroom/internal/claw"
	"clawroom/internal/components"
	"clawroom/internal/config"
	"clawroom/internal/engine"
	"clawroom/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TickSeconds is the fixed simulation step. Rendering runs at whatever
// rate the display allows; simulation advances in these increments.
const TickSeconds = float32(1.0 / 120.0)

// Layout gives the machine's fixed geometry in world units. The prize
// chamber floor sits at Y=0; the chute bin hangs below it.
type Layout struct {
	ChamberMin rl.Vector3
	ChamberMax rl.Vector3

	ChuteOpenMin rl.Vector3 // floor opening, pass-through zone
	ChuteOpenMax rl.Vector3
	BinMin       rl.Vector3 // collection bin under the floor
	BinMax       rl.Vector3

	ClawSpawn   rl.Vector3
	ClawDropOff rl.Vector3

	CandyTrayMin rl.Vector3
	CandyTrayMax rl.Vector3
	ShaftTop     rl.Vector3
	ShaftExit    rl.Vector3
	EjectTarget  rl.Vector3
}

func DefaultLayout() Layout {
	return Layout{
		ChamberMin: rl.Vector3{X: -2, Y: 0, Z: -2},
		ChamberMax: rl.Vector3{X: 2, Y: 3, Z: 2},

		ChuteOpenMin: rl.Vector3{X: 1.15, Y: -0.1, Z: 1.15},
		ChuteOpenMax: rl.Vector3{X: 1.95, Y: 0.6, Z: 1.95},
		BinMin:       rl.Vector3{X: 1.1, Y: -1.4, Z: 1.1},
		BinMax:       rl.Vector3{X: 2.0, Y: -0.15, Z: 2.0},

		ClawSpawn:   rl.Vector3{X: -1.4, Y: 2.4, Z: -1.4},
		ClawDropOff: rl.Vector3{X: 1.55, Y: 2.4, Z: 1.55},

		CandyTrayMin: rl.Vector3{X: 2.6, Y: 0.8, Z: -1.0},
		CandyTrayMax: rl.Vector3{X: 3.8, Y: 1.6, Z: 0.4},
		ShaftTop:     rl.Vector3{X: 3.2, Y: 0.9, Z: 0.2},
		ShaftExit:    rl.Vector3{X: 3.2, Y: 0.25, Z: 0.7},
		EjectTarget:  rl.Vector3{X: 3.2, Y: 0.2, Z: 1.8},
	}
}

type Game struct {
	Cfg    config.Config
	Layout Layout

	Scene *engine.Scene
	World *physics.World

	Claw     *claw.Controller
	Candy    *candy.Dispenser
	Triggers *ChuteTriggers

	Coins int
	Score int

	prizeCounter int
	candyCounter int

	accumulator float32
	camera      rl.Camera3D
	statics     []staticBox
	showDiag    bool
}

// staticBox keeps the visual extent of a baked static collider so the
// draw pass doesn't have to recover it from triangles.
type staticBox struct {
	center rl.Vector3
	size   rl.Vector3
	color  rl.Color
}

func New(cfg config.Config) *Game {
	g := &Game{
		Cfg:    cfg,
		Layout: DefaultLayout(),
		Scene:  engine.NewScene("machine"),
		World:  physics.NewWorld(),
	}
	g.World.Gravity = rl.Vector3{Y: cfg.Physics.GravityY}

	g.buildRoom()
	g.buildMechanisms()
	g.spawnPrizes(8)
	g.spawnCandies(5)

	g.camera = rl.Camera3D{
		Position:   rl.Vector3{X: 0.5, Y: 4.5, Z: 6.5},
		Target:     rl.Vector3{X: 0.8, Y: 1.0, Z: 0},
		Up:         rl.Vector3{Y: 1},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
	return g
}

func (g *Game) buildRoom() {
	l := g.Layout

	// Floor confinement and walls come from the bounds passes; statics
	// add the geometry bodies can actually rest against with full
	// mesh contact: the chute bin walls and the candy housing.
	g.World.SetWorldBounds(
		rl.Vector3{X: l.ChamberMin.X - 0.5, Y: l.BinMin.Y - 0.5, Z: l.ChamberMin.Z - 0.5},
		rl.Vector3{X: l.CandyTrayMax.X + 0.5, Y: l.ChamberMax.Y + 0.5, Z: l.ChamberMax.Z + 0.5},
	)
	g.World.SetPrizeBounds(l.ChamberMin, l.ChamberMax)
	g.World.SetCandyBounds(
		rl.Vector3{X: l.CandyTrayMin.X, Y: l.BinMin.Y, Z: l.CandyTrayMin.Z - 2.0},
		rl.Vector3{X: l.CandyTrayMax.X, Y: l.ChamberMax.Y, Z: l.ChamberMax.Z},
	)

	shaftCenter := rl.Vector3{
		X: (l.ShaftTop.X + l.ShaftExit.X) * 0.5,
		Y: (l.ShaftTop.Y + l.ShaftExit.Y) * 0.5,
		Z: (l.ShaftTop.Z + l.ShaftExit.Z) * 0.5,
	}
	g.World.SetDispenserSafetyZone(shaftCenter, 0.5)
	chuteCenter := rl.Vector3{
		X: (l.ChuteOpenMin.X + l.ChuteOpenMax.X) * 0.5,
		Y: l.ChuteOpenMin.Y,
		Z: (l.ChuteOpenMin.Z + l.ChuteOpenMax.Z) * 0.5,
	}
	g.World.SetChuteSafetyZone(chuteCenter, 0.55)

	binT := float32(0.08)
	binH := l.BinMax.Y - l.BinMin.Y
	binCX := (l.BinMin.X + l.BinMax.X) * 0.5
	binCZ := (l.BinMin.Z + l.BinMax.Z) * 0.5
	binCY := (l.BinMin.Y + l.BinMax.Y) * 0.5
	binW := l.BinMax.X - l.BinMin.X
	binD := l.BinMax.Z - l.BinMin.Z

	g.addStatic("BinWallWest", rl.Vector3{X: l.BinMin.X, Y: binCY, Z: binCZ}, rl.Vector3{X: binT, Y: binH, Z: binD})
	g.addStatic("BinWallEast", rl.Vector3{X: l.BinMax.X, Y: binCY, Z: binCZ}, rl.Vector3{X: binT, Y: binH, Z: binD})
	g.addStatic("BinWallNorth", rl.Vector3{X: binCX, Y: binCY, Z: l.BinMin.Z}, rl.Vector3{X: binW, Y: binH, Z: binT})
	g.addStatic("BinWallSouth", rl.Vector3{X: binCX, Y: binCY, Z: l.BinMax.Z}, rl.Vector3{X: binW, Y: binH, Z: binT})
	g.addStatic("BinFloor", rl.Vector3{X: binCX, Y: l.BinMin.Y, Z: binCZ}, rl.Vector3{X: binW, Y: binT, Z: binD})

	trayCX := (l.CandyTrayMin.X + l.CandyTrayMax.X) * 0.5
	trayCZ := (l.CandyTrayMin.Z + l.CandyTrayMax.Z) * 0.5
	trayW := l.CandyTrayMax.X - l.CandyTrayMin.X
	trayD := l.CandyTrayMax.Z - l.CandyTrayMin.Z
	g.addStatic("CandyTrayFloor", rl.Vector3{X: trayCX, Y: l.CandyTrayMin.Y, Z: trayCZ}, rl.Vector3{X: trayW, Y: binT, Z: trayD})
	g.addStatic("CandyHousing", rl.Vector3{X: trayCX, Y: l.CandyTrayMin.Y + 0.5, Z: l.CandyTrayMin.Z}, rl.Vector3{X: trayW, Y: 1.0, Z: binT})
}

func (g *Game) addStatic(name string, center, size rl.Vector3) {
	obj := engine.NewGameObject(name)
	obj.Transform.Position = center
	mesh := &components.MeshCollider{}
	mesh.BuildFromBoxAt(center, size)
	obj.AddComponent(mesh)
	g.Scene.AddGameObject(obj)
	if !g.World.AddStaticCollider(obj) {
		log.Printf("game: static %s rejected", name)
	}
	g.statics = append(g.statics, staticBox{center: center, size: size, color: rl.Gray})
}

func (g *Game) buildMechanisms() {
	l := g.Layout

	clawMargin := float32(0.35)
	g.Claw = claw.NewController(g.Cfg.Claw, g.World, claw.Params{
		Spawn:    l.ClawSpawn,
		DropOff:  l.ClawDropOff,
		DeliverY: l.ChuteOpenMax.Y + 0.7,
		FloorY:   l.ChamberMin.Y,
		Travel: physics.Bounds{
			Min: rl.Vector3{X: l.ChamberMin.X + clawMargin, Z: l.ChamberMin.Z + clawMargin},
			Max: rl.Vector3{X: l.ChamberMax.X - clawMargin, Z: l.ChamberMax.Z - clawMargin},
		},
		ChuteRegion: components.AABB{Min: l.ChuteOpenMin, Max: l.ChuteOpenMax},
		Footprint:   0.3,
	})
	g.Claw.SpendCoin = g.spendCoin
	g.Scene.AddGameObject(g.Claw.Head)

	g.Candy = candy.NewDispenser(g.Cfg.Candy, g.World, candy.Params{
		ShaftTop:    l.ShaftTop,
		ShaftExit:   l.ShaftExit,
		EjectTarget: l.EjectTarget,
	})
	g.Candy.SpendCoin = g.spendCoin
	g.Scene.AddGameObject(g.Candy.Gate)
	g.Scene.AddGameObject(g.Candy.Door)
	g.Scene.AddGameObject(g.Candy.Knob)

	g.Triggers = NewChuteTriggers(
		components.AABB{Min: l.ChuteOpenMin, Max: l.ChuteOpenMax},
		components.AABB{Min: l.BinMin, Max: l.BinMax},
		l.ChamberMin.Y,
	)
	g.Triggers.OnPrizeDelivered.AddListener(func(obj *engine.GameObject) {
		g.Score++
		log.Printf("game: delivered %s, score %d", obj.Name, g.Score)
	})
}

func (g *Game) spawnPrizes(n int) {
	l := g.Layout
	for i := 0; i < n; i++ {
		g.prizeCounter++
		obj := engine.NewGameObject("Prize")
		size := rl.Vector3{X: 0.28, Y: 0.28, Z: 0.28}
		col := i % 3
		row := i / 3
		pos := rl.Vector3{
			X: l.ChamberMin.X + 0.6 + float32(col)*0.5,
			Y: l.ChamberMin.Y + 0.3 + float32(row)*0.35,
			Z: l.ChamberMin.Z + 0.6 + float32(i%2)*0.4,
		}
		g.addBody(obj, pos, size, 0.5, false)
	}
}

func (g *Game) spawnCandies(n int) {
	l := g.Layout
	for i := 0; i < n; i++ {
		g.candyCounter++
		obj := engine.NewGameObject("Candy")
		size := rl.Vector3{X: 0.16, Y: 0.16, Z: 0.16}
		pos := rl.Vector3{
			X: l.CandyTrayMin.X + 0.25 + float32(i%3)*0.35,
			Y: l.CandyTrayMin.Y + 0.25,
			Z: l.CandyTrayMin.Z + 0.3 + float32(i/3)*0.35,
		}
		g.addBody(obj, pos, size, 0.12, true)
	}
}

func (g *Game) addBody(obj *engine.GameObject, pos, size rl.Vector3, mass float32, isCandy bool) {
	obj.Transform.Position = pos

	rb := components.NewRigidBody(mass)
	rb.Position = pos
	rb.IsCandy = isCandy
	half := rl.Vector3Scale(size, 0.5)
	rb.SetBoundingRadiusFromBox(rl.Vector3Scale(half, -1), half)
	obj.AddComponent(rb)

	box := &components.BoxCollider{Size: size}
	obj.AddComponent(box)

	mesh := &components.MeshCollider{}
	mesh.BuildFromBox(size)
	obj.AddComponent(mesh)

	g.Scene.AddGameObject(obj)
	g.World.AddBody(obj)
}

// InsertCoin adds one credit.
func (g *Game) InsertCoin() {
	g.Coins++
}

func (g *Game) spendCoin() bool {
	if g.Coins <= 0 {
		return false
	}
	g.Coins--
	return true
}

// Tick advances the simulation by one fixed step: mechanisms first so
// their possession changes land before the physics passes, then the
// world, then the triggers over the post-step positions.
func (g *Game) Tick(dt float32) {
	g.Claw.Update(dt)
	g.Candy.Update(dt)
	g.World.Step(dt)
	g.Triggers.Update(g.World)
}

// Update consumes a frame of wall time and runs as many fixed ticks as
// fit, so slow frames never stretch the physics step.
func (g *Game) Update(frameTime float32) {
	if frameTime > 0.25 {
		frameTime = 0.25
	}
	g.accumulator += frameTime
	for g.accumulator >= TickSeconds {
		g.Tick(TickSeconds)
		g.accumulator -= TickSeconds
	}
}
