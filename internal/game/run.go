package game

import (
	"fmt"

	"clawroom/internal/claw"
	"clawroom/internal/components"
	"clawroom/internal/engine"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Run opens the window and drives the frame loop until close.
func Run(g *Game) {
	rl.SetConfigFlags(rl.FlagWindowHighdpi)
	rl.InitWindow(1280, 720, "Claw Room")
	defer rl.CloseWindow()
	rl.SetTargetFPS(120)

	for !rl.WindowShouldClose() {
		g.handleInput()
		g.Update(rl.GetFrameTime())
		g.Draw()
	}
}

func (g *Game) handleInput() {
	g.Claw.SetMoving(claw.DirLeft, rl.IsKeyDown(rl.KeyA) || rl.IsKeyDown(rl.KeyLeft))
	g.Claw.SetMoving(claw.DirRight, rl.IsKeyDown(rl.KeyD) || rl.IsKeyDown(rl.KeyRight))
	g.Claw.SetMoving(claw.DirForward, rl.IsKeyDown(rl.KeyW) || rl.IsKeyDown(rl.KeyUp))
	g.Claw.SetMoving(claw.DirBackward, rl.IsKeyDown(rl.KeyS) || rl.IsKeyDown(rl.KeyDown))

	if rl.IsKeyPressed(rl.KeyEnter) {
		g.InsertCoin()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.Claw.StartDropSequence()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.Candy.StartDispensing()
	}
}

func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	rl.BeginMode3D(g.camera)
	g.drawRoom()
	g.drawBodies()
	g.drawClaw()
	g.drawCandyMachine()
	rl.EndMode3D()

	g.drawHUD()
	rl.EndDrawing()
}

func (g *Game) drawRoom() {
	l := g.Layout
	chamberCenter := rl.Vector3{
		X: (l.ChamberMin.X + l.ChamberMax.X) * 0.5,
		Y: (l.ChamberMin.Y + l.ChamberMax.Y) * 0.5,
		Z: (l.ChamberMin.Z + l.ChamberMax.Z) * 0.5,
	}
	chamberSize := rl.Vector3Subtract(l.ChamberMax, l.ChamberMin)
	rl.DrawCubeWiresV(chamberCenter, chamberSize, rl.SkyBlue)

	floorSize := rl.Vector3{X: chamberSize.X, Y: 0.02, Z: chamberSize.Z}
	rl.DrawCubeV(rl.Vector3{X: chamberCenter.X, Y: l.ChamberMin.Y, Z: chamberCenter.Z}, floorSize, rl.NewColor(45, 45, 60, 255))

	openCenter := rl.Vector3{
		X: (l.ChuteOpenMin.X + l.ChuteOpenMax.X) * 0.5,
		Y: l.ChuteOpenMin.Y + 0.01,
		Z: (l.ChuteOpenMin.Z + l.ChuteOpenMax.Z) * 0.5,
	}
	openSize := rl.Vector3{
		X: l.ChuteOpenMax.X - l.ChuteOpenMin.X,
		Y: 0.04,
		Z: l.ChuteOpenMax.Z - l.ChuteOpenMin.Z,
	}
	rl.DrawCubeV(openCenter, openSize, rl.NewColor(10, 10, 10, 255))

	for _, s := range g.statics {
		rl.DrawCubeV(s.center, s.size, s.color)
		rl.DrawCubeWiresV(s.center, s.size, rl.DarkGray)
	}
}

func (g *Game) drawBodies() {
	for _, obj := range g.World.Bodies() {
		rb := engine.GetComponent[*components.RigidBody](obj)
		box := engine.GetComponent[*components.BoxCollider](obj)
		if rb == nil || box == nil {
			continue
		}
		color := rl.Orange
		if rb.IsCandy {
			color = rl.Pink
		}
		switch rb.Possession {
		case components.PossessionHeld:
			color = rl.Yellow
		case components.PossessionDispensed:
			color = rl.Purple
		case components.PossessionReleasing:
			color = rl.Gold
		case components.PossessionBlocked:
			color = rl.Green
		}
		if rb.IsSleeping {
			color = rl.Fade(color, 0.6)
		}
		rl.DrawCubeV(rb.Position, box.Size, color)
		rl.DrawCubeWiresV(rb.Position, box.Size, rl.DarkBrown)
	}
}

func (g *Game) drawClaw() {
	head := g.Claw.Head.Transform.Position
	rl.DrawCubeV(head, rl.Vector3{X: 0.3, Y: 0.15, Z: 0.3}, rl.LightGray)

	// cable up to the ceiling
	top := rl.Vector3{X: head.X, Y: g.Layout.ChamberMax.Y, Z: head.Z}
	rl.DrawLine3D(top, head, rl.Gray)

	for _, f := range g.Claw.Fingers() {
		pos := f.Obj.WorldPosition()
		rl.DrawCubeV(pos, f.Box.Size, rl.LightGray)
		rl.DrawLine3D(head, pos, rl.Gray)
	}
}

func (g *Game) drawCandyMachine() {
	rl.DrawCubeV(g.Candy.Gate.Transform.Position, rl.Vector3{X: 0.5, Y: 0.08, Z: 0.5}, rl.Beige)
	rl.DrawCubeV(g.Candy.Door.Transform.Position, rl.Vector3{X: 0.4, Y: 0.3, Z: 0.06}, rl.Brown)

	knobPos := rl.Vector3{X: g.Layout.ShaftExit.X + 0.5, Y: g.Layout.ShaftExit.Y + 0.2, Z: g.Layout.ShaftExit.Z}
	rl.DrawCubeV(knobPos, rl.Vector3{X: 0.15, Y: 0.15, Z: 0.1}, rl.Red)
}

func (g *Game) sleepingCount() int {
	n := 0
	for _, obj := range g.World.Bodies() {
		rb := engine.GetComponent[*components.RigidBody](obj)
		if rb != nil && rb.IsSleeping {
			n++
		}
	}
	return n
}

func (g *Game) drawHUD() {
	gui.Panel(rl.Rectangle{X: 10, Y: 10, Width: 240, Height: 150}, "Claw Room")
	gui.Label(rl.Rectangle{X: 20, Y: 40, Width: 220, Height: 20},
		fmt.Sprintf("Coins: %d   Score: %d", g.Coins, g.Score))
	gui.Label(rl.Rectangle{X: 20, Y: 62, Width: 220, Height: 20},
		fmt.Sprintf("Claw: %s", g.Claw.State()))
	gui.Label(rl.Rectangle{X: 20, Y: 84, Width: 220, Height: 20},
		fmt.Sprintf("Candy: %s", g.Candy.State()))

	if gui.Button(rl.Rectangle{X: 20, Y: 110, Width: 100, Height: 26}, "Insert Coin") {
		g.InsertCoin()
	}
	if gui.Button(rl.Rectangle{X: 130, Y: 110, Width: 100, Height: 26}, "Dispense") {
		g.Candy.StartDispensing()
	}

	g.showDiag = gui.CheckBox(rl.Rectangle{X: 10, Y: 194, Width: 16, Height: 16}, "Physics diagnostics", g.showDiag)
	if g.showDiag {
		d := g.World.Diag
		gui.Label(rl.Rectangle{X: 10, Y: 216, Width: 300, Height: 20},
			fmt.Sprintf("skipped colliders: %d  unsticks: %d  rejected statics: %d",
				d.SkippedColliders, d.Unsticks, d.RejectedStatics))
		gui.Label(rl.Rectangle{X: 10, Y: 238, Width: 300, Height: 20},
			fmt.Sprintf("bodies: %d  sleeping: %d", len(g.World.Bodies()), g.sleepingCount()))
	}

	rl.DrawText("WASD move, Space drop, C candy, Enter coin", 10, 170, 16, rl.DarkGray)
	rl.DrawFPS(10, 692)
}
