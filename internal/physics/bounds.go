package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Bounds is an axis-aligned confinement region. Bodies assigned to a
// region are pushed back inside it by the boundary pass.
type Bounds struct {
	Min, Max rl.Vector3
}

// NewBoundsWithMargin shrinks a box inward on every axis. Confinement
// regions are set slightly inside the visible machine glass so corrections
// happen before an object visually touches it.
func NewBoundsWithMargin(min, max rl.Vector3, margin float32) Bounds {
	m := rl.Vector3{X: margin, Y: margin, Z: margin}
	return Bounds{
		Min: rl.Vector3Add(min, m),
		Max: rl.Vector3Subtract(max, m),
	}
}

// Contains reports whether p is inside the region.
func (b Bounds) Contains(p rl.Vector3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// SafetyZone is a point+radius exclusion around a mechanism's working
// area. Settled objects drifting into it get a gentle outward push so
// they never jam the mechanism.
type SafetyZone struct {
	Center rl.Vector3
	Radius float32
}

// PushOut returns a horizontal outward force for a body at p inside the
// zone, scaled by how deep it sits. Zero when outside.
func (z SafetyZone) PushOut(p rl.Vector3, strength float32) rl.Vector3 {
	dx := p.X - z.Center.X
	dz := p.Z - z.Center.Z
	dist := math32.Sqrt(dx*dx + dz*dz)
	if dist >= z.Radius || z.Radius <= 0 {
		return rl.Vector3{}
	}
	if dist < 1e-4 {
		// Dead center, pick an arbitrary safe direction
		return rl.Vector3{X: strength}
	}
	depth := (z.Radius - dist) / z.Radius
	return rl.Vector3{
		X: dx / dist * strength * depth,
		Z: dz / dist * strength * depth,
	}
}
