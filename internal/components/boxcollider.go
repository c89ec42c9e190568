package components

import (
	"clawroom/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BoxCollider is an axis-aligned box in local space, centered on the
// object. Used for the claw fingers and for trigger volumes.
type BoxCollider struct {
	engine.BaseComponent
	Size rl.Vector3
}

func NewBoxCollider(size rl.Vector3) *BoxCollider {
	return &BoxCollider{Size: size}
}

// GetCenter returns the collider center in world space.
func (b *BoxCollider) GetCenter() rl.Vector3 {
	if g := b.GetGameObject(); g != nil {
		return g.WorldPosition()
	}
	return rl.Vector3{}
}

// GetWorldSize returns the size scaled by the object's world scale.
func (b *BoxCollider) GetWorldSize() rl.Vector3 {
	if g := b.GetGameObject(); g != nil {
		s := g.WorldScale()
		return rl.Vector3{X: b.Size.X * s.X, Y: b.Size.Y * s.Y, Z: b.Size.Z * s.Z}
	}
	return b.Size
}

// WorldBox returns the world-space AABB of the (unrotated) collider.
func (b *BoxCollider) WorldBox() rl.BoundingBox {
	center := b.GetCenter()
	size := b.GetWorldSize()
	half := rl.Vector3Scale(size, 0.5)
	return rl.BoundingBox{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}
