package capture

import (
	"graphics.gd/variant/Vector2"
	"graphics.gd/variant/Vector3"

	"godot.plugin/gast/protocol/gast"
)

// Projection maps a point in a surface's local space onto the unit square.
type Projection interface {
	Relative(local Vector3.XYZ) Vector2.XY
}

// Rectangle is a flat quad of the given size, centered on the local origin and
// facing +Z. The relative origin is the top left corner, with Y growing downwards,
// matching how 2D views lay out their content.
type Rectangle struct {
	Size Vector2.XY
}

// Relative returns [gast.InvalidCoordinate] when the rectangle has no area.
func (rect Rectangle) Relative(local Vector3.XYZ) Vector2.XY {
	if rect.Size.X <= 0 || rect.Size.Y <= 0 {
		return gast.InvalidCoordinate
	}
	return Vector2.XY{
		X: (local.X + rect.Size.X/2) / rect.Size.X,
		Y: 1 - (local.Y+rect.Size.Y/2)/rect.Size.Y,
	}
}

// Equirectangle is a curved (spherical) surface. Mapping onto it is not
// supported, so every point is [gast.InvalidCoordinate].
type Equirectangle struct{}

func (Equirectangle) Relative(Vector3.XYZ) Vector2.XY { return gast.InvalidCoordinate }

// Relative maps a world-space point onto the surface's unit square.
func Relative(surface Surface, world Vector3.XYZ) Vector2.XY {
	projection := surface.Projection()
	if projection == nil {
		return gast.InvalidCoordinate
	}
	return projection.Relative(surface.ToLocal(world))
}
