package capture

import (
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Vector3"
)

const epsilon = 0.00001

// IntersectRay intersects the ray starting at from, heading along dir, with the
// plane through point with the given normal. Only intersections in front of the
// ray count.
func IntersectRay(point, normal, from, dir Vector3.XYZ) (Vector3.XYZ, bool) {
	if Vector3.LengthSquared(normal) < epsilon*epsilon {
		return Vector3.XYZ{}, false
	}
	normal = Vector3.Normalized(normal)
	den := Vector3.Dot(normal, dir)
	if Float.Abs(den) < epsilon {
		return Vector3.XYZ{}, false // parallel
	}
	t := Vector3.Dot(normal, Vector3.Sub(point, from)) / den
	if t < -epsilon {
		return Vector3.XYZ{}, false // behind
	}
	return Vector3.Add(from, Vector3.MulX(dir, t)), true
}
