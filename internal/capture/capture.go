// Package capture turns 3D raycasts against a projection surface into 2D press,
// release, hover and scroll input for the renderer that draws the surface.
//
// A [Tracker] belongs to exactly one surface. Once per physics frame it is handed
// every ray source in the scene; a ray that collides with the surface is captured
// by it and stays captured (so other surfaces skip it) until the ray leaves the
// surface with no press in progress, until the press is released, or until the
// ray is no longer handed to the tracker. While a press
// is held, a ray that slips off the surface keeps colliding with the plane it last
// touched, so that drags and scrolls survive fast motion.
package capture

import (
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Vector3"

	"godot.plugin/gast/protocol/gast"
)

// RayID is a stable handle for a ray source, it must not change when the
// source is renamed or moved within the scene.
type RayID uint64

// Body identifies a physics body that a ray can collide with. Zero is never a
// valid body.
type Body uint64

// Hit is the live collision of a ray for the current frame.
type Hit struct {
	Body   Body
	Point  Vector3.XYZ // in world space.
	Normal Vector3.XYZ // in world space.
}

// Ray is an external 3D ray emitter, such as a head-gaze or controller raycast.
type Ray interface {
	ID() RayID

	// Name is used to derive the ray's input actions (see [ActionsFor]) and is
	// reported to the renderer as the origin of the input.
	Name() string

	Enabled() bool

	// Colliding returns the live collision for this frame, if any.
	Colliding() (Hit, bool)

	// Segment returns the world-space start and end of the ray.
	Segment() (from, to Vector3.XYZ)

	// Captured reports whether any surface currently owns the ray.
	Captured() bool
	SetCaptured(bool)
}

// Surface is a collidable projection surface.
type Surface interface {
	ID() gast.SurfaceID
	Body() Body

	// Collidable is false while the surface is hidden or has collisions
	// turned off.
	Collidable() bool

	// ToLocal converts a world-space point into the surface's local space.
	ToLocal(Vector3.XYZ) Vector3.XYZ

	// Projection used to map local points onto the unit square, may be nil.
	Projection() Projection
}

// Actions is a table of named input actions, owned by the host engine.
type Actions interface {
	IsActionPressed(action string) bool
	IsActionJustPressed(action string) bool
	IsActionJustReleased(action string) bool
	GetActionStrength(action string) Float.X
}

// ErrorReporter receives problems that do not stop processing.
type ErrorReporter interface {
	ReportError(error)
}

// Record of an in-progress collision between a captured ray and a surface.
type Record struct {
	Pressing bool        // true while the ray's click action is held.
	Point    Vector3.XYZ // last world-space collision point.
	Normal   Vector3.XYZ // last world-space collision normal.

	ray   Ray
	name  string
	names Names
}
