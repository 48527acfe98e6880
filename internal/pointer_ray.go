package internal

import (
	"fmt"

	"graphics.gd/classdb/Camera3D"
	"graphics.gd/classdb/Engine"
	"graphics.gd/classdb/Input"
	"graphics.gd/classdb/InputEventMouseButton"
	"graphics.gd/classdb/InputMap"
	"graphics.gd/classdb/Node3D"
	"graphics.gd/classdb/PhysicsRayQueryParameters3D"
	"graphics.gd/classdb/SceneTree"
	"graphics.gd/classdb/Viewport"
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Object"
	"graphics.gd/variant/Vector3"

	"godot.plugin/gast/internal/capture"
)

// PointerRay is a ray source that follows the mouse pointer of the viewport it
// belongs to, so that surfaces can be used on the desktop without XR controllers.
type PointerRay struct {
	Node3D.Extension[PointerRay] `gd:"GastPointerRay"`

	Active bool    `gd:"enabled" default:"true"`
	Length Float.X `gd:"length" range:"1,10000,or_greater" default:"1000"`

	// BindMouse adds the left button and the wheel to the ray's input actions.
	BindMouse bool `gd:"bind_mouse" default:"true"`

	frame    int
	from, to Vector3.XYZ
	hit      capture.Hit
	hitting  bool
}

func (ray *PointerRay) Ready() {
	ray.AsNode().AddToGroup(RayCasterGroup)
	if ray.BindMouse {
		names := capture.ActionsFor(fmt.Sprint(ray.AsNode().GetPath()))
		bind(names.Click, Input.MouseButtonLeft)
		bind(names.UpScroll, Input.MouseButtonWheelUp)
		bind(names.DownScroll, Input.MouseButtonWheelDown)
	}
}

// ExitTree drops the capture marker, the surface that owned the pointer
// releases it on its next physics frame.
func (ray *PointerRay) ExitTree() {
	if ray.AsNode().IsInGroup(CapturedGroup) {
		ray.AsNode().RemoveFromGroup(CapturedGroup)
	}
}

func bind(action string, button Input.MouseButton) {
	if InputMap.HasAction(action) {
		return
	}
	InputMap.AddAction(action)
	event := InputEventMouseButton.New()
	event.SetButtonIndex(button)
	InputMap.ActionAddEvent(action, event.AsInputEvent())
}

// pick casts the ray through the mouse pointer, at most once per physics frame.
func (ray *PointerRay) pick() {
	frame := Engine.GetPhysicsFrames()
	if frame == ray.frame {
		return
	}
	ray.frame = frame
	ray.hitting = false
	viewport := Viewport.Get(ray.AsNode())
	cam := viewport.GetCamera3d()
	if cam == Camera3D.Nil {
		return
	}
	mpos_2d := viewport.GetMousePosition()
	ray.from, ray.to = cam.ProjectRayOrigin(mpos_2d), cam.ProjectPosition(mpos_2d, ray.Length)
	space_state := ray.AsNode3D().GetWorld3d().DirectSpaceState()
	hover := space_state.IntersectRay(PhysicsRayQueryParameters3D.Create(ray.from, ray.to, nil))
	if hover.Collider == Object.Nil {
		return
	}
	ray.hitting = true
	ray.hit = capture.Hit{Body: bodyOf(hover.Collider), Point: hover.Position, Normal: hover.Normal}
}

// pointer is the ray source view of a [PointerRay].
type pointer struct {
	captureMarker

	ray *PointerRay
}

func newPointer(tree SceneTree.Instance, ray *PointerRay) pointer {
	return pointer{captureMarker: newCaptureMarker(tree, ray.AsNode()), ray: ray}
}

func (p pointer) ID() capture.RayID { return p.id }
func (p pointer) Name() string      { return fmt.Sprint(p.ray.AsNode().GetPath()) }
func (p pointer) Enabled() bool     { return p.ray.Active }

func (p pointer) Colliding() (capture.Hit, bool) {
	p.ray.pick()
	return p.ray.hit, p.ray.hitting
}

func (p pointer) Segment() (from, to Vector3.XYZ) {
	p.ray.pick()
	return p.ray.from, p.ray.to
}
