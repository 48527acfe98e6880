package internal

import (
	"fmt"

	"graphics.gd/classdb/Camera3D"
	"graphics.gd/classdb/CollisionShape3D"
	"graphics.gd/classdb/InputEvent"
	"graphics.gd/classdb/InputEventScreenDrag"
	"graphics.gd/classdb/InputEventScreenTouch"
	"graphics.gd/classdb/Node"
	"graphics.gd/classdb/RenderingServer"
	"graphics.gd/classdb/SceneTree"
	"graphics.gd/classdb/Shape3D"
	"graphics.gd/classdb/StaticBody3D"
	"graphics.gd/classdb/Texture2D"
	"graphics.gd/classdb/Viewport"
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Object"
	"graphics.gd/variant/RID"
	"graphics.gd/variant/Vector2"
	"graphics.gd/variant/Vector3"

	"godot.plugin/gast/internal/capture"
	"godot.plugin/gast/protocol/gast"
)

const (
	notificationPredelete         = 1
	notificationVisibilityChanged = 43
)

var defaultSize = Vector2.New(2, 1.125)

// GastNode is a projection surface: a mesh displaying externally rendered content
// that turns the rays and touches that hit it into 2D input for the renderer.
type GastNode struct {
	StaticBody3D.Extension[GastNode] `gd:"GastNode"`

	Collidable          bool               `gd:"collidable" default:"true"`
	GazeTracking        bool               `gd:"gaze_tracking" default:"false"`
	RenderOnTop         bool               `gd:"render_on_top" default:"false"`
	GradientHeightRatio Float.X            `gd:"gradient_height_ratio" range:"0,1" default:"0"`
	Alpha               Float.X            `gd:"alpha" range:"0,1" default:"1"`
	Curved              bool               `gd:"curved" default:"false"`
	Size                Vector2.XY         `gd:"size"`
	Texture             Texture2D.Instance `gd:"texture"`

	id      gast.SurfaceID
	loader  *GastLoader
	tracker *capture.Tracker

	mesh       *projectionMesh
	shape      CollisionShape3D.Instance
	collision  Shape3D.Instance
	projection capture.Projection
	applied    surfaceSettings
	configured bool
}

// surfaceSettings is the subset of properties that require the mesh or the
// collision shape to be rebuilt.
type surfaceSettings struct {
	collidable  bool
	visible     bool
	renderOnTop bool
	curved      bool
	ratio       Float.X
	alpha       Float.X
	size        Vector2.XY
	texture     Texture2D.Instance
}

func (node *GastNode) Ready() {
	if node.id == (gast.SurfaceID{}) {
		node.id = gast.NewSurfaceID()
	}
	if node.Size == (Vector2.XY{}) {
		node.Size = defaultSize
	}
	node.shape = CollisionShape3D.Nil
	for _, child := range node.AsNode().GetChildren() {
		if shape, ok := Object.As[CollisionShape3D.Instance](child); ok {
			node.shape = shape
			break
		}
	}
	if node.shape == CollisionShape3D.Nil {
		node.shape = CollisionShape3D.New()
		node.AsNode().AddChild(node.shape.AsNode())
	}
	node.mesh = newProjectionMesh()
	node.shape.AsNode().AddChild(node.mesh.instance.AsNode())
	node.tracker = capture.New(surface{node}, surfaceEvents{node}, engineErrors{})
	node.apply()
}

// ExitTree releases the rays of the surface. It stays registered with its
// loader, as it may be added back to the tree.
func (node *GastNode) ExitTree() {
	if node.tracker != nil {
		node.tracker.ReleaseAll()
	}
}

func (node *GastNode) settings() surfaceSettings {
	return surfaceSettings{
		collidable:  node.Collidable,
		visible:     node.AsNode3D().IsVisibleInTree(),
		renderOnTop: node.RenderOnTop,
		curved:      node.Curved,
		ratio:       node.GradientHeightRatio,
		alpha:       node.Alpha,
		size:        node.Size,
		texture:     node.Texture,
	}
}

// apply brings the mesh and the collision shape up to date with the node's
// properties.
func (node *GastNode) apply() {
	if node.mesh == nil {
		return // not ready.
	}
	now := node.settings()
	was := node.applied
	fresh := !node.configured
	node.applied = now
	node.configured = true
	if fresh || now.curved != was.curved || now.size != was.size {
		node.collision, node.projection = node.mesh.reshape(now.size, now.curved)
	}
	if fresh || now.renderOnTop != was.renderOnTop {
		node.mesh.setRenderOnTop(now.renderOnTop)
	}
	if fresh || now.alpha != was.alpha {
		node.mesh.setAlpha(now.alpha)
	}
	if fresh || now.ratio != was.ratio {
		node.mesh.setGradientHeightRatio(now.ratio)
	}
	if fresh || now.texture != was.texture {
		node.mesh.setTexture(now.texture)
	}
	if now.visible && now.collidable {
		node.shape.SetShape(node.collision)
	} else {
		node.shape.SetShape(Shape3D.Nil)
		// a surface that can no longer be hit must not keep any ray captured.
		node.tracker.ReleaseAll()
	}
}

func (node *GastNode) Notification(what int, reversed bool) {
	switch what {
	case notificationVisibilityChanged:
		if node.configured {
			node.apply()
		}
	case notificationPredelete:
		if node.loader != nil {
			node.loader.surfaces.Forget(node.id, node)
			node.loader = nil
		}
	}
}

func (node *GastNode) Process(dt Float.X) {
	if node.settings() != node.applied {
		node.apply()
	}
	if node.GazeTracking {
		node.followGaze()
	}
}

// followGaze keeps the surface in the center of the camera's view, at its
// current distance from the camera.
func (node *GastNode) followGaze() {
	viewport := Viewport.Get(node.AsNode())
	cam := viewport.GetCamera3d()
	if cam == Camera3D.Nil {
		return
	}
	area := viewport.GetVisibleRect()
	center := Vector2.Add(area.Position, Vector2.MulX(area.Size, 0.5))
	distance := Vector3.Distance(cam.AsNode3D().GlobalPosition(), node.AsNode3D().GlobalPosition())
	node.AsNode3D().SetGlobalPosition(cam.ProjectPosition(center, distance))
}

func (node *GastNode) PhysicsProcess(dt Float.X) {
	node.tracker.Track(raySources(SceneTree.Get(node.AsNode())), engineActions{})
}

// InputEvent receives the touch screen events that hit the surface.
func (node *GastNode) InputEvent(camera Camera3D.Instance, event InputEvent.Instance, position Vector3.XYZ, normal Vector3.XYZ, shape int) {
	if !node.Collidable {
		return
	}
	at := capture.Relative(surface{node}, position)
	if touch, ok := Object.As[InputEventScreenTouch.Instance](event); ok {
		in := node.input(fmt.Sprintf("InputEventScreenTouch%d", touch.Index()), at)
		if touch.AsInputEvent().IsPressed() {
			surfaceEvents{node}.OnPress(in)
		} else {
			surfaceEvents{node}.OnRelease(in)
		}
		return
	}
	if drag, ok := Object.As[InputEventScreenDrag.Instance](event); ok {
		surfaceEvents{node}.OnHover(node.input(fmt.Sprintf("InputEventScreenDrag%d", drag.Index()), at))
	}
}

func (node *GastNode) input(origin string, at Vector2.XY) gast.Input {
	return gast.Input{Surface: node.id, Origin: origin, X: at.X, Y: at.Y}
}

// ExternalTextureId returns the native handle, in the rendering driver, of the
// texture displayed by the given mesh surface, or -1 when there is none. Surface
// -1 selects the first surface.
func (node *GastNode) ExternalTextureId(surface int) int {
	if surface != -1 && surface != 0 {
		return -1
	}
	if node.Texture == Texture2D.Nil {
		return -1
	}
	return nativeHandle(node.Texture)
}

func nativeHandle(texture Texture2D.Instance) int {
	rid := RID.Texture(texture.AsResource().GetRid())
	if rid == 0 {
		return -1
	}
	return RenderingServer.TextureGetNativeHandle(rid, false)
}

// surface is the capture view of a [GastNode].
type surface struct {
	node *GastNode
}

func (s surface) ID() gast.SurfaceID { return s.node.id }
func (s surface) Body() capture.Body { return capture.Body(s.node.AsNode().ID()) }

func (s surface) Collidable() bool {
	return s.node.Collidable && s.node.AsNode3D().IsVisibleInTree() && s.node.shape != CollisionShape3D.Nil
}

func (s surface) ToLocal(world Vector3.XYZ) Vector3.XYZ { return s.node.AsNode3D().ToLocal(world) }
func (s surface) Projection() capture.Projection        { return s.node.projection }

// surfaceEvents delivers input to the [GastLoader] in the tree, when there is one.
type surfaceEvents struct {
	node *GastNode
}

func (e surfaceEvents) listener() gast.Listener {
	node := e.node
	if node.loader == nil {
		first := SceneTree.Get(node.AsNode()).GetFirstNodeInGroup(LoaderGroup)
		if first == (Node.Instance{}) {
			return gast.Listeners(nil)
		}
		loader, ok := Object.As[*GastLoader](first)
		if !ok {
			return gast.Listeners(nil)
		}
		loader.surfaces.Adopt(node.id, node)
		node.loader = loader
	}
	return node.loader.events()
}

func (e surfaceEvents) OnPress(in gast.Input)   { e.listener().OnPress(in) }
func (e surfaceEvents) OnRelease(in gast.Input) { e.listener().OnRelease(in) }
func (e surfaceEvents) OnHover(in gast.Input)   { e.listener().OnHover(in) }
func (e surfaceEvents) OnScroll(in gast.Scroll) { e.listener().OnScroll(in) }
