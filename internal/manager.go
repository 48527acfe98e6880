package internal

import (
	"fmt"

	"graphics.gd/classdb/Engine"
	"graphics.gd/classdb/Node"
	"graphics.gd/variant/Angle"
	"graphics.gd/variant/Euler"
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Vector3"
	"runtime.link/api/xray"

	"godot.plugin/gast/protocol/gast"
)

// surface returns the node for id, or nil after raising the reason it could
// not be found.
func (loader *GastLoader) surface(id string) *GastNode {
	node, err := loader.surfaces.Lookup(id)
	if err != nil {
		Engine.Raise(err)
		return nil
	}
	return node
}

func (loader *GastLoader) parent(path string, empty bool) (Node.Instance, bool) {
	parent := Node.Instance(loader.AsNode().GetNodeOrNull(path))
	if parent == (Node.Instance{}) {
		Engine.Raise(xray.New(fmt.Errorf("gast: no parent node at %s", path)))
		return Node.Instance{}, false
	}
	if empty {
		for _, child := range parent.GetChildren() {
			parent.RemoveChild(child)
			child.QueueFree()
		}
	}
	return parent, true
}

// AcquireAndBindGastNode creates a new surface under the node at parentPath and
// returns its id, or an empty string on failure. When emptyParent is true, the
// parent's existing children are freed first.
func (loader *GastLoader) AcquireAndBindGastNode(parentPath string, emptyParent bool) string {
	parent, ok := loader.parent(parentPath, emptyParent)
	if !ok {
		return ""
	}
	node := new(GastNode)
	parent.AddChild(node.AsNode())
	if node.id == (gast.SurfaceID{}) {
		node.id = gast.NewSurfaceID()
	}
	node.loader = loader
	loader.surfaces.Adopt(node.id, node)
	return node.id.String()
}

// UnbindAndReleaseGastNode removes the surface from the tree and frees it.
func (loader *GastLoader) UnbindAndReleaseGastNode(id string) {
	node := loader.surface(id)
	if node == nil {
		return
	}
	loader.surfaces.Forget(node.id, node)
	node.loader = nil
	if parent := node.AsNode().GetParent(); parent != (Node.Instance{}) {
		parent.RemoveChild(node.AsNode())
	}
	node.AsNode().QueueFree()
}

// GetGastNodePath returns the scene path of the surface.
func (loader *GastLoader) GetGastNodePath(id string) string {
	node := loader.surface(id)
	if node == nil {
		return ""
	}
	return fmt.Sprint(node.AsNode().GetPath())
}

func (loader *GastLoader) SetGastNodeName(id string, name string) {
	if node := loader.surface(id); node != nil {
		node.AsNode().SetName(name)
	}
}

// UpdateGastNodeParent moves the surface under the node at parentPath,
// keeping its local transform.
func (loader *GastLoader) UpdateGastNodeParent(id string, parentPath string, emptyParent bool) bool {
	node := loader.surface(id)
	if node == nil {
		return false
	}
	parent, ok := loader.parent(parentPath, emptyParent)
	if !ok {
		return false
	}
	if old := node.AsNode().GetParent(); old != (Node.Instance{}) {
		old.RemoveChild(node.AsNode())
	}
	parent.AddChild(node.AsNode())
	node.loader = loader
	loader.surfaces.Adopt(node.id, node)
	return true
}

// UpdateGastNodeVisibility shows or hides the surface. When
// duplicateParentVisibility is true, the visibility inherited from the parents
// is compared against visible.
func (loader *GastLoader) UpdateGastNodeVisibility(id string, duplicateParentVisibility bool, visible bool) {
	node := loader.surface(id)
	if node == nil {
		return
	}
	current := node.AsNode3D().Visible()
	if duplicateParentVisibility {
		current = node.AsNode3D().IsVisibleInTree()
	}
	if current != visible {
		node.AsNode3D().SetVisible(visible)
	}
}

func (loader *GastLoader) SetGastNodeCollidable(id string, collidable bool) {
	if node := loader.surface(id); node != nil {
		node.Collidable = collidable
		node.apply()
	}
}

func (loader *GastLoader) IsGastNodeCollidable(id string) bool {
	if node := loader.surface(id); node != nil {
		return node.Collidable
	}
	return true
}

func (loader *GastLoader) SetGastNodeCurved(id string, curved bool) {
	if node := loader.surface(id); node != nil {
		node.Curved = curved
		node.apply()
	}
}

func (loader *GastLoader) IsGastNodeCurved(id string) bool {
	if node := loader.surface(id); node != nil {
		return node.Curved
	}
	return false
}

func (loader *GastLoader) SetGastNodeGazeTracking(id string, tracking bool) {
	if node := loader.surface(id); node != nil {
		node.GazeTracking = tracking
	}
}

func (loader *GastLoader) IsGastNodeGazeTracking(id string) bool {
	if node := loader.surface(id); node != nil {
		return node.GazeTracking
	}
	return false
}

func (loader *GastLoader) SetGastNodeRenderOnTop(id string, onTop bool) {
	if node := loader.surface(id); node != nil {
		node.RenderOnTop = onTop
		node.apply()
	}
}

func (loader *GastLoader) IsGastNodeRenderOnTop(id string) bool {
	if node := loader.surface(id); node != nil {
		return node.RenderOnTop
	}
	return false
}

func (loader *GastLoader) SetGastNodeGradientHeightRatio(id string, ratio Float.X) {
	if node := loader.surface(id); node != nil {
		node.GradientHeightRatio = ratio
		node.apply()
	}
}

func (loader *GastLoader) GetGastNodeGradientHeightRatio(id string) Float.X {
	if node := loader.surface(id); node != nil {
		return node.GradientHeightRatio
	}
	return 0
}

func (loader *GastLoader) UpdateGastNodeSize(id string, width, height Float.X) {
	if node := loader.surface(id); node != nil {
		node.Size.X, node.Size.Y = width, height
		node.apply()
	}
}

func (loader *GastLoader) UpdateGastNodeLocalTranslation(id string, x, y, z Float.X) {
	if node := loader.surface(id); node != nil {
		node.AsNode3D().SetPosition(Vector3.New(x, y, z))
	}
}

func (loader *GastLoader) UpdateGastNodeLocalScale(id string, x, y Float.X) {
	if node := loader.surface(id); node != nil {
		node.AsNode3D().SetScale(Vector3.New(x, y, 1))
	}
}

// UpdateGastNodeLocalRotation sets the rotation of the surface, in degrees.
func (loader *GastLoader) UpdateGastNodeLocalRotation(id string, x, y, z Float.X) {
	if node := loader.surface(id); node != nil {
		node.AsNode3D().SetRotationDegrees(Euler.Degrees{X: Angle.Degrees(x), Y: Angle.Degrees(y), Z: Angle.Degrees(z)})
	}
}

func (loader *GastLoader) GetExternalTextureId(id string, surface int) int {
	if node := loader.surface(id); node != nil {
		return node.ExternalTextureId(surface)
	}
	return -1
}
