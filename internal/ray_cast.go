package internal

import (
	"fmt"

	"graphics.gd/classdb/Node"
	"graphics.gd/classdb/RayCast3D"
	"graphics.gd/classdb/SceneTree"
	"graphics.gd/variant/Object"
	"graphics.gd/variant/Vector3"

	"godot.plugin/gast/internal/capture"
)

const (
	// RayCasterGroup is the group that every ray source must join to interact
	// with GAST surfaces.
	RayCasterGroup = "gast_ray_caster"

	// CapturedGroup marks ray sources that are currently captured by a surface.
	CapturedGroup = "captured_gast_ray_casts"
)

// captureMarker implements the shared capture marker of a ray source with
// group membership, so that it is visible to every surface in the tree.
type captureMarker struct {
	tree SceneTree.Instance
	node Node.Instance
	id   capture.RayID
}

func newCaptureMarker(tree SceneTree.Instance, node Node.Instance) captureMarker {
	return captureMarker{tree: tree, node: node, id: capture.RayID(node.ID())}
}

func (m captureMarker) Captured() bool { return m.node.IsInGroup(CapturedGroup) }

// SetCaptured may be called after the ray source has been freed, so the marker
// is cleared through the group, which only holds live nodes.
func (m captureMarker) SetCaptured(captured bool) {
	if captured {
		if !m.node.IsInGroup(CapturedGroup) {
			m.node.AddToGroup(CapturedGroup)
		}
		return
	}
	for _, node := range m.tree.GetNodesInGroup(CapturedGroup) {
		if capture.RayID(node.ID()) == m.id {
			node.RemoveFromGroup(CapturedGroup)
			return
		}
	}
}

// rayCast adapts a RayCast3D node, such as a controller or head-gaze ray.
type rayCast struct {
	captureMarker

	ray RayCast3D.Instance
}

func newRayCast(tree SceneTree.Instance, ray RayCast3D.Instance) rayCast {
	return rayCast{captureMarker: newCaptureMarker(tree, ray.AsNode()), ray: ray}
}

func (r rayCast) ID() capture.RayID { return r.id }
func (r rayCast) Name() string      { return fmt.Sprint(r.ray.AsNode().GetPath()) }
func (r rayCast) Enabled() bool     { return r.ray.Enabled() }

func (r rayCast) Colliding() (capture.Hit, bool) {
	if !r.ray.IsColliding() {
		return capture.Hit{}, false
	}
	return capture.Hit{
		Body:   bodyOf(r.ray.GetCollider()),
		Point:  r.ray.GetCollisionPoint(),
		Normal: r.ray.GetCollisionNormal(),
	}, true
}

func (r rayCast) Segment() (from, to Vector3.XYZ) {
	node := r.ray.AsNode3D()
	return node.GlobalPosition(), node.ToGlobal(r.ray.TargetPosition())
}

// bodyOf returns zero for colliders that are not nodes.
func bodyOf(collider Object.Instance) capture.Body {
	if collider == Object.Nil {
		return 0
	}
	node, ok := Object.As[Node.Instance](collider)
	if !ok {
		return 0
	}
	return capture.Body(node.ID())
}

// raySources returns every ray source in the tree. Members of the group that
// are not ray sources are returned as nil.
func raySources(tree SceneTree.Instance) []capture.Ray {
	nodes := tree.GetNodesInGroup(RayCasterGroup)
	rays := make([]capture.Ray, 0, len(nodes))
	for _, node := range nodes {
		if ray, ok := Object.As[*PointerRay](node); ok {
			rays = append(rays, newPointer(tree, ray))
			continue
		}
		if ray, ok := Object.As[RayCast3D.Instance](node); ok {
			rays = append(rays, newRayCast(tree, ray))
			continue
		}
		rays = append(rays, nil)
	}
	return rays
}
