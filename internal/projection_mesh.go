package internal

import (
	"fmt"

	"graphics.gd/classdb/BoxShape3D"
	"graphics.gd/classdb/MeshInstance3D"
	"graphics.gd/classdb/QuadMesh"
	"graphics.gd/classdb/Shader"
	"graphics.gd/classdb/ShaderMaterial"
	"graphics.gd/classdb/Shape3D"
	"graphics.gd/classdb/SphereMesh"
	"graphics.gd/classdb/Texture2D"
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Vector2"
	"graphics.gd/variant/Vector3"

	"godot.plugin/gast/internal/capture"
)

// renderOnTopPriority draws surfaces that render on top after everything else.
const renderOnTopPriority = 127

// thickness of the collision box behind a rectangular surface.
const thickness = 0.001

// the texture is sampled as-is, the gradient fades the bottom of the surface
// out over gradient_height_ratio of its height.
const projectionShader = `shader_type spatial;
render_mode unshaded, cull_disabled%s;

uniform sampler2D surface_texture : source_color, hint_default_black;
uniform float alpha : hint_range(0.0, 1.0) = 1.0;
uniform float gradient_height_ratio : hint_range(0.0, 1.0) = 0.0;

void fragment() {
	vec4 color = texture(surface_texture, UV);
	float fade = 1.0;
	if (gradient_height_ratio > 0.0) {
		fade = clamp((1.0 - UV.y) / gradient_height_ratio, 0.0, 1.0);
	}
	ALBEDO = color.rgb;
	ALPHA = color.a * alpha * fade;
}
`

// projectionMesh is the visible part of a surface, along with the collision
// shape that rays hit.
type projectionMesh struct {
	instance MeshInstance3D.Instance
	material ShaderMaterial.Instance
}

func newProjectionMesh() *projectionMesh {
	pm := &projectionMesh{
		instance: MeshInstance3D.New(),
		material: ShaderMaterial.New(),
	}
	pm.setRenderOnTop(false)
	return pm
}

// reshape rebuilds the mesh for the given size and returns the collision shape
// and 2D projection that match it.
func (pm *projectionMesh) reshape(size Vector2.XY, curved bool) (Shape3D.Instance, capture.Projection) {
	if curved {
		sphere := SphereMesh.New()
		sphere.SetRadius(size.X)
		sphere.SetHeight(2 * size.X)
		sphere.AsPrimitiveMesh().SetFlipFaces(true)
		pm.instance.SetMesh(sphere.AsMesh())
		pm.instance.SetSurfaceOverrideMaterial(0, pm.material.AsMaterial())
		return sphere.AsMesh().CreateTrimeshShape().AsShape3D(), capture.Equirectangle{}
	}
	quad := QuadMesh.New()
	quad.AsPlaneMesh().SetSize(size)
	pm.instance.SetMesh(quad.AsMesh())
	pm.instance.SetSurfaceOverrideMaterial(0, pm.material.AsMaterial())
	box := BoxShape3D.New()
	box.SetSize(Vector3.New(size.X, size.Y, thickness))
	return box.AsShape3D(), capture.Rectangle{Size: size}
}

func (pm *projectionMesh) setRenderOnTop(onTop bool) {
	shader := Shader.New()
	if onTop {
		shader.SetCode(fmt.Sprintf(projectionShader, ", depth_test_disabled"))
		pm.material.AsMaterial().SetRenderPriority(renderOnTopPriority)
	} else {
		shader.SetCode(fmt.Sprintf(projectionShader, ""))
		pm.material.AsMaterial().SetRenderPriority(0)
	}
	pm.material.SetShader(shader)
}

func (pm *projectionMesh) setTexture(texture Texture2D.Instance) {
	pm.material.SetShaderParameter("surface_texture", texture)
}

func (pm *projectionMesh) setAlpha(alpha Float.X) {
	pm.material.SetShaderParameter("alpha", alpha)
}

func (pm *projectionMesh) setGradientHeightRatio(ratio Float.X) {
	pm.material.SetShaderParameter("gradient_height_ratio", ratio)
}
