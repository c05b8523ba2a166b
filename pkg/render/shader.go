package render

import (
	"math"

	"github.com/taigrr/trophy/pkg/math3d"
)

// shadePixel implements C3: ambient + Lambert diffuse against a single
// point light, or the flat base color when the mesh carries no normals.
// v's attributes must already be perspective-corrected (scaled by the
// recovered w, not 1/w).
func shadePixel(v vertex, mesh *MeshData, light Light) Color {
	base := math3d.V3(1, 1, 1)
	if mesh.HasColors() {
		base = v.Col
	}
	// UVs are carried but never sampled — texturing is a non-goal.

	var out math3d.Vec3
	if mesh.HasNormals() {
		n := v.Norm.Vec3().Normalize()
		lightDir := light.Position.Sub(v.WorldPos.Vec3()).Normalize()
		diff := math.Max(n.Dot(lightDir), 0)
		ambient := light.AmbientColor.Scale(light.AmbientStrength)
		diffuse := light.Color.Scale(diff)
		out = ambient.Add(diffuse).Mul(base)
	} else {
		out = base
	}

	return Color{
		R: toU8(out.X),
		G: toU8(out.Y),
		B: toU8(out.Z),
		A: 255,
	}
}

// toU8 matches the original's rgbF2rgbaU8: clamp to [0,1] then truncate,
// not round, on the cast to uint8.
func toU8(c float64) uint8 {
	if c <= 0 {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(c * 255)
}
