package render

import "github.com/taigrr/trophy/pkg/math3d"

// MeshData is the bound input to a renderer: flat position/index arrays
// plus optional per-vertex color, UV, and normal attributes, each with
// their own index array (mirroring the Wavefront-style separation between
// position, texcoord, and normal indices).
//
// UV and Col are mutually exclusive surface data: a renderer prefers UV
// when both are set, matching the original pipeline's "uv wins" rule, even
// though UV is only ever carried, never sampled (see DESIGN.md — no
// texturing is one of the renderer's non-goals).
type MeshData struct {
	Positions []math3d.Vec3
	Indices   []uint32

	Colors []math3d.Vec3 // optional, aligned with Positions

	UVs       []math3d.Vec2 // optional
	UVIndices []uint32

	Normals       []math3d.Vec3 // optional
	NormalIndices []uint32
}

// HasColors reports whether per-vertex colors are bound.
func (m *MeshData) HasColors() bool { return len(m.Colors) > 0 }

// HasUVs reports whether texture coordinates are bound.
func (m *MeshData) HasUVs() bool { return len(m.UVs) > 0 }

// HasNormals reports whether normals are bound.
func (m *MeshData) HasNormals() bool { return len(m.Normals) > 0 }

// TriangleCount returns |Indices|/3, truncating any trailing partial
// triangle. This mirrors the original implementation's
// `triangleNum = indices.size() / 3`, which silently drops a non-multiple-
// of-3 tail rather than treating it as an error — see DESIGN.md.
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}
