// Package meshio loads indexed triangle meshes from Wavefront OBJ and
// GLTF/GLB files into the flat, separately-indexed attribute layout
// pkg/render's MeshData consumes.
package meshio

import (
	"github.com/taigrr/trophy/pkg/math3d"
	"github.com/taigrr/trophy/pkg/render"
)

// Mesh is the loader-facing geometry: positions plus triangle indices,
// and optional UV/normal attributes each carrying their own index array
// — mirroring the Wavefront separation between v/vt/vn indices, which a
// GLTF loader simply reuses Indices for (one shared index per vertex).
type Mesh struct {
	Name string

	Positions []math3d.Vec3
	Indices   []uint32

	UVs       []math3d.Vec2
	UVIndices []uint32

	Normals       []math3d.Vec3
	NormalIndices []uint32

	BoundsMin, BoundsMax math3d.Vec3

	// MaterialImageCount is how many of a GLTF source's embedded material
	// images decoded successfully; always 0 for OBJ meshes. The renderer
	// never samples these (texturing is a non-goal), so this exists only
	// to let a caller report that the asset's material block was parsed
	// rather than skipped.
	MaterialImageCount int
}

// NewMesh creates an empty, named mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// HasUVs reports whether texture coordinates were loaded.
func (m *Mesh) HasUVs() bool { return len(m.UVs) > 0 }

// HasNormals reports whether normals were loaded.
func (m *Mesh) HasNormals() bool { return len(m.Normals) > 0 }

// TriangleCount returns |Indices|/3.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// CalculateBounds recomputes the mesh's world-space AABB from its
// positions.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}
	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]
	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// GenerateFlatNormals derives one normal per triangle from
// (v1-v0)x(v2-v0), left unnormalized (shading normalizes on use), and
// binds it via a fresh per-triangle index triple. Mirrors the original
// loader's generateNorms, which runs only when the whole file carried
// zero vn lines — an all-or-nothing check, not a per-face fallback; see
// obj.go.
func (m *Mesh) GenerateFlatNormals() {
	triCount := m.TriangleCount()
	normals := make([]math3d.Vec3, triCount)
	indices := make([]uint32, 0, triCount*3)
	for t := 0; t < triCount; t++ {
		i0, i1, i2 := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
		v0, v1, v2 := m.Positions[i0], m.Positions[i1], m.Positions[i2]
		normals[t] = v1.Sub(v0).Cross(v2.Sub(v0))
		indices = append(indices, uint32(t), uint32(t), uint32(t))
	}
	m.Normals = normals
	m.NormalIndices = indices
}

// ToMeshData adapts the loaded geometry to pkg/render's bind-time shape.
func (m *Mesh) ToMeshData() render.MeshData {
	return render.MeshData{
		Positions:     m.Positions,
		Indices:       m.Indices,
		UVs:           m.UVs,
		UVIndices:     m.UVIndices,
		Normals:       m.Normals,
		NormalIndices: m.NormalIndices,
	}
}
