package render

import "github.com/taigrr/trophy/pkg/math3d"

// vertex is one clipped-polygon vertex carried through the pipeline. Only
// one of Col and UV is populated: UV when the bound MeshData has UVs,
// otherwise Col.
type vertex struct {
	Pos      math3d.Vec4 // clip pos pre-divide, screen pos + 1/w post-divide
	Col      math3d.Vec3
	UV       math3d.Vec2
	Norm     math3d.Vec4 // world-space direction, w = 0
	WorldPos math3d.Vec4 // world-space position, w = 1
}

// polygon is the per-triangle clip-space-to-screen-space working record
// (the spec's "V2R record"): up to 9 vertices surviving Sutherland–Hodgman
// clipping against the 6 NDC planes. Count == 0 marks a wholly rejected
// triangle (near-plane failure, back-face cull, or fully outside NDC).
type polygon struct {
	Count int
	Verts [9]vertex
}

// pipelineState carries the inputs the vertex pipeline needs for one
// Render call: the bound mesh, the current MVP/M matrices, and the
// render target size for the final viewport map.
type pipelineState struct {
	mesh          *MeshData
	model, mvp    math3d.Mat4
	width, height int
}

// vertexShader assembles and transforms the 3 vertices of triangle tIdx,
// returning false the moment any vertex fails the near-plane test — once a
// vertex fails, the remaining two in that triangle are never assembled,
// matching the original implementation's early-return order.
func (ps *pipelineState) vertexShader(tIdx int, out *[3]vertex) bool {
	m := ps.mesh
	idx := tIdx * 3
	vIdx := [3]uint32{m.Indices[idx], m.Indices[idx+1], m.Indices[idx+2]}

	var uvIdx, nIdx [3]uint32
	if m.HasUVs() {
		uvIdx = [3]uint32{m.UVIndices[idx], m.UVIndices[idx+1], m.UVIndices[idx+2]}
	}
	if m.HasNormals() {
		nIdx = [3]uint32{m.NormalIndices[idx], m.NormalIndices[idx+1], m.NormalIndices[idx+2]}
	}

	for t := 0; t < 3; t++ {
		v := &out[t]
		p := m.Positions[vIdx[t]]
		v.Pos = math3d.V4FromV3(p, 1)

		if m.HasUVs() {
			v.UV = m.UVs[uvIdx[t]]
		} else if m.HasColors() {
			v.Col = m.Colors[vIdx[t]]
		}

		if m.HasNormals() {
			v.Norm = math3d.V4FromV3(m.Normals[nIdx[t]], 0)
			v.WorldPos = math3d.V4FromV3(p, 1)
		}

		// Local space -> clip space.
		v.Pos = ps.mvp.MulVec4(v.Pos)
		if m.HasNormals() {
			v.Norm = ps.model.MulVec4(v.Norm)
			v.WorldPos = ps.model.MulVec4(v.WorldPos)
		}

		// Near-plane reject (easy version): abort the whole triangle.
		if v.Pos.W <= 0 {
			return false
		}

		// Perspective divide before clipping; pre-scale every interpolable
		// attribute by 1/w so later linear interpolation is perspective
		// correct.
		rhw := 1 / v.Pos.W
		v.Pos.W = rhw
		v.Pos.X *= rhw
		v.Pos.Y *= rhw
		v.Pos.Z *= rhw

		if m.HasUVs() {
			v.UV = v.UV.Scale(rhw)
		} else if m.HasColors() {
			v.Col = v.Col.Scale(rhw)
		}
		if m.HasNormals() {
			v.Norm = v.Norm.Scale(rhw)
			v.WorldPos = v.WorldPos.Scale(rhw)
		}
	}
	return true
}

// backfaceCulled reports whether the triangle formed by the first 3
// (post-divide, pre-clip) vertices winds clockwise in screen-space-z,
// i.e. (v1-v0)x(v2-v0).z < 0.
func backfaceCulled(v [3]vertex) bool {
	e1 := v[1].Pos.Sub(v[0].Pos)
	e2 := v[2].Pos.Sub(v[0].Pos)
	cross := e1.X*e2.Y - e1.Y*e2.X
	return cross < 0
}

// clipPlane identifies one of the 6 NDC planes in the fixed order the
// original pipeline visits them: x=-1, x=+1, y=-1, y=+1, z=-1, z=+1.
type clipPlane struct {
	axis     int // 0=x, 1=y, 2=z
	positive bool
}

var clipPlanes = [6]clipPlane{
	{0, false}, {0, true},
	{1, false}, {1, true},
	{2, false}, {2, true},
}

func component(v math3d.Vec4, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// lerpVertex linearly interpolates every attribute of a and b by t,
// including Pos, matching the original's single interpolation pass across
// the whole V2RDat record.
func lerpVertex(a, b vertex, t float64) vertex {
	return vertex{
		Pos:      a.Pos.Lerp(b.Pos, t),
		Col:      a.Col.Lerp(b.Col, t),
		UV:       a.UV.Lerp(b.UV, t),
		Norm:     a.Norm.Lerp(b.Norm, t),
		WorldPos: a.WorldPos.Lerp(b.WorldPos, t),
	}
}

// sutherlandHodgman clips the triangle in v against the 6 NDC planes in
// order, writing the surviving (possibly degenerate) polygon into poly.
func sutherlandHodgman(v [3]vertex, poly *polygon) {
	poly.Count = 3
	poly.Verts[0], poly.Verts[1], poly.Verts[2] = v[0], v[1], v[2]

	var tmp [9]vertex
	for _, plane := range clipPlanes {
		copy(tmp[:poly.Count], poly.Verts[:poly.Count])
		n := 0
		s := poly.Count - 1
		for p := 0; p < poly.Count; p++ {
			sVal := component(tmp[s].Pos, plane.axis)
			pVal := component(tmp[p].Pos, plane.axis)

			var sIn, pIn bool
			var num, den float64
			if !plane.positive {
				sIn = sVal >= -1
				pIn = pVal >= -1
				den = sVal - pVal
				num = sVal - (-1)
			} else {
				sIn = sVal <= 1
				pIn = pVal <= 1
				den = pVal - sVal
				num = 1 - sVal
			}

			switch {
			case sIn && pIn:
				poly.Verts[n] = tmp[p]
				n++
			case !sIn && !pIn:
				// both outside: emit nothing
			default:
				t := num / den
				poly.Verts[n] = lerpVertex(tmp[s], tmp[p], t)
				n++
				if !sIn {
					poly.Verts[n] = tmp[p]
					n++
				}
			}
			s = p
		}
		poly.Count = n
		if poly.Count == 0 {
			return
		}
	}
}

// runPreRasterization transforms and clips every triangle in the bound
// mesh, writing the results into polys (len(polys) must equal
// mesh.TriangleCount()). backfaceCull, when true, rejects triangles whose
// post-divide winding is clockwise.
func (ps *pipelineState) runPreRasterization(polys []polygon, backfaceCull bool) {
	var raw [3]vertex
	for t := range polys {
		poly := &polys[t]
		poly.Count = 0

		if !ps.vertexShader(t, &raw) {
			continue
		}
		if backfaceCull && backfaceCulled(raw) {
			continue
		}

		sutherlandHodgman(raw, poly)
		if poly.Count == 0 {
			continue
		}

		w, h := float64(ps.width), float64(ps.height)
		for i := 0; i < poly.Count; i++ {
			poly.Verts[i].Pos.X = (poly.Verts[i].Pos.X + 1) * 0.5 * w
			poly.Verts[i].Pos.Y = (poly.Verts[i].Pos.Y + 1) * 0.5 * h
		}
	}
}
