package render

import (
	"math"

	"github.com/taigrr/trophy/pkg/math3d"
)

// pyramidLevels is the fixed Z-pyramid depth (C4): level 0 is the working
// depth buffer, each subsequent level halves both dimensions.
const pyramidLevels = 6

// zPyramid is a 6-level max-depth mipmap over the working depth buffer,
// used both as the real depth buffer (level 0) and to answer conservative
// "could this region possibly be visible" queries at coarser levels.
type zPyramid struct {
	width, height [pyramidLevels]int
	buf           [pyramidLevels][]float64
}

func newZPyramid(w, h int) *zPyramid {
	p := &zPyramid{}
	p.width[0], p.height[0] = w, h
	for l := 1; l < pyramidLevels; l++ {
		p.width[l] = p.width[l-1] / 2
		p.height[l] = p.height[l-1] / 2
	}
	for l := 0; l < pyramidLevels; l++ {
		p.buf[l] = make([]float64, p.width[l]*p.height[l])
	}
	p.clear()
	return p
}

func (p *zPyramid) clear() {
	for l := 0; l < pyramidLevels; l++ {
		for i := range p.buf[l] {
			p.buf[l][i] = math.Inf(1)
		}
	}
}

// depthPasses performs the real per-pixel depth test and, on success,
// writes the new depth to level 0 and propagates the change up the
// pyramid. The fill convention rejects ties (depth >= current), distinct
// from the looser probe convention below — see SPEC_FULL.md.
func (p *zPyramid) depthPasses(x, y int, depth float64) bool {
	if x < 0 || x >= p.width[0] || y < 0 || y >= p.height[0] {
		return false
	}
	idx := y*p.width[0] + x
	if depth >= p.buf[0][idx] {
		return false
	}
	p.buf[0][idx] = depth
	p.propagate(x, y)
	return true
}

func (p *zPyramid) at(lvl, x, y int) float64 {
	return p.buf[lvl][y*p.width[lvl]+x]
}

func (p *zPyramid) blockMax(lvl, x, y int) float64 {
	w, h := p.width[lvl], p.height[lvl]
	x2 := x
	if x&1 != 0 {
		x2 = x - 1
	} else if x < w-1 {
		x2 = x + 1
	}
	y2 := y
	if y&1 != 0 {
		y2 = y - 1
	} else if y < h-1 {
		y2 = y + 1
	}
	m := p.at(lvl, x, y)
	if v := p.at(lvl, x2, y); v > m {
		m = v
	}
	if v := p.at(lvl, x2, y2); v > m {
		m = v
	}
	if v := p.at(lvl, x, y2); v > m {
		m = v
	}
	return m
}

// propagate refreshes levels 1..pyramidLevels-1 after a write to level 0 at
// (x,y), each level storing the max (farthest) depth of its 2x2 block in
// the level below it.
func (p *zPyramid) propagate(x, y int) {
	for lvl := 0; lvl < pyramidLevels-1; lvl++ {
		far := p.blockMax(lvl, x, y)
		x >>= 1
		y >>= 1
		p.buf[lvl+1][y*p.width[lvl+1]+x] = far
	}
}

// selectLevel picks the coarsest pyramid level whose tile (2^level pixels
// on a side) fits within the screen AABB [minX,minY]-[maxX,maxY], falling
// back to level 0 when none qualifies, per spec §4.4's level-selection
// function.
func (p *zPyramid) selectLevel(minX, minY, maxX, maxY int) int {
	d := maxX - minX
	if dy := maxY - minY; dy < d {
		d = dy
	}
	lvl := 0
	for l := pyramidLevels - 1; l >= 1; l-- {
		if 1<<uint(l) <= d && p.width[l] > 0 && p.height[l] > 0 {
			lvl = l
			break
		}
	}
	return lvl
}

// screenAABB computes the rounded integer bounding box of poly's vertices
// at level 0. Coordinates past the right/top edge are clamped to
// width-1/height-1; negative minimums are returned unclamped.
func screenAABB(poly *polygon, width, height int) (minX, minY, maxX, maxY int) {
	minX, minY = math.MaxInt32, math.MaxInt32
	maxX, maxY = 0, 0
	for i := 0; i < poly.Count; i++ {
		x, y := screenXY(poly.Verts[i], 0)
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}
	if minX >= width {
		minX = width - 1
	}
	if minY >= height {
		minY = height - 1
	}
	if maxX >= width {
		maxX = width - 1
	}
	if maxY >= height {
		maxY = height - 1
	}
	return
}

// probeTriangle answers "could poly possibly be visible" against the
// pyramid: it selects a coarse level, scan-converts poly's own edges at
// that level, and returns true the moment any covered pixel's depth is
// <= the stored pyramid depth there. This mutates no state. Used by
// strategy 2's per-triangle coherence/occlusion gate.
func (p *zPyramid) probeTriangle(poly *polygon) bool {
	minX, minY, maxX, maxY := screenAABB(poly, p.width[0], p.height[0])
	lvl := p.selectLevel(minX, minY, maxX, maxY)
	return p.probeAtLevel(poly, lvl, minX>>uint(lvl), minY>>uint(lvl), maxX>>uint(lvl))
}

func (p *zPyramid) probeAtLevel(poly *polygon, lvl, minXShift, minYShift, maxXShift int) bool {
	rows := make([][]edgeNode, p.height[lvl])
	buildEdgeTable(poly, uint(lvl), p.height[lvl], rows)

	pass := false
	scanConvert(minYShift, p.height[lvl]-1, maxXShift+1, rows, func(y int, L, R edgeNode, xStart, xEnd int) bool {
		Lv := interpEdgeVertex(poly, L)
		Rv := interpEdgeVertex(poly, R)
		denom := float64(xEnd - xStart)
		for x := xStart; x <= xEnd; x++ {
			if x < 0 || x >= p.width[lvl] || y < 0 || y >= p.height[lvl] {
				continue
			}
			s := 0.0
			if denom != 0 {
				s = float64(x-xStart) / denom
			}
			depth := Lv.Pos.Z*(1-s) + Rv.Pos.Z*s
			if depth <= p.at(lvl, x, y) {
				pass = true
				return true
			}
		}
		return false
	})
	return pass
}

// aabbFaceIndices lists the 6 quad faces (as 12 CCW-in-object-space
// triangles) of a unit cube, in the fixed winding order the original
// implementation uses for its conservative box test.
var aabbFaceIndices = [36]uint8{
	1, 0, 2, 2, 3, 1, // -Z
	4, 5, 7, 7, 6, 4, // +Z
	0, 1, 5, 5, 4, 0, // -Y
	6, 7, 3, 3, 2, 6, // +Y
	0, 4, 6, 6, 2, 0, // -X
	5, 1, 3, 3, 7, 5, // +X
}

// probeAABB answers the conservative node-level reject test of §4.4/§9: it
// projects the 8 corners of box by mvp, perspective-divides them, then for
// each of the 12 triangles of the box's surface (after per-face back-face
// cull, using <0 so a zero cross product counts as front-facing/visible —
// the documented conservative quirk) probes the pyramid exactly as
// probeTriangle does. Returns true the moment any face's probe passes.
func (p *zPyramid) probeAABB(box math3d.AABB, mvp math3d.Mat4) bool {
	corners := box.Corners()
	var proj [8]math3d.Vec4
	for i, c := range corners {
		v := mvp.MulVec4(math3d.V4FromV3(c, 1))
		if v.W == 0 {
			return true // degenerate projection: don't risk a false reject
		}
		rhw := 1 / v.W
		proj[i] = math3d.V4(v.X*rhw, v.Y*rhw, v.Z*rhw, rhw)
	}

	w, h := float64(p.width[0]), float64(p.height[0])
	toScreen := func(v math3d.Vec4) vertex {
		var out vertex
		out.Pos = math3d.V4((v.X+1)*0.5*w, (v.Y+1)*0.5*h, v.Z, v.W)
		return out
	}

	for f := 0; f < 6; f++ {
		i := f * 6
		v0 := proj[aabbFaceIndices[i]]
		v1 := proj[aabbFaceIndices[i+1]]
		v2 := proj[aabbFaceIndices[i+2]]
		e1 := math3d.V3(v1.X-v0.X, v1.Y-v0.Y, v1.Z-v0.Z)
		e2 := math3d.V3(v2.X-v0.X, v2.Y-v0.Y, v2.Z-v0.Z)
		cross := e1.Cross(e2)
		if cross.Z < 0 {
			continue // cull back face
		}

		for t := 0; t < 2; t++ {
			base := i + t*3
			var poly polygon
			poly.Count = 3
			poly.Verts[0] = toScreen(proj[aabbFaceIndices[base]])
			poly.Verts[1] = toScreen(proj[aabbFaceIndices[base+1]])
			poly.Verts[2] = toScreen(proj[aabbFaceIndices[base+2]])

			if p.probeTriangle(&poly) {
				return true
			}
		}
	}
	return false
}
