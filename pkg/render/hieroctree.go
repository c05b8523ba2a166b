package render

import (
	"github.com/taigrr/trophy/pkg/math3d"
	"github.com/taigrr/trophy/pkg/spatial"
)

// octreeStrategy is C7 variant (3): groups triangles into a loose octree
// (C5) over world-space AABBs and rejects whole subtrees against the
// Z-pyramid before touching individual triangles. A coherence cache (C6)
// of last frame's active leaves is processed first, same rationale as
// simpleStrategy.
type octreeStrategy struct {
	tree         *spatial.Octree
	activeLeaves map[int32]struct{}
}

const (
	octreeCapacity  = 512
	octreeMaxHeight = 10
)

func newOctreeStrategy() *octreeStrategy {
	return &octreeStrategy{
		tree:         spatial.New(octreeCapacity, octreeMaxHeight),
		activeLeaves: make(map[int32]struct{}),
	}
}

// rebuild recomputes per-triangle world-space AABBs from the bound mesh
// and model matrix and rebuilds the octree from scratch. Called whenever
// SetVertexData or SetModel invalidates the previous geometry.
func (o *octreeStrategy) rebuild(mesh *MeshData, model math3d.Mat4) {
	triCount := mesh.TriangleCount()
	aabbs := make([]math3d.AABB, triCount)
	ids := make([]uint32, triCount)
	root := math3d.NewEmptyAABB()

	for t := 0; t < triCount; t++ {
		box := math3d.NewEmptyAABB()
		for k := 0; k < 3; k++ {
			idx := mesh.Indices[t*3+k]
			p := model.MulVec3(mesh.Positions[idx])
			box = box.ExpandPoint(p)
		}
		aabbs[t] = box
		ids[t] = uint32(t)
		root = root.Union(box)
	}

	o.tree.Reset(root)
	if triCount > 0 {
		o.tree.Add(aabbs, ids)
	}
	o.activeLeaves = make(map[int32]struct{})
}

func (o *octreeStrategy) rasterizeLeaf(leaf int32, polys []polygon, mesh *MeshData, light Light, py *zPyramid, fb *Framebuffer) {
	for _, ld := range o.tree.LeafDats(leaf) {
		t := int(ld.Idx)
		if t >= len(polys) || polys[t].Count == 0 {
			continue
		}
		fillPolygon(&polys[t], mesh, light, py, fb)
	}
}

func (o *octreeStrategy) render(polys []polygon, mesh *MeshData, light Light, py *zPyramid, fb *Framebuffer, mvp math3d.Mat4) {
	prev := o.activeLeaves
	fresh := make(map[int32]struct{}, len(prev))
	visited := make(map[int32]struct{}, len(prev))

	for leaf := range prev {
		visited[leaf] = struct{}{}
		if !py.probeAABB(o.tree.LooseAABB(leaf), mvp) {
			continue
		}
		o.rasterizeLeaf(leaf, polys, mesh, light, py, fb)
		fresh[leaf] = struct{}{}
	}

	stack := []int32{o.tree.Root()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := visited[n]; done {
			continue
		}

		if !py.probeAABB(o.tree.LooseAABB(n), mvp) {
			continue
		}

		if o.tree.IsLeaf(n) {
			o.rasterizeLeaf(n, polys, mesh, light, py, fb)
			fresh[n] = struct{}{}
			continue
		}
		children := o.tree.Children(n)
		stack = append(stack, children[:]...)
	}

	o.activeLeaves = fresh
}
