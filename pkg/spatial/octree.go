// Package spatial implements the loose octree (C5) used by the
// octree-accelerated hierarchical Z-buffer rasterizer to prune whole
// subtrees of triangles against the Z-pyramid before touching individual
// triangles.
package spatial

import "github.com/taigrr/trophy/pkg/math3d"

// LeafData is one bounded entry stored at a leaf: an AABB plus the index
// of whatever it refers to (a triangle index, in the renderer's usage).
type LeafData struct {
	AABB math3d.AABB
	Idx  uint32
}

// node is a leaf or internal node. The original implementation unions a
// leaf's per-entry vector and an internal node's 8 children pointers in a
// C union tagged by isLeaf; Go has no equivalent, so both fields live on
// the struct and isLeaf says which is meaningful.
type node struct {
	isLeaf    bool
	aabb      math3d.AABB
	looseAABB math3d.AABB
	children  [8]int32
	leafDats  []LeafData
}

const noParent int32 = -1

// Octree is a loose octree addressed by arena index rather than pointer —
// nodes live in a single growable slice, so splitting a leaf mutates it
// into an internal node in place instead of allocating a replacement and
// rewriting a parent's child pointer.
type Octree struct {
	nodes     []node
	root      int32
	cap       int
	maxHeight int
}

// New creates an empty octree whose leaves split once they hold more than
// capacity entries, down to maxHeight levels.
func New(capacity, maxHeight int) *Octree {
	o := &Octree{cap: capacity, maxHeight: maxHeight}
	o.nodes = []node{{isLeaf: true}}
	o.root = 0
	return o
}

// Root returns the root node index.
func (o *Octree) Root() int32 { return o.root }

// IsLeaf reports whether n is a leaf node.
func (o *Octree) IsLeaf(n int32) bool { return o.nodes[n].isLeaf }

// AABB returns n's octant box: the bounds given to Reset for the root,
// otherwise the octant assigned by its parent's split, grown by the entry
// routed into it during that split.
func (o *Octree) AABB(n int32) math3d.AABB { return o.nodes[n].aabb }

// LooseAABB returns n's loose bounding box: the union of every descendant
// entry's AABB, used by the renderer's node-level reject test.
func (o *Octree) LooseAABB(n int32) math3d.AABB { return o.nodes[n].looseAABB }

// Children returns n's 8 child indices. Only meaningful when !IsLeaf(n).
func (o *Octree) Children(n int32) [8]int32 { return o.nodes[n].children }

// LeafDats returns n's stored entries. Only meaningful when IsLeaf(n).
func (o *Octree) LeafDats(n int32) []LeafData { return o.nodes[n].leafDats }

// Reset discards the whole tree and starts a fresh single-leaf root
// bounded by rootAABB.
func (o *Octree) Reset(rootAABB math3d.AABB) {
	o.nodes = o.nodes[:0]
	o.nodes = append(o.nodes, node{isLeaf: true, aabb: rootAABB, looseAABB: rootAABB})
	o.root = 0
}

// LeafDatNum counts every LeafData entry in n's subtree (n inclusive).
func (o *Octree) LeafDatNum(n int32) int {
	num := 0
	stack := []int32{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &o.nodes[top]
		if nd.isLeaf {
			num += len(nd.leafDats)
		} else {
			stack = append(stack, nd.children[:]...)
		}
	}
	return num
}

// chooseChild returns the child whose tight AABB has the largest
// intersection volume with box — ties keep the lowest index, matching a
// strict "<" replacement scan.
func chooseChild(nodes []node, children [8]int32, box math3d.AABB) uint8 {
	maxVol := -1.0
	maxIdx := uint8(0)
	for ch := uint8(0); ch < 8; ch++ {
		if vol := nodes[children[ch]].aabb.IntersectionVolume(box); vol > maxVol {
			maxVol = vol
			maxIdx = ch
		}
	}
	return maxIdx
}

// searchWhileUnion descends from the root toward a leaf, picking the
// child whose AABB best fits box at each step and unioning box into every
// non-root node's looseAABB along the way — by the time a leaf is
// reached, every ancestor already accounts for the incoming entry.
func (o *Octree) searchWhileUnion(box math3d.AABB) (nodeIdx int32, h int) {
	nodeIdx = o.root
	h = 0
	for {
		if nodeIdx != o.root {
			o.nodes[nodeIdx].looseAABB = o.nodes[nodeIdx].looseAABB.Union(box)
		}
		nd := &o.nodes[nodeIdx]
		if nd.isLeaf {
			return nodeIdx, h
		}
		ch := chooseChild(o.nodes, nd.children, box)
		nodeIdx = nd.children[ch]
		h++
	}
}

// Add inserts len(indices) entries, one per aabbs[i]/indices[i] pair,
// splitting any leaf that overflows capacity before maxHeight is reached.
//
// A split leaf mutates into an internal node in place. Entries
// redistributed from the old leaf are unioned into their chosen child's
// looseAABB; the just-inserted entry is unioned into both the aabb and the
// looseAABB of the child it is routed to before the capacity check repeats
// there. Every node's looseAABB therefore contains the AABB of every entry
// stored beneath it once Add returns.
func (o *Octree) Add(aabbs []math3d.AABB, indices []uint32) {
	for i := range indices {
		box := aabbs[i]
		nodeIdx, h := o.searchWhileUnion(box)

		for {
			nd := &o.nodes[nodeIdx]
			if len(nd.leafDats) < o.cap || h >= o.maxHeight {
				nd.leafDats = append(nd.leafDats, LeafData{AABB: box, Idx: indices[i]})
				break
			}

			mid := nd.aabb.Center()
			parAABB := nd.aabb
			var children [8]int32
			for ch := uint8(0); ch < 8; ch++ {
				childAABB := parAABB.Octant(mid, ch)
				children[ch] = int32(len(o.nodes))
				o.nodes = append(o.nodes, node{isLeaf: true, aabb: childAABB, looseAABB: childAABB})
			}

			oldLeafDats := o.nodes[nodeIdx].leafDats
			for _, ld := range oldLeafDats {
				ch := chooseChild(o.nodes, children, ld.AABB)
				o.nodes[children[ch]].looseAABB = o.nodes[children[ch]].looseAABB.Union(ld.AABB)
				o.nodes[children[ch]].leafDats = append(o.nodes[children[ch]].leafDats, ld)
			}

			loose := o.nodes[nodeIdx].looseAABB
			o.nodes[nodeIdx] = node{isLeaf: false, aabb: parAABB, looseAABB: loose, children: children}

			ch := chooseChild(o.nodes, children, box)
			o.nodes[children[ch]].aabb = o.nodes[children[ch]].aabb.Union(box)
			o.nodes[children[ch]].looseAABB = o.nodes[children[ch]].looseAABB.Union(box)
			nodeIdx = children[ch]
			h++
		}
	}
}
