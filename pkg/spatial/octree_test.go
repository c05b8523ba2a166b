package spatial

import (
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

func unitBox(x, y, z float64) math3d.AABB {
	return math3d.NewAABB(math3d.V3(x-0.05, y-0.05, z-0.05), math3d.V3(x+0.05, y+0.05, z+0.05))
}

func TestOctreeRoundTripSingleEntry(t *testing.T) {
	tree := New(4, 6)
	root := math3d.NewEmptyAABB().Union(unitBox(0, 0, 0))
	tree.Reset(root)
	tree.Add([]math3d.AABB{unitBox(0, 0, 0)}, []uint32{7})

	if got := tree.LeafDatNum(tree.Root()); got != 1 {
		t.Fatalf("LeafDatNum(root) = %d, want 1", got)
	}
	if !tree.IsLeaf(tree.Root()) {
		t.Fatalf("single-entry tree root should still be a leaf")
	}
	dats := tree.LeafDats(tree.Root())
	if len(dats) != 1 || dats[0].Idx != 7 {
		t.Fatalf("leaf data = %+v, want one entry with Idx 7", dats)
	}
}

func TestOctreeSplitsPastCapacity(t *testing.T) {
	const capacity = 4
	tree := New(capacity, 6)

	var boxes []math3d.AABB
	var ids []uint32
	root := math3d.NewEmptyAABB()
	// Scatter points across all 8 octants so the split distributes
	// entries instead of funnelling them all into one child.
	for i, sign := range [8][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {-1, 1, 1}, {1, 1, 1},
	} {
		b := unitBox(sign[0], sign[1], sign[2])
		boxes = append(boxes, b)
		ids = append(ids, uint32(i))
		root = root.Union(b)
	}
	tree.Reset(root)
	tree.Add(boxes, ids)

	if got := tree.LeafDatNum(tree.Root()); got != len(ids) {
		t.Fatalf("LeafDatNum(root) = %d, want %d", got, len(ids))
	}
	if tree.IsLeaf(tree.Root()) {
		t.Fatalf("root should have split after exceeding capacity %d with %d entries", capacity, len(ids))
	}

	// Every stored index must be reachable somewhere in the subtree.
	seen := make(map[uint32]bool)
	var walk func(n int32)
	walk = func(n int32) {
		if tree.IsLeaf(n) {
			for _, ld := range tree.LeafDats(n) {
				seen[ld.Idx] = true
			}
			return
		}
		for _, ch := range tree.Children(n) {
			walk(ch)
		}
	}
	walk(tree.Root())
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("index %d missing from tree after split", id)
		}
	}
}

func TestOctreeResetDiscardsPreviousEntries(t *testing.T) {
	tree := New(4, 6)
	root := math3d.NewEmptyAABB().Union(unitBox(0, 0, 0))
	tree.Reset(root)
	tree.Add([]math3d.AABB{unitBox(0, 0, 0)}, []uint32{1})

	tree.Reset(root)
	if got := tree.LeafDatNum(tree.Root()); got != 0 {
		t.Fatalf("LeafDatNum(root) after Reset = %d, want 0", got)
	}
}

func TestOctreeLooseAABBGrowsWithInsertions(t *testing.T) {
	tree := New(64, 6)
	a := unitBox(0, 0, 0)
	b := unitBox(5, 0, 0)
	root := math3d.NewEmptyAABB().Union(a).Union(b)
	tree.Reset(root)
	tree.Add([]math3d.AABB{a, b}, []uint32{0, 1})

	loose := tree.LooseAABB(tree.Root())
	if !loose.Contains(a) || !loose.Contains(b) {
		t.Fatalf("root loose AABB %+v doesn't contain both inserted boxes", loose)
	}
}
