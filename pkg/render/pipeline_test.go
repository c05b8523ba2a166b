package render

import (
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

func clipSpaceVert(x, y, z, w float64) vertex {
	return vertex{Pos: math3d.V4(x, y, z, w)}
}

func TestSutherlandHodgmanFullyInsideTriangleUnchanged(t *testing.T) {
	v := [3]vertex{
		clipSpaceVert(-0.5, -0.5, 0, 1),
		clipSpaceVert(0.5, -0.5, 0, 1),
		clipSpaceVert(0, 0.5, 0, 1),
	}
	var poly polygon
	sutherlandHodgman(v, &poly)
	if poly.Count != 3 {
		t.Fatalf("Count = %d, want 3 for a fully inside triangle", poly.Count)
	}
}

func TestSutherlandHodgmanFullyOutsideTriangleRejected(t *testing.T) {
	v := [3]vertex{
		clipSpaceVert(2, 2, 0, 1),
		clipSpaceVert(3, 2, 0, 1),
		clipSpaceVert(2, 3, 0, 1),
	}
	var poly polygon
	sutherlandHodgman(v, &poly)
	if poly.Count != 0 {
		t.Fatalf("Count = %d, want 0 for a triangle entirely outside NDC", poly.Count)
	}
}

func TestSutherlandHodgmanPartialOverlapProducesMoreVertices(t *testing.T) {
	// A triangle with one vertex beyond the x=1 plane must be clipped into
	// a polygon with more than 3 vertices (a quad, here).
	v := [3]vertex{
		clipSpaceVert(0, -0.5, 0, 1),
		clipSpaceVert(2, -0.5, 0, 1),
		clipSpaceVert(0, 0.5, 0, 1),
	}
	var poly polygon
	sutherlandHodgman(v, &poly)
	if poly.Count != 4 {
		t.Fatalf("Count = %d, want 4 after clipping a straddling triangle", poly.Count)
	}
	for i := 0; i < poly.Count; i++ {
		if poly.Verts[i].Pos.X > 1.0001 {
			t.Errorf("clipped vertex %d has X=%v, should not exceed the x=1 plane", i, poly.Verts[i].Pos.X)
		}
	}
}

func TestBackfaceCulledDetectsClockwiseWinding(t *testing.T) {
	ccw := [3]vertex{
		clipSpaceVert(-0.5, -0.5, 0, 1),
		clipSpaceVert(0.5, -0.5, 0, 1),
		clipSpaceVert(0, 0.5, 0, 1),
	}
	if backfaceCulled(ccw) {
		t.Errorf("counter-clockwise triangle reported as back-facing")
	}

	cw := [3]vertex{ccw[0], ccw[2], ccw[1]}
	if !backfaceCulled(cw) {
		t.Errorf("clockwise triangle not reported as back-facing")
	}
}

func TestVertexShaderRejectsBehindCameraVertex(t *testing.T) {
	mesh := &MeshData{
		Positions: []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		Indices:   []uint32{0, 1, 2},
	}
	ps := &pipelineState{
		mesh:   mesh,
		model:  math3d.Identity(),
		mvp:    math3d.Perspective(1, 1, 0.1, 100).Mul(math3d.Translate(math3d.V3(0, 0, 10))), // moves the triangle behind the eye, so W = -z is negative
		width:  64,
		height: 64,
	}
	var out [3]vertex
	if ps.vertexShader(0, &out) {
		t.Fatalf("expected vertexShader to reject a triangle with a vertex behind the camera (W<=0)")
	}
}

func TestRunPreRasterizationMapsToViewportWithoutYFlip(t *testing.T) {
	mesh := &MeshData{
		Positions: []math3d.Vec3{math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(0, 1, 0)},
		Indices:   []uint32{0, 1, 2},
	}
	ps := &pipelineState{
		mesh:   mesh,
		model:  math3d.Identity(),
		mvp:    math3d.Identity(), // already in NDC
		width:  100,
		height: 200,
	}
	polys := make([]polygon, 1)
	ps.runPreRasterization(polys, false)
	if polys[0].Count == 0 {
		t.Fatalf("expected a surviving polygon")
	}
	// NDC (0,1) should map to (50, 200), not (50, 0): no Y-flip.
	for i := 0; i < polys[0].Count; i++ {
		v := polys[0].Verts[i]
		if v.Pos.Y < -0.001 || v.Pos.Y > 200.001 {
			t.Errorf("vertex %d Y=%v out of expected [0,200] viewport range", i, v.Pos.Y)
		}
	}
	if apex := polys[0].Verts[2].Pos; apex.X < 49.999 || apex.X > 50.001 || apex.Y < 199.999 || apex.Y > 200.001 {
		t.Errorf("apex NDC (0,1) mapped to (%v, %v), want (50, 200)", apex.X, apex.Y)
	}
}
