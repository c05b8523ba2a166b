package render

import (
	"math"
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

func unitTriangleMesh() MeshData {
	return MeshData{
		Positions: []math3d.Vec3{
			math3d.V3(-0.5, -0.5, 0),
			math3d.V3(0.5, -0.5, 0),
			math3d.V3(0, 0.5, 0),
		},
		Indices: []uint32{0, 1, 2},
		Colors: []math3d.Vec3{
			math3d.V3(1, 0, 0),
			math3d.V3(0, 1, 0),
			math3d.V3(0, 0, 1),
		},
	}
}

func frontCamera(width, height int) (view, proj math3d.Mat4) {
	view = math3d.LookAt(math3d.V3(0, 0, 3), math3d.V3(0, 0, 0), math3d.V3(0, 1, 0))
	proj = math3d.Perspective(math.Pi/3, float64(width)/float64(height), 0.1, 100)
	return
}

func newTestRenderer(t *testing.T, strategy Strategy, w, h int, mesh MeshData) *Renderer {
	t.Helper()
	r := NewRenderer(strategy)
	r.SetRenderSize(w, h)
	r.SetVertexData(mesh)
	r.SetModel(math3d.Identity())
	view, proj := frontCamera(w, h)
	r.SetView(view)
	r.SetProjective(proj)
	r.SetLight(DefaultLight())
	return r
}

func countNonBackgroundPixels(pixels []Color, bg Color) int {
	n := 0
	for _, c := range pixels {
		if c != bg {
			n++
		}
	}
	return n
}

func TestRendererEmptyMeshProducesBlankFrame(t *testing.T) {
	for _, strat := range []Strategy{StrategyBaseline, StrategyHierSimple, StrategyHierOctree} {
		r := newTestRenderer(t, strat, 32, 32, MeshData{})
		r.Render()
		pixels := r.GetColorOutput()
		if n := countNonBackgroundPixels(pixels, Color{}); n != 0 {
			t.Errorf("strategy %v: empty mesh painted %d pixels, want 0", strat, n)
		}
	}
}

func TestRendererSingleTriangleVisibleOnAllStrategies(t *testing.T) {
	mesh := unitTriangleMesh()
	for _, strat := range []Strategy{StrategyBaseline, StrategyHierSimple, StrategyHierOctree} {
		r := newTestRenderer(t, strat, 64, 64, mesh)
		r.Render()
		pixels := r.GetColorOutput()
		if n := countNonBackgroundPixels(pixels, Color{}); n == 0 {
			t.Errorf("strategy %v: triangle painted no pixels", strat)
		}
	}
}

// TestRendererDepthOrdering checks that of two overlapping triangles at
// different depths, the nearer one's color wins at the overlap, for every
// strategy.
func TestRendererDepthOrdering(t *testing.T) {
	near := math3d.V3(1, 0, 0)
	far := math3d.V3(0, 0, 1)
	mesh := MeshData{
		Positions: []math3d.Vec3{
			// far triangle first, spanning the full view
			math3d.V3(-1, -1, -0.5), math3d.V3(1, -1, -0.5), math3d.V3(0, 1, -0.5),
			// near triangle drawn second, smaller, centered
			math3d.V3(-0.3, -0.3, 0.5), math3d.V3(0.3, -0.3, 0.5), math3d.V3(0, 0.3, 0.5),
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
		Colors:  []math3d.Vec3{far, far, far, near, near, near},
	}

	for _, strat := range []Strategy{StrategyBaseline, StrategyHierSimple, StrategyHierOctree} {
		r := newTestRenderer(t, strat, 64, 64, mesh)
		r.Render()
		center := r.GetColorOutput()[32*64+32]
		if center.R < 100 || center.G > 50 {
			t.Errorf("strategy %v: center pixel %v doesn't look like the near (red) triangle", strat, center)
		}
	}
}

func TestRendererBackfaceCulled(t *testing.T) {
	// Reverse winding relative to unitTriangleMesh: this should be
	// culled and paint nothing.
	mesh := unitTriangleMesh()
	mesh.Indices = []uint32{0, 2, 1}

	r := newTestRenderer(t, StrategyBaseline, 32, 32, mesh)
	r.Render()
	if n := countNonBackgroundPixels(r.GetColorOutput(), Color{}); n != 0 {
		t.Errorf("back-facing triangle painted %d pixels, want 0", n)
	}
}

func TestRendererNearPlaneRejectsBehindCamera(t *testing.T) {
	mesh := unitTriangleMesh()
	// Push the whole triangle behind the camera via the model transform.
	r := NewRenderer(StrategyBaseline)
	r.SetRenderSize(32, 32)
	r.SetVertexData(mesh)
	r.SetModel(math3d.Translate(math3d.V3(0, 0, -10)))
	view, proj := frontCamera(32, 32)
	r.SetView(view)
	r.SetProjective(proj)
	r.SetLight(DefaultLight())
	r.Render()
	if n := countNonBackgroundPixels(r.GetColorOutput(), Color{}); n != 0 {
		t.Errorf("triangle behind camera painted %d pixels, want 0", n)
	}
}

func TestRendererResizeRebuildsState(t *testing.T) {
	r := newTestRenderer(t, StrategyHierOctree, 16, 16, unitTriangleMesh())
	r.Render()
	r.SetRenderSize(40, 20)
	if r.Width() != 40 || r.Height() != 20 {
		t.Fatalf("Width/Height = %d/%d, want 40/20", r.Width(), r.Height())
	}
	r.Render() // must not panic against the resized buffers
}
