package render

import (
	"math"
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

func TestZPyramidClearResetsToInfinity(t *testing.T) {
	p := newZPyramid(16, 16)
	p.depthPasses(4, 4, 0.2)
	p.clear()
	for lvl := 0; lvl < pyramidLevels; lvl++ {
		for _, d := range p.buf[lvl] {
			if !math.IsInf(d, 1) {
				t.Fatalf("level %d not reset to +Inf after clear()", lvl)
			}
		}
	}
}

func TestDepthPassesRejectsTiesAndFartherDepths(t *testing.T) {
	p := newZPyramid(8, 8)
	if !p.depthPasses(2, 2, 0.5) {
		t.Fatalf("first write to an empty pyramid must pass")
	}
	if p.depthPasses(2, 2, 0.5) {
		t.Fatalf("a tie (depth == stored) must be rejected, not treated as a pass")
	}
	if p.depthPasses(2, 2, 0.6) {
		t.Fatalf("a farther depth must be rejected")
	}
	if !p.depthPasses(2, 2, 0.3) {
		t.Fatalf("a nearer depth must pass")
	}
}

func TestDepthPassesOutOfBoundsRejected(t *testing.T) {
	p := newZPyramid(8, 8)
	if p.depthPasses(-1, 0, 0.1) || p.depthPasses(0, 8, 0.1) {
		t.Fatalf("out-of-bounds coordinates must always be rejected")
	}
}

func TestPyramidPropagationStoresFarthestInCoarserLevels(t *testing.T) {
	p := newZPyramid(4, 4)
	p.depthPasses(0, 0, 0.9)
	p.depthPasses(1, 0, 0.1)
	p.depthPasses(0, 1, 0.1)
	p.depthPasses(1, 1, 0.1)

	// Level 1 covers this whole 2x2 block; it must record the farthest
	// (max) of the four writes, not the nearest.
	if got := p.at(1, 0, 0); got != 0.9 {
		t.Fatalf("level 1 block max = %v, want 0.9 (the farthest write)", got)
	}
}

func TestProbeTriangleSeesUnoccludedGeometry(t *testing.T) {
	p := newZPyramid(16, 16)
	poly := polygon{Count: 3}
	poly.Verts[0] = vertex{Pos: math3d.V4(2, 2, 0.2, 1)}
	poly.Verts[1] = vertex{Pos: math3d.V4(10, 2, 0.2, 1)}
	poly.Verts[2] = vertex{Pos: math3d.V4(6, 10, 0.2, 1)}

	if !p.probeTriangle(&poly) {
		t.Fatalf("an empty pyramid must report every triangle as possibly visible")
	}
}

func TestProbeTriangleRejectsWhenFullyOccluded(t *testing.T) {
	p := newZPyramid(16, 16)
	// Fill the whole working buffer with very near depth so nothing
	// farther can possibly pass the probe.
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			p.depthPasses(x, y, 0.01)
		}
	}
	poly := polygon{Count: 3}
	poly.Verts[0] = vertex{Pos: math3d.V4(2, 2, 0.5, 1)}
	poly.Verts[1] = vertex{Pos: math3d.V4(10, 2, 0.5, 1)}
	poly.Verts[2] = vertex{Pos: math3d.V4(6, 10, 0.5, 1)}

	if p.probeTriangle(&poly) {
		t.Fatalf("a triangle entirely farther than an occluding surface must be rejected by the probe")
	}
}

