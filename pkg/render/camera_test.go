package render

import (
	"math"
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

func TestWorldToScreenNoYFlip(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math3d.V3(0, 0, 5))
	c.LookAt(math3d.V3(0, 0, 0))
	c.SetClipPlanes(0.1, 100)
	c.SetFOV(math.Pi / 2)
	c.SetAspectRatio(1)

	// A point above the look-at target (positive world Y, positive NDC Y)
	// must map to a screen Y greater than the point at the target itself —
	// i.e. no flip. (Screen Y is not a "row index growing downward"
	// convention here, matching pipeline.go's own unflipped viewport map.)
	_, yCenter, _, visCenter := c.WorldToScreen(math3d.V3(0, 0, 0), 100, 100)
	_, yUp, _, visUp := c.WorldToScreen(math3d.V3(0, 1, 0), 100, 100)
	if !visCenter || !visUp {
		t.Fatalf("expected both points visible, got center=%v up=%v", visCenter, visUp)
	}
	if yUp <= yCenter {
		t.Errorf("screen Y for a world point above the target (%v) should exceed the target's (%v) under a no-flip viewport map", yUp, yCenter)
	}
}

func TestWorldToScreenRejectsBehindCamera(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math3d.V3(0, 0, 5))
	c.LookAt(math3d.V3(0, 0, 0))

	_, _, _, visible := c.WorldToScreen(math3d.V3(0, 0, 10), 100, 100)
	if visible {
		t.Errorf("a point behind the camera must not be reported visible")
	}
}

func TestOrbitCameraStepProducesValidLookAtEachFrame(t *testing.T) {
	o := NewOrbitCamera(math3d.V3(0, 0, 0), 5, math.Pi/4, 60)
	for i := 0; i < 30; i++ {
		view := o.Step()
		// A look-at view matrix must be invertible (non-degenerate).
		if view.Determinant() == 0 {
			t.Fatalf("frame %d: orbit view matrix is singular", i)
		}
	}
}

func TestOrbitCameraVelocityRampsRatherThanSnaps(t *testing.T) {
	o := NewOrbitCamera(math3d.V3(0, 0, 0), 5, math.Pi/4, 60)
	first := o.Step()
	if o.yawVel <= 0 || o.yawVel >= o.yawTargetRate {
		t.Errorf("yaw velocity after one step = %v, want strictly between 0 and the target rate %v", o.yawVel, o.yawTargetRate)
	}
	second := o.Step()
	if first == second {
		t.Errorf("two consecutive orbit steps produced an identical view matrix; camera isn't moving")
	}
}
