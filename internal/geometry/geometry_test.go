package geometry_test

import (
	"testing"

	"github.com/okateru/plango/internal/geometry"
)

func TestSnap(t *testing.T) {
	cases := []struct {
		v    float64
		grid int
		want float64
	}{
		{53, 20, 60},
		{47, 20, 40},
		{50, 20, 60}, // round half away from zero
		{0, 20, 0},
		{-13, 20, -20},
		{37, 0, 37}, // no grid, pass through
		{37, -5, 37},
	}
	for _, c := range cases {
		if got := geometry.Snap(c.v, c.grid); got != c.want {
			t.Errorf("Snap(%v, %d) = %v, want %v", c.v, c.grid, got, c.want)
		}
	}
}

func TestScaleSizeRounds(t *testing.T) {
	w, h := geometry.ScaleSize(60, 60, 2.0, 1.5)
	if w != 120 || h != 90 {
		t.Errorf("ScaleSize(60,60,2.0,1.5) = %dx%d, want 120x90", w, h)
	}

	w, h = geometry.ScaleSize(55, 55, 1.01, 0.99)
	if w != 56 || h != 54 {
		t.Errorf("ScaleSize(55,55,1.01,0.99) = %dx%d, want 56x54", w, h)
	}
}

func TestClampSize(t *testing.T) {
	w, h := geometry.ClampSize(5, 100, 20)
	if w != 20 || h != 100 {
		t.Errorf("ClampSize(5,100,20) = %dx%d, want 20x100", w, h)
	}
}

func TestSnapRotation(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{44, 45},
		{22, 0},
		{23, 45},
		{359, 0},
		{-45, 315},
		{360, 0},
		{200, 180},
	}
	for _, c := range cases {
		if got := geometry.SnapRotation(c.in); got != c.want {
			t.Errorf("SnapRotation(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClampZoom(t *testing.T) {
	if got := geometry.ClampZoom(0.1); got != geometry.MinZoom {
		t.Errorf("zoom below range should clamp to %v, got %v", geometry.MinZoom, got)
	}
	if got := geometry.ClampZoom(3); got != geometry.MaxZoom {
		t.Errorf("zoom above range should clamp to %v, got %v", geometry.MaxZoom, got)
	}
	if got := geometry.ClampZoom(1.5); got != 1.5 {
		t.Errorf("in-range zoom should pass through, got %v", got)
	}
}

func TestFitToContainerScalesWidthFirst(t *testing.T) {
	// 1200-wide canvas in a 600-wide container: width scale 0.5, height
	// 800*0.5=400 fits under the 600 cap.
	if got := geometry.FitToContainer(1200, 800, 600, 600); got != 0.5 {
		t.Errorf("width-limited fit = %v, want 0.5", got)
	}

	// Same canvas with a 300 height cap: the width scale would give height
	// 400, so the scale is re-derived from the cap.
	if got := geometry.FitToContainer(1200, 800, 600, 300); got != 300.0/800.0 {
		t.Errorf("height-capped fit = %v, want %v", got, 300.0/800.0)
	}

	// A container wider than the canvas never upscales.
	if got := geometry.FitToContainer(1200, 800, 2400, 0); got != 1 {
		t.Errorf("oversized container should cap at 1, got %v", got)
	}
}

func TestFitToViewRespectsMargin(t *testing.T) {
	// 1000x1000 view with 40px margins leaves 920 on each axis for a
	// 1840x920 canvas: limited by width at 0.5.
	if got := geometry.FitToView(1840, 920, 1000, 1000); got != 0.5 {
		t.Errorf("FitToView = %v, want 0.5", got)
	}
	// A canvas smaller than the view stays at 1:1.
	if got := geometry.FitToView(100, 100, 1000, 1000); got != 1 {
		t.Errorf("small canvas should not upscale, got %v", got)
	}
}
