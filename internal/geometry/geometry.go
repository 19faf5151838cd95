// Package geometry holds the coordinate and transform math shared by the
// editor and the renderer.
package geometry

import "math"

const (
	MinZoom = 0.25
	MaxZoom = 2.0

	// FitMargin is the fixed margin used when fitting the canvas to a view.
	FitMargin = 40
)

// Snap rounds v to the nearest multiple of grid. A non-positive grid returns
// v unchanged.
func Snap(v float64, grid int) float64 {
	if grid <= 0 {
		return v
	}
	g := float64(grid)
	return math.Round(v/g) * g
}

// SnapPoint snaps both axes to the grid.
func SnapPoint(x, y float64, grid int) (float64, float64) {
	return Snap(x, grid), Snap(y, grid)
}

// ClampSize enforces the minimum element size on both dimensions.
func ClampSize(w, h, min int) (int, int) {
	if w < min {
		w = min
	}
	if h < min {
		h = min
	}
	return w, h
}

// ScaleSize multiplies a stored size by a transform-reported scale factor and
// rounds to whole pixels. The caller is expected to reset the live scale to 1
// after absorbing it here.
func ScaleSize(w, h int, scaleX, scaleY float64) (int, int) {
	return int(math.Round(float64(w) * scaleX)), int(math.Round(float64(h) * scaleY))
}

// SnapRotation normalizes an angle to the nearest 45-degree step in [0,315].
func SnapRotation(deg float64) float64 {
	snapped := math.Round(deg/45) * 45
	snapped = math.Mod(snapped, 360)
	if snapped < 0 {
		snapped += 360
	}
	return snapped
}

// ClampZoom keeps a stage zoom factor within the editor's allowed range.
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// FitToView computes the zoom that fits a canvas inside a visible container
// with FitMargin on each side, never exceeding 1.
func FitToView(canvasW, canvasH, viewW, viewH int) float64 {
	if canvasW <= 0 || canvasH <= 0 {
		return 1
	}
	availW := float64(viewW - 2*FitMargin)
	availH := float64(viewH - 2*FitMargin)
	if availW <= 0 || availH <= 0 {
		return MinZoom
	}
	scale := math.Min(availW/float64(canvasW), availH/float64(canvasH))
	if scale > 1 {
		scale = 1
	}
	return ClampZoom(scale)
}

// FitToContainer computes the frontend render scale: scale to the container
// width first (capped at 1), then re-derive from the height cap if the scaled
// height would exceed it. Width-first-then-height-cap, never the reverse.
func FitToContainer(canvasW, canvasH, containerW, maxH int) float64 {
	if canvasW <= 0 || canvasH <= 0 || containerW <= 0 {
		return 1
	}
	scale := float64(containerW) / float64(canvasW)
	if scale > 1 {
		scale = 1
	}
	if maxH > 0 && float64(canvasH)*scale > float64(maxH) {
		scale = float64(maxH) / float64(canvasH)
	}
	return scale
}
