package render_test

import (
	"testing"

	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/render"
)

func testPlan() *domain.FloorPlan {
	return &domain.FloorPlan{
		ID:     "plan-1",
		Title:  "Main Floor",
		Canvas: domain.Canvas{Width: 1200, Height: 800, Grid: true, GridSize: 20},
		Sections: []domain.Section{
			{ID: "sec-1", Name: "VIP", Color: "#ff0000", DefaultPrice: 150},
		},
		Elements: []domain.Element{
			{
				ID: "table-1", Type: domain.TypeTable, Number: 1,
				X: 100, Y: 100, Width: 60, Height: 60,
				Shape: domain.ShapeRound, Seats: 4, Capacity: 4, Bookable: true,
			},
			{
				ID: "stage-1", Type: domain.TypeStage,
				X: 500, Y: 0, Width: 200, Height: 100,
				Shape: domain.ShapeRectangle,
			},
		},
	}
}

func findShape(t *testing.T, scene *render.Scene, id string) *render.SceneShape {
	t.Helper()
	for i := range scene.Shapes {
		if scene.Shapes[i].ElementID == id {
			return &scene.Shapes[i]
		}
	}
	t.Fatalf("shape %q not in scene", id)
	return nil
}

func TestBuildSceneScalesToContainer(t *testing.T) {
	scene := render.BuildScene(testPlan(), render.Options{ContainerWidth: 600, MaxHeight: 600})

	if scene.Scale != 0.5 {
		t.Fatalf("1200-wide canvas in a 600 container should scale 0.5, got %v", scene.Scale)
	}
	if scene.Width != 600 || scene.Height != 400 {
		t.Errorf("scaled scene should be 600x400, got %dx%d", scene.Width, scene.Height)
	}
}

func TestBuildSceneHeightCapOverridesWidthFit(t *testing.T) {
	scene := render.BuildScene(testPlan(), render.Options{ContainerWidth: 600, MaxHeight: 300})

	if scene.Scale != 300.0/800.0 {
		t.Fatalf("height cap should re-derive the scale, got %v", scene.Scale)
	}
}

func TestShapeKinds(t *testing.T) {
	scene := render.BuildScene(testPlan(), render.Options{ContainerWidth: 1200})

	if findShape(t, scene, "table-1").Kind != render.KindCircle {
		t.Error("a round table should render as a circle")
	}
	if findShape(t, scene, "stage-1").Kind != render.KindRect {
		t.Error("a rectangular stage should render as a rect")
	}
}

func TestOnlyBookableShapesCarryIndicators(t *testing.T) {
	scene := render.BuildScene(testPlan(), render.Options{ContainerWidth: 1200})

	table := findShape(t, scene, "table-1")
	if table.Indicator == nil {
		t.Fatal("bookable table should carry a status indicator")
	}
	if table.Indicator.Color != "#2ecc71" {
		t.Errorf("default indicator should be green, got %q", table.Indicator.Color)
	}
	if findShape(t, scene, "stage-1").Indicator != nil {
		t.Error("non-bookable stage must not carry an indicator")
	}
}

func TestTooltipLineOrder(t *testing.T) {
	scene := render.BuildScene(testPlan(), render.Options{ContainerWidth: 1200})

	lines := findShape(t, scene, "table-1").Tooltip.Lines
	want := []string{"Table #1", "Capacity: 4", "Available"}
	if len(lines) != len(want) {
		t.Fatalf("tooltip lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("tooltip line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	// Non-bookable elements get the name line only.
	stageLines := findShape(t, scene, "stage-1").Tooltip.Lines
	if len(stageLines) != 1 || stageLines[0] != "Stage" {
		t.Errorf("stage tooltip = %v, want just the name", stageLines)
	}
}

func TestTooltipAnchorsAboveElementCenter(t *testing.T) {
	scene := render.BuildScene(testPlan(), render.Options{ContainerWidth: 600, MaxHeight: 600})

	tip := findShape(t, scene, "table-1").Tooltip
	// (100 + 60/2) * 0.5 horizontally, 100 * 0.5 vertically.
	if tip.X != 65 || tip.Y != 50 {
		t.Errorf("tooltip anchor = (%v,%v), want (65,50)", tip.X, tip.Y)
	}
}

func TestApplyStatusTouchesOnlyOverlayState(t *testing.T) {
	plan := testPlan()
	scene := render.BuildScene(plan, render.Options{ContainerWidth: 1200})

	before := *findShape(t, scene, "table-1")

	status := domain.StatusMap{
		"table-1": {Status: domain.StatusSoldOut, Available: 0},
	}
	render.ApplyStatus(scene, plan, status, 1234)

	after := findShape(t, scene, "table-1")
	if after.Indicator.Color != "#e74c3c" {
		t.Errorf("sold-out indicator should be red, got %q", after.Indicator.Color)
	}
	if after.Opacity >= before.Opacity {
		t.Error("sold-out shape should dim")
	}
	if after.X != before.X || after.Width != before.Width || after.Kind != before.Kind {
		t.Error("status overlay must not change geometry")
	}
	if lines := after.Tooltip.Lines; lines[len(lines)-1] != "Sold out" {
		t.Errorf("availability line should flip to sold out, got %v", lines)
	}
	if scene.FetchedAtUnix != 1234 {
		t.Errorf("scene should record the status timestamp, got %d", scene.FetchedAtUnix)
	}
}

func TestApplyStatusPartial(t *testing.T) {
	plan := testPlan()
	scene := render.BuildScene(plan, render.Options{ContainerWidth: 1200})

	status := domain.StatusMap{
		"table-1": {Status: domain.StatusPartial, Available: 2},
	}
	render.ApplyStatus(scene, plan, status, 1)

	shape := findShape(t, scene, "table-1")
	if shape.Indicator.Color != "#f39c12" {
		t.Errorf("partial indicator should be amber, got %q", shape.Indicator.Color)
	}
	if shape.Indicator.Remaining != 2 {
		t.Errorf("partial indicator should carry the remaining count, got %d", shape.Indicator.Remaining)
	}
	if lines := shape.Tooltip.Lines; lines[len(lines)-1] != "2 available" {
		t.Errorf("availability line should show the remaining count, got %v", lines)
	}
}

func TestApplyStatusAbsentEntryMeansAvailable(t *testing.T) {
	plan := testPlan()
	scene := render.BuildScene(plan, render.Options{ContainerWidth: 1200})

	render.ApplyStatus(scene, plan, domain.StatusMap{}, 1)

	shape := findShape(t, scene, "table-1")
	if shape.Indicator.Color != "#2ecc71" {
		t.Errorf("absent status entry should keep the available look, got %q", shape.Indicator.Color)
	}
}

func TestGridLinesFollowCanvasSettings(t *testing.T) {
	plan := testPlan()
	scene := render.BuildScene(plan, render.Options{ContainerWidth: 1200, IncludeGrid: true})

	// 0..1200 step 20 vertical (61) plus 0..800 step 20 horizontal (41).
	if got := len(scene.GridLines); got != 61+41 {
		t.Fatalf("expected 102 grid lines, got %d", got)
	}

	plan.Canvas.Grid = false
	scene = render.BuildScene(plan, render.Options{ContainerWidth: 1200, IncludeGrid: true})
	if len(scene.GridLines) != 0 {
		t.Error("grid lines must not render when the canvas grid is off")
	}
}

func TestSelectionOnlyMarksEmbeddedScenes(t *testing.T) {
	plan := testPlan()

	scene := render.BuildScene(plan, render.Options{ContainerWidth: 1200, SelectedID: "table-1"})
	if findShape(t, scene, "table-1").Selected {
		t.Error("selection highlight is embedded-only")
	}

	scene = render.BuildScene(plan, render.Options{ContainerWidth: 1200, Embedded: true, SelectedID: "table-1"})
	if !findShape(t, scene, "table-1").Selected {
		t.Error("embedded scene should mark the selected shape")
	}
}
