// Package render builds interactive seat-map scenes from finalized floor-plan
// documents and resolves click/tooltip/status-overlay semantics for them.
package render

import (
	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/geometry"
)

// Mode is the interaction mode of a rendered floor-plan instance. Modes are
// mutually exclusive per instance.
type Mode string

const (
	// ModeDisplay renders without booking interaction; hover shows an
	// informational tooltip only.
	ModeDisplay Mode = "display"
	// ModeReservation opens a booking modal on click.
	ModeReservation Mode = "reservation"
	// ModeTicket raises a ticket selection event on click.
	ModeTicket Mode = "ticket"
)

const (
	fillOpacity    = 0.7
	soldOutOpacity = 0.35
	gridOpacity    = 0.15
	bgOpacity      = 0.5

	indicatorAvailable = "#2ecc71"
	indicatorPartial   = "#f39c12"
	indicatorSoldOut   = "#e74c3c"
)

type ShapeKind string

const (
	KindRect   ShapeKind = "rect"
	KindCircle ShapeKind = "circle"
)

// Indicator is the small booking-status dot in an element's top-right corner.
type Indicator struct {
	Color     string `json:"color"`
	Remaining int    `json:"remaining,omitempty"`
}

// Tooltip is the hover payload for one element. Lines keep a fixed order:
// name, then capacity, then availability.
type Tooltip struct {
	Lines []string `json:"lines"`
	// X, Y anchor the tooltip above the element's horizontal center, in
	// viewport coordinates at the current stage scale.
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SceneShape is one rendered element.
type SceneShape struct {
	ElementID string     `json:"element_id"`
	Kind      ShapeKind  `json:"kind"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Rotation  float64    `json:"rotation"`
	Fill      string     `json:"fill"`
	Stroke    string     `json:"stroke"`
	Opacity   float64    `json:"opacity"`
	Label     string     `json:"label,omitempty"`
	Bookable  bool       `json:"bookable"`
	Indicator *Indicator `json:"indicator,omitempty"`
	Tooltip   Tooltip    `json:"tooltip"`
	Selected  bool       `json:"selected,omitempty"`
}

// GridLine is one 1px grid line across the canvas extent.
type GridLine struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Background is the optional image layer beneath grid and elements.
type Background struct {
	URL     string  `json:"url"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Opacity float64 `json:"opacity"`
}

// Scene is the full render output for one floor-plan instance.
type Scene struct {
	PlanID      string       `json:"plan_id"`
	Scale       float64      `json:"scale"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Mode        Mode         `json:"mode"`
	Embedded    bool         `json:"embedded"`
	Background  *Background  `json:"background,omitempty"`
	GridLines   []GridLine   `json:"grid_lines,omitempty"`
	GridOpacity float64      `json:"grid_opacity,omitempty"`
	Shapes      []SceneShape `json:"shapes"`
	// FetchedAtUnix stamps the status overlay so clients can discard
	// out-of-order responses.
	FetchedAtUnix int64 `json:"fetched_at_unix,omitempty"`
}

// Options control scene building.
type Options struct {
	ContainerWidth int
	MaxHeight      int
	Mode           Mode
	Embedded       bool
	SelectedID     string
	Status         domain.StatusMap
	IncludeGrid    bool
}

// ShapeKindFor maps an element to its render primitive: a circle when the
// shape is round, or when a table carries any shape other than rectangle or
// square; a rectangle otherwise.
func ShapeKindFor(e *domain.Element) ShapeKind {
	if e.Shape == domain.ShapeRound {
		return KindCircle
	}
	if e.Type == domain.TypeTable && e.Shape != domain.ShapeRectangle && e.Shape != domain.ShapeSquare {
		return KindCircle
	}
	return KindRect
}

// BuildScene renders the document into scene data at the scale that fits the
// container width and height cap.
func BuildScene(plan *domain.FloorPlan, opts Options) *Scene {
	scale := geometry.FitToContainer(plan.Canvas.Width, plan.Canvas.Height, opts.ContainerWidth, opts.MaxHeight)

	scene := &Scene{
		PlanID:   plan.ID,
		Scale:    scale,
		Width:    int(float64(plan.Canvas.Width) * scale),
		Height:   int(float64(plan.Canvas.Height) * scale),
		Mode:     opts.Mode,
		Embedded: opts.Embedded,
		Shapes:   make([]SceneShape, 0, len(plan.Elements)),
	}

	if plan.Canvas.Background != "" {
		scene.Background = &Background{
			URL:     plan.Canvas.Background,
			Width:   plan.Canvas.Width,
			Height:  plan.Canvas.Height,
			Opacity: bgOpacity,
		}
	}

	if opts.IncludeGrid && plan.Canvas.Grid {
		scene.GridLines = buildGrid(plan.Canvas)
		scene.GridOpacity = gridOpacity
	}

	for i := range plan.Elements {
		el := &plan.Elements[i]
		scene.Shapes = append(scene.Shapes, buildShape(plan, el, scale, opts))
	}

	return scene
}

func buildShape(plan *domain.FloorPlan, el *domain.Element, scale float64, opts Options) SceneShape {
	color := plan.ElementColor(el)

	label := el.Label
	if label == "" && el.Number > 0 {
		label = formatNumber(el.Number)
	}

	shape := SceneShape{
		ElementID: el.ID,
		Kind:      ShapeKindFor(el),
		X:         el.X,
		Y:         el.Y,
		Width:     el.Width,
		Height:    el.Height,
		Rotation:  el.Rotation,
		Fill:      color,
		Stroke:    color,
		Opacity:   fillOpacity,
		Label:     label,
		Bookable:  el.Bookable,
		Selected:  opts.Embedded && el.ID == opts.SelectedID,
		Tooltip:   buildTooltip(el, scale, opts.Status),
	}

	if el.Bookable {
		shape.Indicator = &Indicator{Color: indicatorAvailable}
	}

	applyStatusToShape(&shape, el, opts.Status)
	return shape
}

// ApplyStatus overlays a fresh status map onto an already-built scene. Only
// the indicator color, remaining count and sold-out opacity are touched;
// geometry is never re-rendered.
func ApplyStatus(scene *Scene, plan *domain.FloorPlan, status domain.StatusMap, fetchedAtUnix int64) {
	for i := range scene.Shapes {
		el := plan.ElementByID(scene.Shapes[i].ElementID)
		if el == nil {
			continue
		}
		scene.Shapes[i].Opacity = fillOpacity
		if el.Bookable {
			scene.Shapes[i].Indicator = &Indicator{Color: indicatorAvailable}
		}
		applyStatusToShape(&scene.Shapes[i], el, status)
		scene.Shapes[i].Tooltip.Lines = tooltipLines(el, status)
	}
	scene.FetchedAtUnix = fetchedAtUnix
}

func applyStatusToShape(shape *SceneShape, el *domain.Element, status domain.StatusMap) {
	if !el.Bookable || status == nil {
		return
	}
	st, ok := status[el.ID]
	if !ok {
		// Absent entries keep the default available appearance.
		return
	}
	switch st.Status {
	case domain.StatusPartial:
		shape.Indicator = &Indicator{Color: indicatorPartial, Remaining: st.Available}
	case domain.StatusSoldOut:
		shape.Indicator = &Indicator{Color: indicatorSoldOut}
		shape.Opacity = soldOutOpacity
	default:
		shape.Indicator = &Indicator{Color: indicatorAvailable}
	}
}

func buildGrid(c domain.Canvas) []GridLine {
	if c.GridSize <= 0 {
		return nil
	}
	var lines []GridLine
	for x := 0; x <= c.Width; x += c.GridSize {
		lines = append(lines, GridLine{X1: float64(x), Y1: 0, X2: float64(x), Y2: float64(c.Height)})
	}
	for y := 0; y <= c.Height; y += c.GridSize {
		lines = append(lines, GridLine{X1: 0, Y1: float64(y), X2: float64(c.Width), Y2: float64(y)})
	}
	return lines
}
