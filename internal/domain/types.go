package domain

import "github.com/google/uuid"

type ElementType string

const (
	TypeTable      ElementType = "table"
	TypeSection    ElementType = "section" // a map area, unrelated to the Section entity
	TypeStage      ElementType = "stage"
	TypeBar        ElementType = "bar"
	TypeEntrance   ElementType = "entrance"
	TypeLounge     ElementType = "lounge"
	TypeDancefloor ElementType = "dancefloor"
	TypeAmenity    ElementType = "amenity"
	TypeCustom     ElementType = "custom"
)

type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeRound     Shape = "round"
	ShapeSquare    Shape = "square"
)

type ElementStatusValue string

const (
	StatusAvailable ElementStatusValue = "available"
	StatusPartial   ElementStatusValue = "partial"
	StatusSoldOut   ElementStatusValue = "sold_out"
)

// MinElementSize is the hard floor for element width/height after any resize.
const MinElementSize = 20

type Canvas struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Grid       bool   `json:"grid"`
	GridSize   int    `json:"grid_size"`
	Background string `json:"background"`
}

func DefaultCanvas() Canvas {
	return Canvas{Width: 1200, Height: 800, Grid: true, GridSize: 20}
}

type Section struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	DefaultPrice float64 `json:"default_price"`
}

type Element struct {
	ID          string      `json:"id"`
	Type        ElementType `json:"type"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Rotation    float64     `json:"rotation"`
	Shape       Shape       `json:"shape"`
	Label       string      `json:"label"`
	Number      int         `json:"number"`
	Seats       int         `json:"seats"`
	Capacity    int         `json:"capacity"`
	SectionID   string      `json:"section_id"`
	Bookable    bool        `json:"bookable"`
	Price       float64     `json:"price"`
	Accessible  bool        `json:"accessible"`
	Description string      `json:"description"`
}

type FloorPlan struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Canvas         Canvas    `json:"canvas"`
	LinkedLocation string    `json:"linked_location"`
	Sections       []Section `json:"sections"`
	Elements       []Element `json:"elements"`
}

type PlanSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Thumbnail     string `json:"thumbnail"`
	ElementCount  int    `json:"element_count"`
	TotalCapacity int    `json:"total_capacity"`
	LocationName  string `json:"location_name"`
}

// ElementStatus is the live availability overlay for a bookable element.
// It is never persisted inside the floor-plan document.
type ElementStatus struct {
	Status    ElementStatusValue `json:"status"`
	Available int                `json:"available"`
}

// StatusMap maps element id to its live status. Elements absent from the map
// are treated as available with unknown count.
type StatusMap map[string]ElementStatus

// NewID returns a fresh identifier for plans, sections and elements.
func NewID() string {
	return uuid.New().String()
}

// ElementDefaults are the creation-time defaults for a given element type.
type ElementDefaults struct {
	Width    int
	Height   int
	Shape    Shape
	Seats    int
	Bookable bool
}

var typeDefaults = map[ElementType]ElementDefaults{
	TypeTable:      {Width: 60, Height: 60, Shape: ShapeRound, Seats: 4, Bookable: true},
	TypeSection:    {Width: 200, Height: 150, Shape: ShapeRectangle, Seats: 20, Bookable: true},
	TypeStage:      {Width: 200, Height: 100, Shape: ShapeRectangle},
	TypeBar:        {Width: 160, Height: 50, Shape: ShapeRectangle},
	TypeEntrance:   {Width: 80, Height: 40, Shape: ShapeRectangle},
	TypeLounge:     {Width: 120, Height: 80, Shape: ShapeRectangle, Seats: 6, Bookable: true},
	TypeDancefloor: {Width: 200, Height: 200, Shape: ShapeRectangle},
	TypeAmenity:    {Width: 50, Height: 50, Shape: ShapeRectangle},
	TypeCustom:     {Width: 100, Height: 60, Shape: ShapeRectangle},
}

// DefaultsFor returns the creation defaults for t. Unknown types fall back to
// a 60x60 rectangle with no seats.
func DefaultsFor(t ElementType) ElementDefaults {
	if d, ok := typeDefaults[t]; ok {
		return d
	}
	return ElementDefaults{Width: 60, Height: 60, Shape: ShapeRectangle}
}

var typeColors = map[ElementType]string{
	TypeTable:      "#8e44ad",
	TypeSection:    "#2980b9",
	TypeStage:      "#c0392b",
	TypeBar:        "#d35400",
	TypeEntrance:   "#27ae60",
	TypeLounge:     "#16a085",
	TypeDancefloor: "#f39c12",
	TypeAmenity:    "#7f8c8d",
	TypeCustom:     "#34495e",
}

const defaultElementColor = "#95a5a6"

// ColorFor returns the fallback color for an element type, used when the
// element has no resolvable section.
func ColorFor(t ElementType) string {
	if c, ok := typeColors[t]; ok {
		return c
	}
	return defaultElementColor
}

// NextNumber returns 1 + the highest number among elements of the same type,
// or 1 when none exist. Numbering is independent per type.
func NextNumber(elements []Element, t ElementType) int {
	max := 0
	for _, e := range elements {
		if e.Type == t && e.Number > max {
			max = e.Number
		}
	}
	return max + 1
}

// SectionByID resolves a section id within the plan. Dangling references are
// tolerated: the lookup simply fails and the caller falls back to defaults.
func (p *FloorPlan) SectionByID(id string) (*Section, bool) {
	if id == "" {
		return nil, false
	}
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i], true
		}
	}
	return nil, false
}

// ElementByID returns the element with the given id, or nil.
func (p *FloorPlan) ElementByID(id string) *Element {
	for i := range p.Elements {
		if p.Elements[i].ID == id {
			return &p.Elements[i]
		}
	}
	return nil
}

// ElementColor resolves the render color for e: the owning section's color
// when the reference resolves, the type fallback otherwise.
func (p *FloorPlan) ElementColor(e *Element) string {
	if s, ok := p.SectionByID(e.SectionID); ok {
		return s.Color
	}
	return ColorFor(e.Type)
}

// CloneElements returns a deep copy of the element list.
func CloneElements(elements []Element) []Element {
	out := make([]Element, len(elements))
	copy(out, elements)
	return out
}

// Clone returns a deep copy of the plan.
func (p *FloorPlan) Clone() *FloorPlan {
	cp := *p
	cp.Sections = make([]Section, len(p.Sections))
	copy(cp.Sections, p.Sections)
	cp.Elements = CloneElements(p.Elements)
	return &cp
}

// TotalCapacity sums capacity over bookable elements.
func (p *FloorPlan) TotalCapacity() int {
	total := 0
	for _, e := range p.Elements {
		if e.Bookable {
			total += e.Capacity
		}
	}
	return total
}
