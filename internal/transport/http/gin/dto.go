package httpgin

import (
	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/editor"
)

type IssueTokenRequest struct {
	PlanID string `json:"plan_id"`
}

type IssueTokenResponse struct {
	Token string `json:"token"`
}

type OpenSessionRequest struct {
	PlanID string `json:"plan_id"`
}

type SessionStateResponse struct {
	SessionID     string           `json:"session_id"`
	Document      domain.FloorPlan `json:"document"`
	Dirty         bool             `json:"dirty"`
	Selected      string           `json:"selected,omitempty"`
	HistoryIndex  int              `json:"history_index"`
	HistoryLength int              `json:"history_length"`
}

type AddElementRequest struct {
	Type string  `json:"type" binding:"required"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type MoveElementRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ResizeElementRequest struct {
	ScaleX   float64 `json:"scale_x" binding:"required,gt=0"`
	ScaleY   float64 `json:"scale_y" binding:"required,gt=0"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	// SnapRotation normalizes the rotation to 45-degree steps, mirroring the
	// rotation-snap transform handle. Direct numeric input leaves it false.
	SnapRotation bool `json:"snap_rotation"`
}

type UpdateElementRequest = editor.ElementPatch

type UpsertSectionRequest struct {
	Name         string  `json:"name" binding:"required"`
	Color        string  `json:"color"`
	DefaultPrice float64 `json:"default_price" binding:"gte=0"`
}

type SelectElementRequest struct {
	ElementID string `json:"element_id" binding:"required"`
}

type CanvasRequest struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Grid       bool   `json:"grid"`
	GridSize   int    `json:"grid_size"`
	Background string `json:"background"`
}

type MetaRequest struct {
	Title          *string `json:"title"`
	LinkedLocation *string `json:"linked_location"`
}

type SaveResponse struct {
	PlanID string `json:"plan_id"`
}

type ElementResponse struct {
	Element domain.Element `json:"element"`
}

type SectionResponse struct {
	Section domain.Section `json:"section"`
}

type ClickRequest struct {
	ElementID string `json:"element_id" binding:"required"`
	Mode      string `json:"mode"`
	Embedded  bool   `json:"embedded"`
	EventID   string `json:"event_id"`
}

type DuplicatePlanResponse struct {
	PlanID string `json:"plan_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
