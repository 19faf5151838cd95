package render

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/okateru/plango/internal/domain"
)

var ErrElementNotFound = errors.New("element not found")

// ClickAction is what a click on an element resolves to under the instance's
// interaction mode.
type ClickAction string

const (
	// ActionNone: the click is a no-op (non-bookable element, sold out, or
	// display mode).
	ActionNone ClickAction = "none"
	// ActionOpenModal: open the booking modal (reservation mode).
	ActionOpenModal ClickAction = "open_modal"
	// ActionTicket: raise a ticket-selected event and highlight the matching
	// ticket control on the host page (ticket mode).
	ActionTicket ClickAction = "ticket"
	// ActionSelect: direct visual selection inside a host widget (embedded
	// mode), replacing any previous selection in the same instance.
	ActionSelect ClickAction = "select"
)

// ElementSelectedEvent is raised toward the host page when an element is
// selected in embedded mode.
type ElementSelectedEvent struct {
	EventID     string          `json:"eventId"`
	FloorPlanID string          `json:"floorPlanId"`
	Element     domain.Element  `json:"element"`
	Seats       int             `json:"seats,omitempty"`
	Section     *domain.Section `json:"section"`
	Mode        Mode            `json:"mode,omitempty"`
}

// TicketSelectedEvent is raised toward the host page in ticket mode, carrying
// the element's pre-linked ticket category.
type TicketSelectedEvent struct {
	EventID        string          `json:"eventId"`
	FloorPlanID    string          `json:"floorPlanId"`
	Element        domain.Element  `json:"element"`
	TicketCategory string          `json:"ticketCategory"`
	Section        *domain.Section `json:"section"`
}

// BookingModal is the payload for the reservation-mode modal: capacity, live
// availability and the effective price (element price, or the owning
// section's default as fallback).
type BookingModal struct {
	ElementID string  `json:"element_id"`
	Title     string  `json:"title"`
	Capacity  int     `json:"capacity"`
	Available int     `json:"available"`
	Price     float64 `json:"price"`
	// MaxSeats bounds the seat-count selector by live availability.
	MaxSeats int `json:"max_seats"`
}

// ClickResult describes the outcome of resolving a click.
type ClickResult struct {
	Action        ClickAction           `json:"action"`
	DeselectedID  string                `json:"deselected_id,omitempty"`
	Modal         *BookingModal         `json:"modal,omitempty"`
	Selected      *ElementSelectedEvent `json:"selected,omitempty"`
	Ticket        *TicketSelectedEvent  `json:"ticket,omitempty"`
	FallbackURL   string                `json:"fallback_url,omitempty"`
}

// ClickInput carries the per-click context.
type ClickInput struct {
	ElementID string
	Mode      Mode
	Embedded  bool
	// SelectedID is the instance's current selection (embedded mode only).
	SelectedID string
	EventID    string
	Status     domain.StatusMap
	// TicketCategories maps element id to its pre-linked ticket category
	// (ticket mode, supplied by the host integration).
	TicketCategories map[string]string
	// FallbackBase is the navigation target used when no richer host
	// integration is present.
	FallbackBase string
}

// ResolveClick applies the interaction-mode rules to a click. Non-bookable
// elements and sold-out elements never produce a modal, an event or a visual
// selection change, under any mode.
func ResolveClick(plan *domain.FloorPlan, in ClickInput) (ClickResult, error) {
	el := plan.ElementByID(in.ElementID)
	if el == nil {
		return ClickResult{}, ErrElementNotFound
	}

	if !el.Bookable {
		return ClickResult{Action: ActionNone}, nil
	}
	if in.Status != nil {
		if st, ok := in.Status[el.ID]; ok && st.Status == domain.StatusSoldOut {
			return ClickResult{Action: ActionNone}, nil
		}
	}

	section, _ := plan.SectionByID(el.SectionID)

	if in.Embedded {
		res := ClickResult{
			Action:       ActionSelect,
			DeselectedID: in.SelectedID,
			Selected: &ElementSelectedEvent{
				EventID:     in.EventID,
				FloorPlanID: plan.ID,
				Element:     *el,
				Seats:       el.Seats,
				Section:     section,
				Mode:        in.Mode,
			},
		}
		if res.DeselectedID == el.ID {
			res.DeselectedID = ""
		}
		return res, nil
	}

	switch in.Mode {
	case ModeReservation:
		available := el.Capacity
		if in.Status != nil {
			if st, ok := in.Status[el.ID]; ok {
				available = st.Available
			}
		}
		return ClickResult{
			Action: ActionOpenModal,
			Modal: &BookingModal{
				ElementID: el.ID,
				Title:     modalTitle(el),
				Capacity:  el.Capacity,
				Available: available,
				Price:     effectivePrice(el, section),
				MaxSeats:  available,
			},
			FallbackURL: FallbackURL(in.FallbackBase, plan.ID, el.ID, el.Seats, in.EventID),
		}, nil
	case ModeTicket:
		return ClickResult{
			Action: ActionTicket,
			Ticket: &TicketSelectedEvent{
				EventID:        in.EventID,
				FloorPlanID:    plan.ID,
				Element:        *el,
				TicketCategory: in.TicketCategories[el.ID],
				Section:        section,
			},
		}, nil
	default:
		return ClickResult{Action: ActionNone}, nil
	}
}

// effectivePrice prefers the element's own price; the section default is a
// fallback, not inherited.
func effectivePrice(el *domain.Element, section *domain.Section) float64 {
	if el.Price > 0 {
		return el.Price
	}
	if section != nil {
		return section.DefaultPrice
	}
	return 0
}

func modalTitle(el *domain.Element) string {
	if el.Label != "" {
		return el.Label
	}
	name := titleCase(string(el.Type))
	if el.Number > 0 {
		return name + " #" + strconv.Itoa(el.Number)
	}
	return name
}

// FallbackURL builds the full-page navigation target used when the booking
// modal's reserve action has no host integration to hand off to.
func FallbackURL(base, planID, elementID string, seats int, eventID string) string {
	if base == "" {
		return ""
	}
	q := url.Values{}
	q.Set("floor_plan_id", planID)
	q.Set("element_id", elementID)
	q.Set("seats", strconv.Itoa(seats))
	q.Set("quantity", strconv.Itoa(seats))
	if eventID != "" {
		q.Set("event_id", eventID)
	}
	return base + "?" + q.Encode()
}
