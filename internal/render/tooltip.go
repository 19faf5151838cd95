package render

import (
	"fmt"
	"strings"

	"github.com/okateru/plango/internal/domain"
)

// tooltipLines builds the hover text in its fixed order: the type/label line
// with an optional #number suffix, a capacity line for bookable elements with
// capacity, then an availability line for bookable elements.
func tooltipLines(el *domain.Element, status domain.StatusMap) []string {
	name := el.Label
	if name == "" {
		name = titleCase(string(el.Type))
	}
	if el.Number > 0 {
		name = fmt.Sprintf("%s #%d", name, el.Number)
	}

	lines := []string{name}

	if el.Bookable && el.Capacity > 0 {
		lines = append(lines, fmt.Sprintf("Capacity: %d", el.Capacity))
	}

	if el.Bookable {
		lines = append(lines, availabilityLine(el.ID, status))
	}

	return lines
}

func availabilityLine(elementID string, status domain.StatusMap) string {
	if status != nil {
		if st, ok := status[elementID]; ok {
			switch st.Status {
			case domain.StatusSoldOut:
				return "Sold out"
			case domain.StatusPartial:
				return fmt.Sprintf("%d available", st.Available)
			}
		}
	}
	return "Available"
}

func buildTooltip(el *domain.Element, scale float64, status domain.StatusMap) Tooltip {
	return Tooltip{
		Lines: tooltipLines(el, status),
		// Anchored above the element's horizontal center, converted to
		// viewport coordinates at the current stage scale.
		X: (el.X + float64(el.Width)/2) * scale,
		Y: el.Y * scale,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatNumber(n int) string {
	return fmt.Sprintf("%d", n)
}
