package availability_test

import (
	"testing"

	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/service/availability"
)

func TestClassify(t *testing.T) {
	plan := &domain.FloorPlan{
		Elements: []domain.Element{
			{ID: "free", Type: domain.TypeTable, Capacity: 4, Bookable: true},
			{ID: "partial", Type: domain.TypeTable, Capacity: 4, Bookable: true},
			{ID: "full", Type: domain.TypeTable, Capacity: 4, Bookable: true},
			{ID: "over", Type: domain.TypeTable, Capacity: 4, Bookable: true},
			{ID: "stage", Type: domain.TypeStage},
		},
	}
	booked := map[string]int{
		"partial": 1,
		"full":    4,
		"over":    6, // overbooked rows still classify as sold out
		"stage":   2, // non-bookable, must be ignored
		"ghost":   3, // no matching element
	}

	status := availability.Classify(plan, booked)

	if _, ok := status["free"]; ok {
		t.Error("element with no bookings should stay absent from the map")
	}
	if _, ok := status["stage"]; ok {
		t.Error("non-bookable element must never get a status entry")
	}
	if _, ok := status["ghost"]; ok {
		t.Error("booked rows without a matching element must be dropped")
	}

	if st := status["partial"]; st.Status != domain.StatusPartial || st.Available != 3 {
		t.Errorf("1 of 4 booked should be partial with 3 remaining, got %+v", st)
	}
	if st := status["full"]; st.Status != domain.StatusSoldOut || st.Available != 0 {
		t.Errorf("4 of 4 booked should be sold out, got %+v", st)
	}
	if st := status["over"]; st.Status != domain.StatusSoldOut {
		t.Errorf("overbooked element should be sold out, got %+v", st)
	}
}

func TestClassifyZeroAndNegativeCounts(t *testing.T) {
	plan := &domain.FloorPlan{
		Elements: []domain.Element{
			{ID: "t", Type: domain.TypeTable, Capacity: 4, Bookable: true},
		},
	}

	if got := availability.Classify(plan, map[string]int{"t": 0}); len(got) != 0 {
		t.Errorf("zero booked seats should produce no entry, got %v", got)
	}
	if got := availability.Classify(plan, map[string]int{"t": -2}); len(got) != 0 {
		t.Errorf("negative counts should produce no entry, got %v", got)
	}
	if got := availability.Classify(plan, nil); len(got) != 0 {
		t.Errorf("nil booked map should produce an empty status map, got %v", got)
	}
}
