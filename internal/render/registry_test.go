package render_test

import (
	"errors"
	"testing"

	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/render"
)

func TestInstanceLifecycleStates(t *testing.T) {
	plan := clickPlan()

	// Bookable mode with an event: status must arrive before the instance is
	// interactive.
	inst := render.NewInstance(plan, render.ModeReservation, false, "ev-1", "")
	if inst.State() != render.StateLoadingStatus {
		t.Fatalf("reservation instance should start loading, got %s", inst.State())
	}
	inst.SetStatus(domain.StatusMap{})
	if inst.State() != render.StateInteractive {
		t.Fatalf("instance should be interactive after status, got %s", inst.State())
	}

	// Display mode skips the loading phase entirely.
	inst = render.NewInstance(plan, render.ModeDisplay, false, "", "")
	if inst.State() != render.StateInteractive {
		t.Fatalf("display instance should start interactive, got %s", inst.State())
	}
}

func TestInstanceClickRecordsEmbeddedSelection(t *testing.T) {
	inst := render.NewInstance(clickPlan(), render.ModeReservation, true, "ev-1", "")
	inst.SetStatus(domain.StatusMap{})

	res, err := inst.Click("t1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Action != render.ActionSelect {
		t.Fatalf("embedded click should select, got %s", res.Action)
	}
	if inst.Selected() != "t1" {
		t.Errorf("instance should remember the selection, got %q", inst.Selected())
	}

	// Selecting a second element reports the first as deselected.
	res, err = inst.Click("t2")
	if err != nil {
		t.Fatal(err)
	}
	if res.DeselectedID != "t1" || inst.Selected() != "t2" {
		t.Errorf("selection should move from t1 to t2, got deselected=%q selected=%q", res.DeselectedID, inst.Selected())
	}

	inst.Deselect()
	if inst.Selected() != "" {
		t.Error("Deselect should clear the selection")
	}
}

func TestInstanceSoldOutClickKeepsSelection(t *testing.T) {
	inst := render.NewInstance(clickPlan(), render.ModeReservation, true, "ev-1", "")
	inst.SetStatus(domain.StatusMap{"t2": {Status: domain.StatusSoldOut}})

	if _, err := inst.Click("t1"); err != nil {
		t.Fatal(err)
	}

	res, err := inst.Click("t2")
	if err != nil {
		t.Fatal(err)
	}
	if res.Action != render.ActionNone {
		t.Fatalf("sold-out click should be a no-op, got %s", res.Action)
	}
	if inst.Selected() != "t1" {
		t.Errorf("a rejected click must not move the selection, got %q", inst.Selected())
	}
}

func TestInstanceSceneReflectsSelectionAndStatus(t *testing.T) {
	inst := render.NewInstance(clickPlan(), render.ModeReservation, true, "ev-1", "")
	inst.SetStatus(domain.StatusMap{"t1": {Status: domain.StatusPartial, Available: 1}})

	if _, err := inst.Click("t1"); err != nil {
		t.Fatal(err)
	}

	scene := inst.Scene(1200, 0)
	shape := findShape(t, scene, "t1")
	if !shape.Selected {
		t.Error("scene should mark the embedded selection")
	}
	if shape.Indicator == nil || shape.Indicator.Remaining != 1 {
		t.Errorf("scene should carry the live status, got %+v", shape.Indicator)
	}
}

func TestRegistryCreateGetDispose(t *testing.T) {
	reg := render.NewRegistry("https://example.com/book")
	plan := clickPlan()

	if _, err := reg.Get(plan.ID); !errors.Is(err, render.ErrInstanceNotFound) {
		t.Fatalf("empty registry should miss, got %v", err)
	}

	inst := reg.Create(plan, render.ModeDisplay, false, "")
	got, err := reg.Get(plan.ID)
	if err != nil || got != inst {
		t.Fatalf("registry should return the created instance, got %v, %v", got, err)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry length = %d, want 1", reg.Len())
	}

	// Re-creating for the same plan replaces the old instance.
	inst2 := reg.Create(plan, render.ModeReservation, false, "ev-1")
	got, _ = reg.Get(plan.ID)
	if got != inst2 || got == inst {
		t.Fatal("re-create should replace the previous instance")
	}
	if got.Mode() != render.ModeReservation || got.EventID() != "ev-1" {
		t.Errorf("replacement instance parameters wrong: mode=%s event=%s", got.Mode(), got.EventID())
	}

	reg.Dispose(plan.ID)
	if _, err := reg.Get(plan.ID); !errors.Is(err, render.ErrInstanceNotFound) {
		t.Fatal("disposed instance should be gone")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry length = %d, want 0", reg.Len())
	}
}
