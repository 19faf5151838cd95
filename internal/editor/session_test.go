package editor_test

import (
	"errors"
	"testing"

	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/editor"
)

func TestAddElementAppliesTypeDefaults(t *testing.T) {
	sess := editor.NewSession(nil)

	el := sess.AddElement(domain.TypeTable, 100, 100)

	if el.Width != 60 || el.Height != 60 {
		t.Errorf("table default size should be 60x60, got %dx%d", el.Width, el.Height)
	}
	if el.Shape != domain.ShapeRound {
		t.Errorf("table default shape should be round, got %q", el.Shape)
	}
	if !el.Bookable {
		t.Error("tables should be bookable by default")
	}
	if el.Seats != 4 || el.Capacity != 4 {
		t.Errorf("table defaults should seat 4 with capacity 4, got seats=%d capacity=%d", el.Seats, el.Capacity)
	}
	if el.Number != 1 {
		t.Errorf("first table should be number 1, got %d", el.Number)
	}
	if sess.Selected() != el.ID {
		t.Error("new element should become the selection")
	}
}

func TestAddElementSnapsToGrid(t *testing.T) {
	sess := editor.NewSession(nil) // default canvas: grid on, size 20

	el := sess.AddElement(domain.TypeStage, 53, 47)

	if el.X != 60 || el.Y != 40 {
		t.Errorf("drop at (53,47) should snap to (60,40), got (%v,%v)", el.X, el.Y)
	}
}

func TestAddElementSkipsSnapWhenGridOff(t *testing.T) {
	sess := editor.NewSession(&domain.FloorPlan{
		Canvas: domain.Canvas{Width: 1200, Height: 800, Grid: false, GridSize: 20},
	})

	el := sess.AddElement(domain.TypeBar, 53, 47)

	if el.X != 53 || el.Y != 47 {
		t.Errorf("with the grid off the drop point must be kept, got (%v,%v)", el.X, el.Y)
	}
}

func TestAutoNumberingIsPerType(t *testing.T) {
	sess := editor.NewSession(nil)

	t1 := sess.AddElement(domain.TypeTable, 0, 0)
	t2 := sess.AddElement(domain.TypeTable, 100, 0)
	b1 := sess.AddElement(domain.TypeBar, 200, 0)

	if t1.Number != 1 || t2.Number != 2 {
		t.Errorf("tables should number 1,2, got %d,%d", t1.Number, t2.Number)
	}
	if b1.Number != 1 {
		t.Errorf("first bar should restart at 1, got %d", b1.Number)
	}

	// Deleting a table then adding another reuses nothing below the max.
	if err := sess.DeleteElement(t1.ID, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	t3 := sess.AddElement(domain.TypeTable, 0, 100)
	if t3.Number != 3 {
		t.Errorf("next table number should be max+1=3, got %d", t3.Number)
	}
}

func TestResizeAbsorbsScaleIntoSize(t *testing.T) {
	sess := editor.NewSession(nil)
	el := sess.AddElement(domain.TypeTable, 0, 0) // 60x60

	resized, err := sess.ResizeElement(el.ID, 2.0, 1.5, 10, 20, 90)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}

	if resized.Width != 120 || resized.Height != 90 {
		t.Errorf("60x60 scaled by (2.0,1.5) should store 120x90, got %dx%d", resized.Width, resized.Height)
	}
	if resized.X != 10 || resized.Y != 20 || resized.Rotation != 90 {
		t.Errorf("resize should also apply position and rotation, got (%v,%v) rot=%v", resized.X, resized.Y, resized.Rotation)
	}
}

func TestResizeClampsToMinimumSize(t *testing.T) {
	sess := editor.NewSession(nil)
	el := sess.AddElement(domain.TypeTable, 0, 0)

	resized, err := sess.ResizeElement(el.ID, 0.1, 0.1, 0, 0, 0)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if resized.Width != domain.MinElementSize || resized.Height != domain.MinElementSize {
		t.Errorf("tiny scale should clamp to %dpx, got %dx%d", domain.MinElementSize, resized.Width, resized.Height)
	}
}

func TestDuplicateOffsetsAndRenumbers(t *testing.T) {
	sess := editor.NewSession(nil)
	src := sess.AddElement(domain.TypeTable, 100, 100)

	cp, err := sess.DuplicateElement(src.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}

	if cp.ID == src.ID {
		t.Error("duplicate must get a fresh id")
	}
	if cp.X != src.X+30 || cp.Y != src.Y+30 {
		t.Errorf("duplicate should land at +30/+30, got (%v,%v)", cp.X, cp.Y)
	}
	if cp.Number != src.Number+1 {
		t.Errorf("duplicate should take the next number, got %d", cp.Number)
	}
	if sess.Selected() != cp.ID {
		t.Error("duplicate should become the selection")
	}
}

func TestDeleteElementRequiresConfirmation(t *testing.T) {
	sess := editor.NewSession(nil)
	el := sess.AddElement(domain.TypeTable, 0, 0)

	err := sess.DeleteElement(el.ID, false)
	if !errors.Is(err, editor.ErrConfirmationRequired) {
		t.Fatalf("unconfirmed delete should fail with ErrConfirmationRequired, got %v", err)
	}
	if len(sess.Document().Elements) != 1 {
		t.Fatal("unconfirmed delete must not change the document")
	}

	if err := sess.DeleteElement(el.ID, true); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if len(sess.Document().Elements) != 0 {
		t.Fatal("confirmed delete should remove the element")
	}
	if sess.Selected() != "" {
		t.Error("deleting the selected element should clear the selection")
	}
}

func TestSeatsAndCapacityStaySynchronized(t *testing.T) {
	sess := editor.NewSession(nil)
	el := sess.AddElement(domain.TypeTable, 0, 0)

	seats := 8
	updated, err := sess.UpdateElementProperties(el.ID, editor.ElementPatch{Seats: &seats})
	if err != nil {
		t.Fatalf("patch seats: %v", err)
	}
	if updated.Seats != 8 || updated.Capacity != 8 {
		t.Errorf("setting seats should set capacity too, got seats=%d capacity=%d", updated.Seats, updated.Capacity)
	}

	capacity := 12
	updated, err = sess.UpdateElementProperties(el.ID, editor.ElementPatch{Capacity: &capacity})
	if err != nil {
		t.Fatalf("patch capacity: %v", err)
	}
	if updated.Seats != 12 || updated.Capacity != 12 {
		t.Errorf("setting capacity should set seats too, got seats=%d capacity=%d", updated.Seats, updated.Capacity)
	}
}

func TestUpsertSectionRejectsEmptyName(t *testing.T) {
	sess := editor.NewSession(nil)

	_, err := sess.UpsertSection("", "", "#ff0000", 25)
	if !errors.Is(err, editor.ErrEmptySectionName) {
		t.Fatalf("empty name should be rejected, got %v", err)
	}
	if len(sess.Document().Sections) != 0 {
		t.Fatal("rejected upsert must not create a section")
	}
}

func TestDeleteSectionClearsAssignmentsButKeepsElements(t *testing.T) {
	sess := editor.NewSession(nil)

	sec, err := sess.UpsertSection("", "VIP", "#ff0000", 100)
	if err != nil {
		t.Fatalf("create section: %v", err)
	}

	el := sess.AddElement(domain.TypeTable, 0, 0)
	if _, err := sess.UpdateElementProperties(el.ID, editor.ElementPatch{SectionID: &sec.ID}); err != nil {
		t.Fatalf("assign section: %v", err)
	}

	if err := sess.DeleteSection(sec.ID, true); err != nil {
		t.Fatalf("delete section: %v", err)
	}

	doc := sess.Document()
	if len(doc.Sections) != 0 {
		t.Fatal("section should be gone")
	}
	if len(doc.Elements) != 1 {
		t.Fatal("elements must survive a section delete")
	}
	if doc.Elements[0].SectionID != "" {
		t.Errorf("element section assignment should be cleared, got %q", doc.Elements[0].SectionID)
	}
}

func TestUndoRedoRestoresElements(t *testing.T) {
	sess := editor.NewSession(nil)

	a := sess.AddElement(domain.TypeTable, 0, 0)
	sess.AddElement(domain.TypeTable, 100, 0)

	if err := sess.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	doc := sess.Document()
	if len(doc.Elements) != 1 || doc.Elements[0].ID != a.ID {
		t.Fatalf("undo should leave only the first element, got %d elements", len(doc.Elements))
	}

	if err := sess.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if got := len(sess.Document().Elements); got != 2 {
		t.Fatalf("redo should restore the second element, got %d", got)
	}
}

func TestUndoPastOpenStateFails(t *testing.T) {
	sess := editor.NewSession(nil)
	sess.AddElement(domain.TypeTable, 0, 0)

	if err := sess.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if err := sess.Undo(); !errors.Is(err, editor.ErrNothingToUndo) {
		t.Fatalf("undo past the open state should fail with ErrNothingToUndo, got %v", err)
	}
}

func TestSectionEditsAreNotUndoable(t *testing.T) {
	sess := editor.NewSession(nil)
	sess.AddElement(domain.TypeTable, 0, 0)

	if _, err := sess.UpsertSection("", "Patio", "", 0); err != nil {
		t.Fatalf("create section: %v", err)
	}

	if err := sess.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}

	doc := sess.Document()
	if len(doc.Elements) != 0 {
		t.Fatal("undo should revert the element add")
	}
	if len(doc.Sections) != 1 {
		t.Fatal("undo must not touch sections")
	}
}

func TestSelectionIsNotUndoable(t *testing.T) {
	sess := editor.NewSession(nil)
	el := sess.AddElement(domain.TypeTable, 0, 0)
	sess.DeselectAll()

	if err := sess.SelectElement(el.ID); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, length := sess.HistoryPosition()
	if length != 2 { // open state + one add
		t.Fatalf("selection must not grow the history, got length %d", length)
	}
}

func TestMarkSavedClearsDirtyAndAssignsID(t *testing.T) {
	sess := editor.NewSession(nil)
	sess.AddElement(domain.TypeTable, 0, 0)

	if !sess.Dirty() {
		t.Fatal("session should be dirty after a change")
	}

	sess.MarkSaved("plan-123")

	if sess.Dirty() {
		t.Error("save should clear the dirty flag")
	}
	if sess.Document().ID != "plan-123" {
		t.Error("save should record the assigned plan id")
	}
}

func TestSessionDocumentIsACopy(t *testing.T) {
	sess := editor.NewSession(nil)
	sess.AddElement(domain.TypeTable, 0, 0)

	doc := sess.Document()
	doc.Elements[0].Label = "mutated"

	if sess.Document().Elements[0].Label == "mutated" {
		t.Fatal("Document must return an isolated copy")
	}
}
