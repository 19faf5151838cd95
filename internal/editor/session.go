package editor

import (
	"sync"
	"time"

	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/geometry"
)

// duplicateOffset is the fixed position delta applied to a duplicated element.
const duplicateOffset = 30

// Session owns one floor-plan document while it is being edited: the element
// and section lists, canvas settings, the undo/redo history and the current
// selection. One session exists per open-editor invocation; it is discarded
// on close, never shared between documents.
type Session struct {
	mu sync.Mutex

	id       string
	plan     *domain.FloorPlan
	history  *History
	selected string
	dirty    bool
	lastUsed time.Time
}

// NewSession opens an editing session over the given plan. A nil plan starts
// a blank document with default canvas settings.
func NewSession(plan *domain.FloorPlan) *Session {
	if plan == nil {
		plan = &domain.FloorPlan{
			Canvas:   domain.DefaultCanvas(),
			Sections: []domain.Section{},
			Elements: []domain.Element{},
		}
	} else {
		plan = plan.Clone()
	}

	return &Session{
		id:       domain.NewID(),
		plan:     plan,
		history:  NewHistory(plan.Elements),
		lastUsed: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Document returns a deep copy of the current document state.
func (s *Session) Document() *domain.FloorPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.plan.Clone()
}

// Dirty reports whether the document has unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Selected returns the id of the currently selected element, if any.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// HistoryPosition returns the current history index and length.
func (s *Session) HistoryPosition() (index, length int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Index(), s.history.Len()
}

// LastUsed returns the time of the last operation, for idle reaping.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// MarkSaved clears the dirty flag after a successful persist and records the
// id assigned by storage on first save.
func (s *Session) MarkSaved(planID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if planID != "" {
		s.plan.ID = planID
	}
	s.dirty = false
	s.touch()
}

// AddElement creates an element of the given type at (x,y), grid-snapped when
// the grid is enabled, with type defaults and the next free number for that
// type. The new element becomes the selection. Unknown types fall back to
// empty defaults rather than failing.
func (s *Session) AddElement(t domain.ElementType, x, y float64) domain.Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan.Canvas.Grid {
		x, y = geometry.SnapPoint(x, y, s.plan.Canvas.GridSize)
	}

	defaults := domain.DefaultsFor(t)
	el := domain.Element{
		ID:       domain.NewID(),
		Type:     t,
		X:        x,
		Y:        y,
		Width:    defaults.Width,
		Height:   defaults.Height,
		Shape:    defaults.Shape,
		Seats:    defaults.Seats,
		Capacity: defaults.Seats,
		Bookable: defaults.Bookable,
		Number:   domain.NextNumber(s.plan.Elements, t),
	}

	s.plan.Elements = append(s.plan.Elements, el)
	s.commit()
	s.selected = el.ID
	return el
}

// MoveElement applies a drag-end position, grid-snapped when the grid is
// enabled. Continuous drag is visual-only on the client; only the released
// position is written back.
func (s *Session) MoveElement(id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el := s.plan.ElementByID(id)
	if el == nil {
		return ErrElementNotFound
	}

	if s.plan.Canvas.Grid {
		x, y = geometry.SnapPoint(x, y, s.plan.Canvas.GridSize)
	}
	el.X = x
	el.Y = y
	s.commit()
	return nil
}

// ResizeElement commits a transform-end. The transform tool reports a scale
// factor relative to the pre-transform size, not an absolute size, because a
// group primitive reports zero for its own bounds. The scale is absorbed into
// the stored width/height (clamped to the minimum) and the live scale resets
// to 1 on the client; it is never persisted as a separate multiplier.
func (s *Session) ResizeElement(id string, scaleX, scaleY, newX, newY, rotation float64) (domain.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el := s.plan.ElementByID(id)
	if el == nil {
		return domain.Element{}, ErrElementNotFound
	}

	w, h := geometry.ScaleSize(el.Width, el.Height, scaleX, scaleY)
	el.Width, el.Height = geometry.ClampSize(w, h, domain.MinElementSize)
	el.X = newX
	el.Y = newY
	el.Rotation = rotation
	s.commit()
	return *el, nil
}

// ElementPatch carries property-panel edits. Nil fields are left untouched.
type ElementPatch struct {
	Label       *string       `json:"label"`
	Number      *int          `json:"number"`
	Shape       *domain.Shape `json:"shape"`
	Width       *int          `json:"width"`
	Height      *int          `json:"height"`
	Rotation    *float64      `json:"rotation"`
	Bookable    *bool         `json:"bookable"`
	Seats       *int          `json:"seats"`
	Capacity    *int          `json:"capacity"`
	SectionID   *string       `json:"section_id"`
	Price       *float64      `json:"price"`
	Accessible  *bool         `json:"accessible"`
	Description *string       `json:"description"`
}

// UpdateElementProperties applies a property patch. Seats and capacity stay
// synchronized: editing either sets both to the same value.
func (s *Session) UpdateElementProperties(id string, patch ElementPatch) (domain.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el := s.plan.ElementByID(id)
	if el == nil {
		return domain.Element{}, ErrElementNotFound
	}

	if patch.Label != nil {
		el.Label = *patch.Label
	}
	if patch.Number != nil {
		el.Number = *patch.Number
	}
	if patch.Shape != nil {
		el.Shape = *patch.Shape
	}
	if patch.Width != nil || patch.Height != nil {
		w, h := el.Width, el.Height
		if patch.Width != nil {
			w = *patch.Width
		}
		if patch.Height != nil {
			h = *patch.Height
		}
		el.Width, el.Height = geometry.ClampSize(w, h, domain.MinElementSize)
	}
	if patch.Rotation != nil {
		el.Rotation = *patch.Rotation
	}
	if patch.Bookable != nil {
		el.Bookable = *patch.Bookable
	}
	if patch.Seats != nil {
		el.Seats = *patch.Seats
		el.Capacity = *patch.Seats
	} else if patch.Capacity != nil {
		el.Capacity = *patch.Capacity
		el.Seats = *patch.Capacity
	}
	if patch.SectionID != nil {
		el.SectionID = *patch.SectionID
	}
	if patch.Price != nil {
		el.Price = *patch.Price
	}
	if patch.Accessible != nil {
		el.Accessible = *patch.Accessible
	}
	if patch.Description != nil {
		el.Description = *patch.Description
	}

	s.commit()
	return *el, nil
}

// DuplicateElement deep-copies an element, offsets it by a fixed delta,
// reassigns its number and selects the copy.
func (s *Session) DuplicateElement(id string) (domain.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.plan.ElementByID(id)
	if src == nil {
		return domain.Element{}, ErrElementNotFound
	}

	cp := *src
	cp.ID = domain.NewID()
	cp.X += duplicateOffset
	cp.Y += duplicateOffset
	cp.Number = domain.NextNumber(s.plan.Elements, cp.Type)

	s.plan.Elements = append(s.plan.Elements, cp)
	s.commit()
	s.selected = cp.ID
	return cp, nil
}

// DeleteElement removes an element. The destructive action must be confirmed
// by the caller; without confirmation nothing changes. Selection is cleared
// when the deleted element was selected.
func (s *Session) DeleteElement(id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.plan.Elements {
		if s.plan.Elements[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrElementNotFound
	}

	s.plan.Elements = append(s.plan.Elements[:idx], s.plan.Elements[idx+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	s.commit()
	return nil
}

// SelectElement marks an element as selected. Pure UI state: no history
// entry, no dirty flag.
func (s *Session) SelectElement(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan.ElementByID(id) == nil {
		return ErrElementNotFound
	}
	s.selected = id
	s.touch()
	return nil
}

// DeselectAll clears the selection.
func (s *Session) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
	s.touch()
}

// UpsertSection creates a section (empty id) or edits an existing one in
// place. An empty name is rejected with no state change. Section changes are
// not undoable; the history tracks elements only.
func (s *Session) UpsertSection(id, name, color string, defaultPrice float64) (domain.Section, error) {
	if name == "" {
		return domain.Section{}, ErrEmptySectionName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		sec := domain.Section{
			ID:           domain.NewID(),
			Name:         name,
			Color:        color,
			DefaultPrice: defaultPrice,
		}
		s.plan.Sections = append(s.plan.Sections, sec)
		s.dirty = true
		s.touch()
		return sec, nil
	}

	sec, ok := s.plan.SectionByID(id)
	if !ok {
		return domain.Section{}, ErrSectionNotFound
	}
	sec.Name = name
	sec.Color = color
	sec.DefaultPrice = defaultPrice
	s.dirty = true
	s.touch()
	return *sec, nil
}

// DeleteSection removes a section and clears section_id on every element that
// referenced it. Elements are never deleted by this cascade.
func (s *Session) DeleteSection(id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.plan.Sections {
		if s.plan.Sections[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrSectionNotFound
	}

	s.plan.Sections = append(s.plan.Sections[:idx], s.plan.Sections[idx+1:]...)
	for i := range s.plan.Elements {
		if s.plan.Elements[i].SectionID == id {
			s.plan.Elements[i].SectionID = ""
		}
	}
	s.dirty = true
	s.touch()
	return nil
}

// UpdateCanvas applies canvas settings. Not part of the undo history.
func (s *Session) UpdateCanvas(c domain.Canvas) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Width > 0 {
		s.plan.Canvas.Width = c.Width
	}
	if c.Height > 0 {
		s.plan.Canvas.Height = c.Height
	}
	if c.GridSize > 0 {
		s.plan.Canvas.GridSize = c.GridSize
	}
	s.plan.Canvas.Grid = c.Grid
	s.plan.Canvas.Background = c.Background
	s.dirty = true
	s.touch()
}

// SetTitle renames the document.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan.Title = title
	s.dirty = true
	s.touch()
}

// SetLinkedLocation links the document to a venue entity.
func (s *Session) SetLinkedLocation(locationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan.LinkedLocation = locationID
	s.dirty = true
	s.touch()
}

// Undo restores the previous element snapshot and clears the selection.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.history.Undo()
	if snapshot == nil {
		return ErrNothingToUndo
	}
	s.plan.Elements = snapshot
	s.selected = ""
	s.dirty = true
	s.touch()
	return nil
}

// Redo restores the next element snapshot and clears the selection.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.history.Redo()
	if snapshot == nil {
		return ErrNothingToRedo
	}
	s.plan.Elements = snapshot
	s.selected = ""
	s.dirty = true
	s.touch()
	return nil
}

// commit records a structural mutation: one history entry per discrete
// change, dirty flag set. Callers hold s.mu.
func (s *Session) commit() {
	s.history.Push(s.plan.Elements)
	s.dirty = true
	s.touch()
}

func (s *Session) touch() {
	s.lastUsed = time.Now()
}
