package render

import (
	"errors"
	"sync"

	"github.com/okateru/plango/internal/domain"
)

var ErrInstanceNotFound = errors.New("renderer instance not found")

// State tracks a renderer instance's lifecycle.
type State string

const (
	StateLoadingStatus State = "loading_status"
	StateInteractive   State = "interactive"
)

// Instance is one per-floor-plan render context. Instances do not share state
// with each other; each owns its status map and (in embedded mode) its single
// selected element.
type Instance struct {
	mu sync.Mutex

	plan         *domain.FloorPlan
	mode         Mode
	embedded     bool
	eventID      string
	fallbackBase string
	state        State
	status       domain.StatusMap
	selected     string
}

// NewInstance creates a render context for the plan. Instances with a
// bookable mode and an event start in loading_status until the first status
// map arrives; everything else is interactive immediately.
func NewInstance(plan *domain.FloorPlan, mode Mode, embedded bool, eventID, fallbackBase string) *Instance {
	state := StateInteractive
	if mode != ModeDisplay && eventID != "" {
		state = StateLoadingStatus
	}
	return &Instance{
		plan:         plan,
		mode:         mode,
		embedded:     embedded,
		eventID:      eventID,
		fallbackBase: fallbackBase,
		state:        state,
	}
}

func (r *Instance) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Mode, Embedded and EventID expose the immutable parameters the instance was
// created with, so callers can tell when a request needs a fresh instance.
func (r *Instance) Mode() Mode      { return r.mode }
func (r *Instance) Embedded() bool  { return r.embedded }
func (r *Instance) EventID() string { return r.eventID }

// SetStatus installs a fresh status map and moves the instance to
// interactive.
func (r *Instance) SetStatus(status domain.StatusMap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	r.state = StateInteractive
}

// Click resolves a click against the instance's current state and, in
// embedded mode, records the new selection.
func (r *Instance) Click(elementID string) (ClickResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := ResolveClick(r.plan, ClickInput{
		ElementID:    elementID,
		Mode:         r.mode,
		Embedded:     r.embedded,
		SelectedID:   r.selected,
		EventID:      r.eventID,
		Status:       r.status,
		FallbackBase: r.fallbackBase,
	})
	if err != nil {
		return ClickResult{}, err
	}
	if res.Action == ActionSelect {
		r.selected = elementID
	}
	return res, nil
}

// Deselect clears the instance selection, e.g. when the host raises an
// element-deselected event.
func (r *Instance) Deselect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = ""
}

// Selected returns the currently selected element id.
func (r *Instance) Selected() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}

// Scene builds the scene for this instance with its current status overlay.
func (r *Instance) Scene(containerW, maxH int) *Scene {
	r.mu.Lock()
	defer r.mu.Unlock()

	return BuildScene(r.plan, Options{
		ContainerWidth: containerW,
		MaxHeight:      maxH,
		Mode:           r.mode,
		Embedded:       r.embedded,
		SelectedID:     r.selected,
		Status:         r.status,
	})
}

// Registry owns the render instances on a page, keyed by floor-plan id, with
// an explicit create/dispose lifecycle.
type Registry struct {
	mu           sync.RWMutex
	instances    map[string]*Instance
	fallbackBase string
}

// NewRegistry creates an empty registry. fallbackBase is the external booking
// URL handed to every instance for no-JS reservation fallbacks; empty disables
// the fallback link.
func NewRegistry(fallbackBase string) *Registry {
	return &Registry{
		instances:    make(map[string]*Instance),
		fallbackBase: fallbackBase,
	}
}

// Create registers an instance for the plan, replacing any previous one for
// the same id.
func (g *Registry) Create(plan *domain.FloorPlan, mode Mode, embedded bool, eventID string) *Instance {
	inst := NewInstance(plan, mode, embedded, eventID, g.fallbackBase)

	g.mu.Lock()
	g.instances[plan.ID] = inst
	g.mu.Unlock()

	return inst
}

// Get returns the instance for a floor-plan id.
func (g *Registry) Get(planID string) (*Instance, error) {
	g.mu.RLock()
	inst, ok := g.instances[planID]
	g.mu.RUnlock()

	if !ok {
		return nil, ErrInstanceNotFound
	}
	return inst, nil
}

// Dispose removes the instance for a floor-plan id.
func (g *Registry) Dispose(planID string) {
	g.mu.Lock()
	delete(g.instances, planID)
	g.mu.Unlock()
}

// Len returns the number of live instances.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.instances)
}
