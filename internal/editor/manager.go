package editor

import (
	"context"
	"sync"
	"time"

	"github.com/okateru/plango/internal/domain"
)

// Manager tracks open editing sessions by id. A document is owned by at most
// one session at a time; sessions are reaped after an idle TTL so abandoned
// editors do not leak.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idleTTL  time.Duration
}

// NewManager returns a session manager. A non-positive idleTTL defaults to
// 30 minutes.
func NewManager(idleTTL time.Duration) *Manager {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Manager{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
	}
}

// Open creates a session over plan (nil for a blank document) and registers
// it.
func (m *Manager) Open(plan *domain.FloorPlan) *Session {
	s := NewSession(plan)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close discards a session. Closing a session with unsaved changes requires
// confirmation; declining leaves it open.
func (m *Manager) Close(id string, confirmed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if s.Dirty() && !confirmed {
		return ErrConfirmationRequired
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap discards sessions idle longer than the TTL and returns how many were
// removed. Unsaved changes in an abandoned session are lost.
func (m *Manager) Reap(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastUsed()) > m.idleTTL {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run reaps idle sessions periodically until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			m.Reap(now)
		}
	}
}
