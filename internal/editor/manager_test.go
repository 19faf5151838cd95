package editor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/editor"
)

func TestManagerOpenGetClose(t *testing.T) {
	m := editor.NewManager(time.Minute)

	sess := m.Open(nil)
	if m.Len() != 1 {
		t.Fatalf("manager should track the opened session, len=%d", m.Len())
	}

	got, err := m.Get(sess.ID())
	if err != nil || got != sess {
		t.Fatalf("Get returned %v, %v", got, err)
	}

	if _, err := m.Get("missing"); !errors.Is(err, editor.ErrSessionNotFound) {
		t.Fatalf("unknown id should miss, got %v", err)
	}

	if err := m.Close(sess.ID(), false); err != nil {
		t.Fatalf("closing a clean session needs no confirmation: %v", err)
	}
	if m.Len() != 0 {
		t.Fatal("closed session should be removed")
	}
}

func TestManagerCloseDirtyNeedsConfirmation(t *testing.T) {
	m := editor.NewManager(time.Minute)

	sess := m.Open(nil)
	sess.AddElement(domain.TypeTable, 0, 0)

	err := m.Close(sess.ID(), false)
	if !errors.Is(err, editor.ErrConfirmationRequired) {
		t.Fatalf("dirty close should require confirmation, got %v", err)
	}
	if m.Len() != 1 {
		t.Fatal("declined close must leave the session open")
	}

	if err := m.Close(sess.ID(), true); err != nil {
		t.Fatalf("confirmed close: %v", err)
	}
	if m.Len() != 0 {
		t.Fatal("confirmed close should remove the session")
	}
}

func TestManagerReapsIdleSessions(t *testing.T) {
	m := editor.NewManager(time.Minute)

	m.Open(nil)
	m.Open(nil)

	// Only sessions idle past the TTL are removed.
	if removed := m.Reap(time.Now()); removed != 0 {
		t.Fatalf("nothing should be idle yet, reaped %d", removed)
	}

	removed := m.Reap(time.Now().Add(2 * time.Minute))
	if removed != 2 {
		t.Fatalf("both sessions are past the TTL at +2m, reaped %d", removed)
	}
	if m.Len() != 0 {
		t.Fatalf("reaped sessions should be gone, len=%d", m.Len())
	}
}
