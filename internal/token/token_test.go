package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okateru/plango/internal/token"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Hour)

	tok, err := issuer.Issue("plan-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	scope, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if scope != "plan-1" {
		t.Errorf("scope = %q, want plan-1", scope)
	}
}

func TestUnscopedToken(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Hour)

	tok, err := issuer.Issue("")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	scope, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if scope != "" {
		t.Errorf("unscoped token should verify with empty scope, got %q", scope)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := token.NewIssuer("secret-a", time.Hour).Issue("plan-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = token.NewIssuer("secret-b", time.Hour).Verify(tok)
	if !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("wrong secret should fail verification, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Hour)
	if _, err := issuer.Verify("not-a-token"); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("garbage should fail verification, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	// A negative ttl is replaced by the default in NewIssuer, so build an
	// issuer with the smallest ttl we can and let it lapse.
	issuer := token.NewIssuer("secret", time.Nanosecond)

	tok, err := issuer.Issue("plan-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	time.Sleep(1100 * time.Millisecond) // exp has second granularity

	if _, err := issuer.Verify(tok); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expired token should fail verification, got %v", err)
	}
}
