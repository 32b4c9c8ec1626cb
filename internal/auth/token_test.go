package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret", WithIssuer("test-issuer"))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, expiresAt, err := svc.Issue("user-42", RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiration, got %v", expiresAt)
	}

	identity, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.UserID != "user-42" {
		t.Fatalf("unexpected user id: %s", identity.UserID)
	}
	if identity.Role != RoleAdmin {
		t.Fatalf("unexpected role: %s", identity.Role)
	}
}

func TestTokenExpiry(t *testing.T) {
	current := time.Now().UTC()
	clock := func() time.Time { return current }

	svc, err := NewTokenService("test-secret", WithTokenTTL(time.Hour), WithClock(clock))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, _, err := svc.Issue("user-1", RoleUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("Verify before expiry: %v", err)
	}

	current = current.Add(time.Hour + time.Minute)
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer, err := NewTokenService("secret-a")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	verifier, err := NewTokenService("secret-b")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, _, err := issuer.Issue("user-1", RoleUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Verify(%q): expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

func TestIssueRejectsBadInput(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if _, _, err := svc.Issue("", RoleUser); err == nil {
		t.Fatalf("expected error for empty user id")
	}
	if _, _, err := svc.Issue("user-1", Role("superuser")); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("  "); err == nil {
		t.Fatalf("expected error for blank secret")
	}
}
