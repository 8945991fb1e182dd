package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager("test-secret", "issuer", 30*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}
	return mgr
}

func TestNewManagerAndTokenLifecycle(t *testing.T) {
	mgr := newTestManager(t)

	identity := Identity{UserID: 42, Email: "user@example.com", Roles: []string{"admin", "user"}}
	token, expiresAt, err := mgr.CreateAccessToken(identity, 0)
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiresAt.Before(time.Now().Add(29 * time.Minute)) {
		t.Fatalf("expected default 30 minute expiry, got %s", expiresAt)
	}

	claims, err := mgr.VerifyToken(token)
	if err != nil {
		t.Fatalf("unexpected error parsing token: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != identity.UserID {
		t.Fatalf("expected user id %d, got %d (%v)", identity.UserID, id, err)
	}
	if !strings.EqualFold(claims.Email, identity.Email) {
		t.Fatalf("expected email %s, got %s", identity.Email, claims.Email)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "admin" || claims.Roles[1] != "user" {
		t.Fatalf("unexpected roles %v", claims.Roles)
	}
	if claims.IsRefresh() {
		t.Fatal("access token must not carry the refresh marker")
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestCreateAccessTokenHonoursExplicitTTL(t *testing.T) {
	mgr := newTestManager(t)
	_, expiresAt, err := mgr.CreateAccessToken(Identity{UserID: 1, Email: "a@b.c"}, 5*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expiresAt.After(time.Now().Add(6 * time.Minute)) {
		t.Fatalf("expected five minute expiry, got %s", expiresAt)
	}
}

func TestRefreshTokenCarriesTypeMarker(t *testing.T) {
	mgr := newTestManager(t)
	token, expiresAt, err := mgr.CreateRefreshToken(Identity{UserID: 7, Email: "r@example.com", Roles: []string{"user"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expiresAt.Before(time.Now().Add(6 * 24 * time.Hour)) {
		t.Fatalf("expected seven day expiry, got %s", expiresAt)
	}
	claims, err := mgr.VerifyToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claims.IsRefresh() || claims.Type != TokenTypeRefresh {
		t.Fatalf("expected refresh marker, got %q", claims.Type)
	}
}

func TestTokensAreUniqueWithinSameSecond(t *testing.T) {
	mgr := newTestManager(t)
	identity := Identity{UserID: 3, Email: "same@example.com"}
	first, _, err := mgr.CreateRefreshToken(identity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := mgr.CreateRefreshToken(identity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens for repeated minting")
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	mgr := newTestManager(t)
	mgr.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := mgr.CreateAccessToken(Identity{UserID: 9, Email: "old@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mgr.now = time.Now

	if _, err := mgr.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	mgr := newTestManager(t)
	other, err := NewManager("another-secret", "issuer", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, _, err := other.CreateAccessToken(Identity{UserID: 1, Email: "x@example.com"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := mgr.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	mgr := newTestManager(t)
	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := mgr.VerifyToken(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("   ", "", time.Hour, time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
