package auth

import (
	"testing"
	"time"

	"github.com/Nurkic4/www/internal/entity"
)

func TestNewManagerAndTokenLifecycle(t *testing.T) {
	mgr, err := NewManager("test-secret", "issuer", time.Minute*30)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	user := &entity.DbUser{ID: 42, Username: "alice", Role: entity.RoleAdmin}
	token, expiresAt, err := mgr.GenerateToken(user)
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("expected future expiry time")
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error parsing token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %d, got %d", user.ID, claims.UserID)
	}
	if claims.Username() != user.Username {
		t.Fatalf("expected username %s, got %s", user.Username, claims.Username())
	}
	if claims.IsLegacy() {
		t.Fatal("token with user id must not be treated as legacy")
	}
}

func TestLegacyTokenCarriesOnlyUsername(t *testing.T) {
	mgr, err := NewManager("test-secret", "issuer", time.Minute*30)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	token, err := mgr.GenerateLegacyToken("bob")
	if err != nil {
		t.Fatalf("unexpected error generating legacy token: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error parsing legacy token: %v", err)
	}
	if !claims.IsLegacy() {
		t.Fatal("expected legacy token to be detected")
	}
	if claims.Username() != "bob" {
		t.Fatalf("expected username bob, got %s", claims.Username())
	}
	if claims.UserID != 0 {
		t.Fatalf("expected zero user id, got %d", claims.UserID)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	mgr, _ := NewManager("secret-a", "issuer", time.Minute)
	other, _ := NewManager("secret-b", "issuer", time.Minute)

	token, _, err := mgr.GenerateToken(&entity.DbUser{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}

	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("expected parse to fail with different secret")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("   ", "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
