package jwtauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"psyjaciele/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

func TestManager_IssueVerify_RoundTrip(t *testing.T) {
	m := NewManager(Config{Secret: "test-secret"})

	token, err := m.Issue(auth.Principal{UserID: "u-1", Email: "a@b.c", Username: "ala", Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := m.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != auth.RoleAdmin || claims.Username != "ala" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.Principal().IsAdmin() {
		t.Fatalf("expected admin principal")
	}
}

func TestManager_Verify_Expired(t *testing.T) {
	m := NewManager(Config{Secret: "test-secret", TTL: time.Hour})
	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }

	token, err := m.Issue(auth.Principal{UserID: "u-1", Role: auth.RoleUser})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	m.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := m.Verify(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestManager_Verify_WrongSecret(t *testing.T) {
	signer := NewManager(Config{Secret: "one"})
	verifier := NewManager(Config{Secret: "two"})

	token, err := signer.Issue(auth.Principal{UserID: "u-1", Role: auth.RoleUser})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestManager_Verify_RejectsNoneAlg(t *testing.T) {
	m := NewManager(Config{Secret: "test-secret"})

	claims := jwt.MapClaims{
		"user_id": "u-1",
		"role":    "admin",
		"iss":     defaultIssuer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := m.Verify(context.Background(), unsigned); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}

func TestManager_Issue_Anonymous(t *testing.T) {
	m := NewManager(Config{Secret: "test-secret"})
	if _, err := m.Issue(auth.Anonymous()); err == nil {
		t.Fatalf("expected error issuing token for anonymous")
	}
	if _, err := m.Verify(context.Background(), "  "); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
}
