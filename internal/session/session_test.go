package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func signedToken(t *testing.T, key, subject string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParse(t *testing.T) {
	m, err := NewManager("test-signing-key")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	sub, err := m.Parse(signedToken(t, "test-signing-key", "user-42", time.Hour))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub != "user-42" {
		t.Fatalf("expected subject user-42 got %s", sub)
	}

	if _, err := m.Parse(signedToken(t, "wrong-key", "user-42", time.Hour)); err == nil {
		t.Fatal("expected signature error")
	}
	if _, err := m.Parse(signedToken(t, "test-signing-key", "user-42", -time.Hour)); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestHas(t *testing.T) {
	m, err := NewManager("test-signing-key")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if m.Has("") {
		t.Fatal("empty token must not count as a session")
	}
	if !m.Has(signedToken(t, "test-signing-key", "user-42", time.Hour)) {
		t.Fatal("valid token must count as a session")
	}
	if m.Has("garbage") {
		t.Fatal("malformed token must not count as a session")
	}
}
