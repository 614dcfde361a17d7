package middleware

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"))
	now := time.Now()

	raw, err := ti.Issue("sess-1", "u1", "coach", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := ti.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.SessionID != "sess-1" || claims.Subject != "u1" || claims.Role != "coach" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	ti := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"))
	other := NewTokenIssuer([]byte("another-secret-another-secret-xx"))
	now := time.Now()

	expired, _ := ti.Issue("s", "u", "player", now.Add(-2*time.Hour), now.Add(-time.Hour))
	foreign, _ := other.Issue("s", "u", "player", now, now.Add(time.Hour))
	valid, _ := ti.Issue("s", "u", "player", now, now.Add(time.Hour))
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for name, raw := range map[string]string{
		"expired":  expired,
		"foreign":  foreign,
		"tampered": tampered,
		"garbage":  "not-a-token",
		"unsigned": "eyJhbGciOiJub25lIn0.eyJzaWQiOiJzIn0.",
		"empty":    "",
	} {
		if _, err := ti.Parse(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: error = %v, want ErrInvalidToken", name, err)
		}
	}
}
