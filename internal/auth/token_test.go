package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newSigner(t *testing.T) *TokenSigner {
	t.Helper()
	s, err := NewTokenSigner(testSecret)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}
	return s
}

func TestNewTokenSigner_ShortSecret(t *testing.T) {
	if _, err := NewTokenSigner("short"); err == nil {
		t.Fatalf("expected error for short secret")
	}
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	s := newSigner(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tok, err := s.Issue(42, "sess-1", exp)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("token does not look like a JWT: %q", tok)
	}

	c, err := s.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.UserID != 42 || c.SessionID != "sess-1" || !c.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestIssue_RequiresIDs(t *testing.T) {
	s := newSigner(t)
	if _, err := s.Issue(0, "x", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected error for zero user id")
	}
	if _, err := s.Issue(1, "", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected error for empty session id")
	}
}

func TestValidate_Expired(t *testing.T) {
	s := newSigner(t)
	tok, _ := s.Issue(1, "s", time.Now().Add(time.Minute))

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := s.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	s := newSigner(t)
	good, _ := s.Issue(7, "s", time.Now().Add(time.Hour))

	other, _ := NewTokenSigner("another-secret-of-some-length")
	foreign, _ := other.Issue(7, "s", time.Now().Add(time.Hour))

	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ID:        "s",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "7",
		ID:      "s",
		Issuer:  Issuer,
	}).SignedString([]byte(testSecret))

	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ID:        "s",
		Issuer:    Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "7",
		ID:        "s",
		Issuer:    Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	parts := strings.Split(good, ".")
	flip := byte('A')
	if parts[2][0] == 'A' {
		flip = 'B'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(flip) + parts[2][1:]

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"tampered":     tampered,
		"foreign":      foreign,
		"wrong issuer": wrongIssuer,
		"no expiry":    noExpiry,
		"bad subject":  badSubject,
		"alg none":     noneAlg,
	}
	for name, tok := range cases {
		if _, err := s.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
