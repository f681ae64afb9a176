package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret, issuer, subject string, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(expires.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestVerifyReturnsSubject(t *testing.T) {
	v, err := NewVerifier("secret", "healthdocs")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	subject, err := v.Verify(signToken(t, "secret", "healthdocs", "user-1", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", subject)
	}
}

func TestVerifyKeepsSubjectVerbatim(t *testing.T) {
	v, err := NewVerifier("secret", "")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	subject, err := v.Verify(signToken(t, "secret", "", " alice/x ", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != " alice/x " {
		t.Fatalf("expected untouched subject, got %q", subject)
	}
}

func TestVerifyRejects(t *testing.T) {
	v, err := NewVerifier("secret", "healthdocs")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	valid := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: signToken(t, "other-secret", "healthdocs", "user-1", valid)},
		{name: "wrong issuer", token: signToken(t, "secret", "someone-else", "user-1", valid)},
		{name: "expired", token: signToken(t, "secret", "healthdocs", "user-1", time.Now().Add(-time.Hour))},
		{name: "blank subject", token: signToken(t, "secret", "healthdocs", "  ", valid)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	v, err := NewVerifier("secret", "")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	claims := jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier("  ", ""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
