package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func newTestClaims(expiresIn time.Duration) *AccessTokenClaims {
	now := time.Now()
	return &AccessTokenClaims{
		UserID:   "65b2f0c4a7d9e8b1c3f4a5b6",
		Username: "a1",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "inkwell-test",
			Audience:  jwt.ClaimStrings{"inkwell-test"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	authenticator := NewJWTAuthenticator("inkwell-test", "inkwell-test")

	token, err := authenticator.GenerateToken(newTestClaims(time.Hour), testSecret)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var claims AccessTokenClaims
	if _, err := authenticator.ValidateTokenWithClaims(token, testSecret, &claims); err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.UserID != "65b2f0c4a7d9e8b1c3f4a5b6" {
		t.Fatalf("unexpected user id claim: %q", claims.UserID)
	}
	if claims.Username != "a1" || claims.Role != "user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	authenticator := NewJWTAuthenticator("inkwell-test", "inkwell-test")

	token, err := authenticator.GenerateToken(newTestClaims(time.Hour), testSecret)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var claims AccessTokenClaims
	if _, err := authenticator.ValidateTokenWithClaims(token, "other-secret", &claims); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateTokenRejectsExpiredToken(t *testing.T) {
	authenticator := NewJWTAuthenticator("inkwell-test", "inkwell-test")

	token, err := authenticator.GenerateToken(newTestClaims(-time.Minute), testSecret)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var claims AccessTokenClaims
	_, err = authenticator.ValidateTokenWithClaims(token, testSecret, &claims)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected an expired token error, got %v", err)
	}
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	authenticator := NewJWTAuthenticator("inkwell-test", "inkwell-test")

	claims := newTestClaims(time.Hour)
	claims.Issuer = "someone-else"

	token, err := authenticator.GenerateToken(claims, testSecret)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var parsed AccessTokenClaims
	if _, err := authenticator.ValidateTokenWithClaims(token, testSecret, &parsed); err == nil {
		t.Fatal("expected validation to fail for a foreign issuer")
	}
}

func TestValidateTokenRejectsMissingExpiry(t *testing.T) {
	authenticator := NewJWTAuthenticator("inkwell-test", "inkwell-test")

	claims := newTestClaims(time.Hour)
	claims.ExpiresAt = nil

	token, err := authenticator.GenerateToken(claims, testSecret)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var parsed AccessTokenClaims
	if _, err := authenticator.ValidateTokenWithClaims(token, testSecret, &parsed); err == nil {
		t.Fatal("expected validation to require an expiry")
	}
}
