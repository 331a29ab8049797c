package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	token, err := tokens.Sign(Claims{UserID: "user-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	issued := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }
	token, err := tokens.Sign(Claims{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tokens.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := tokens.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokens("one", time.Hour).Sign(Claims{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := NewTokens("two", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsNoneAlg(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	if _, err := NewTokens("secret", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if ok, rehash := CheckPassword(hash, "hunter22"); !ok || rehash {
		t.Fatalf("expected hashed match without rehash, got ok=%v rehash=%v", ok, rehash)
	}
	if ok, _ := CheckPassword(hash, "wrong"); ok {
		t.Fatal("expected mismatch for wrong password")
	}
	if ok, rehash := CheckPassword("legacy-plain", "legacy-plain"); !ok || !rehash {
		t.Fatalf("expected legacy plaintext match with rehash, got ok=%v rehash=%v", ok, rehash)
	}
	if ok, _ := CheckPassword("legacy-plain", "other"); ok {
		t.Fatal("expected legacy mismatch")
	}
	if ok, _ := CheckPassword("", ""); ok {
		t.Fatal("expected empty stored value to never match")
	}
}

func TestRandomTokenIsURLSafe(t *testing.T) {
	tok, err := RandomToken(32)
	if err != nil {
		t.Fatalf("RandomToken: %v", err)
	}
	if len(tok) != 43 {
		t.Fatalf("expected 43 chars for 32 bytes, got %d", len(tok))
	}
	if strings.ContainsAny(tok, "+/=") {
		t.Fatalf("token is not url safe: %s", tok)
	}
}
