package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "my_test_jwt_secret"

func TestGenerateAndParseJWT(t *testing.T) {
	tokenString, err := GenerateJWT(testSecret, "sess-1", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate JWT: %v", err)
	}
	if tokenString == "" {
		t.Fatalf("empty token string")
	}

	claims, err := ParseJWT(testSecret, tokenString)
	if err != nil {
		t.Fatalf("failed to parse JWT: %v", err)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("expected session id sess-1, got %q", claims.SessionID)
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tokenString, _ := GenerateJWT(testSecret, "sess-1", time.Hour)
	if _, err := ParseJWT("other", tokenString); err == nil {
		t.Errorf("expected error for wrong secret")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	tokenString, _ := GenerateJWT(testSecret, "sess-1", -time.Minute)
	if _, err := ParseJWT(testSecret, tokenString); err == nil {
		t.Errorf("expected error for expired token")
	}
}

func TestParseJWT_RejectsNoneAlg(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{SessionID: "sess-1"})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(testSecret, s); err == nil {
		t.Errorf("expected error for unsigned token")
	}
}
