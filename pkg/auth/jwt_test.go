package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("a key the client never sees"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseToken(t *testing.T) {
	raw := signedToken(t, &Claims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ParseToken(raw)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 {
		t.Errorf("got user id %d, want 42", claims.UserID)
	}
	if claims.Expired() {
		t.Error("fresh token reported expired")
	}
}

func TestParseTokenMissingUserID(t *testing.T) {
	raw := signedToken(t, &Claims{})
	if _, err := ParseToken(raw); err == nil {
		t.Fatal("expected error for token without user_id")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestExpired(t *testing.T) {
	raw := signedToken(t, &Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	claims, err := ParseToken(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !claims.Expired() {
		t.Error("stale token not reported expired")
	}
}
