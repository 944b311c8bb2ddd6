package utils_test

import (
	"testing"

	"github.com/golang-jwt/jwt"

	"meetsync/utils"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestIdentityFromToken(t *testing.T) {
	tests := []struct {
		name         string
		claims       jwt.MapClaims
		wantID       int64
		wantUsername string
	}{
		{"id and username claims", jwt.MapClaims{"id": 42, "username": "alice"}, 42, "alice"},
		{"numeric string id", jwt.MapClaims{"id": "42", "username": "alice"}, 42, "alice"},
		{"numeric subject only", jwt.MapClaims{"sub": 42}, 42, ""},
		{"string subject doubles as username", jwt.MapClaims{"id": 42, "sub": "alice"}, 42, "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := utils.IdentityFromToken(signedToken(t, tt.claims))
			if err != nil {
				t.Fatalf("identityFromToken: %v", err)
			}
			if user.ID != tt.wantID || user.Username != tt.wantUsername {
				t.Fatalf("got %+v, want id=%d username=%q", user, tt.wantID, tt.wantUsername)
			}
		})
	}
}

func TestIdentityFromTokenErrors(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"no id claim", signedToken(t, jwt.MapClaims{"username": "alice"})},
		{"non-numeric subject", signedToken(t, jwt.MapClaims{"sub": "alice"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := utils.IdentityFromToken(tt.token); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
