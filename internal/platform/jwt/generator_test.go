package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestNewGenerator verifies the generator keeps secret and lifetime.
func TestNewGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		secret     string
		expiration time.Duration
	}{
		{"standard config", "my-secret-key", time.Hour},
		{"short expiration", "s", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator(tt.secret, tt.expiration)

			if string(gen.secret) != tt.secret {
				t.Errorf("expected secret %q, got %q", tt.secret, string(gen.secret))
			}
			if gen.expiration != tt.expiration {
				t.Errorf("expected expiration %v, got %v", tt.expiration, gen.expiration)
			}
		})
	}
}

// TestGenerator_GenerateToken checks the payload shape {"user": {"id": ...}}.
func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	gen := NewGenerator("test-secret", time.Hour)
	tokenStr, err := gen.GenerateToken("65f0c0ffee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	user, ok := claims["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected user object claim, got %v", claims["user"])
	}
	if user["id"] != "65f0c0ffee" {
		t.Errorf("expected user.id %q, got %v", "65f0c0ffee", user["id"])
	}
	if _, ok := claims["iat"]; !ok {
		t.Error("expected iat claim to be set")
	}
}

// TestGenerator_GenerateToken_Expiration checks exp = iat + lifetime.
func TestGenerator_GenerateToken_Expiration(t *testing.T) {
	t.Parallel()

	if TokenTTL != time.Hour {
		t.Fatalf("expected token lifetime of 1h, got %v", TokenTTL)
	}

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	gen := NewGenerator("test-secret", TokenTTL)
	gen.now = func() time.Time { return fixed }

	tokenStr, err := gen.GenerateToken("u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(tokenStr, &claims)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	if !claims.IssuedAt.Time.Equal(fixed) {
		t.Errorf("expected iat %v, got %v", fixed, claims.IssuedAt.Time)
	}
	if !claims.ExpiresAt.Time.Equal(fixed.Add(time.Hour)) {
		t.Errorf("expected exp %v, got %v", fixed.Add(time.Hour), claims.ExpiresAt.Time)
	}
}

func TestGenerator_GenerateToken_EmptyUserID(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator("s", time.Hour).GenerateToken(""); err == nil {
		t.Error("expected error for empty user id")
	}
}
