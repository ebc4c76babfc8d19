package jwtmw

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signRaw signs arbitrary claims with HS256 for negative test cases.
func signRaw(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifier_RoundTrip(t *testing.T) {
	t.Parallel()

	gen := NewGenerator("secret", time.Hour)
	token, err := gen.GenerateToken("user-42")
	require.NoError(t, err)

	id, err := NewVerifier("secret").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", id)
}

func TestVerifier_Rejections(t *testing.T) {
	t.Parallel()

	const secret = "secret"
	now := time.Now()

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		User:             UserClaim{ID: "u1"},
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not.a.token", ErrInvalidToken},
		{"empty", "", ErrInvalidToken},
		{
			name: "wrong secret",
			token: signRaw(t, "other", Claims{
				User:             UserClaim{ID: "u1"},
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
			}),
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired",
			token: signRaw(t, secret, Claims{
				User:             UserClaim{ID: "u1"},
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))},
			}),
			wantErr: ErrExpiredToken,
		},
		{
			name: "no expiry",
			token: signRaw(t, secret, Claims{
				User: UserClaim{ID: "u1"},
			}),
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing user claim",
			token: signRaw(t, secret, jwt.MapClaims{
				"sub": "u1",
				"exp": now.Add(time.Hour).Unix(),
			}),
			wantErr: ErrMissingIdentity,
		},
		{
			name: "user claim without id",
			token: signRaw(t, secret, jwt.MapClaims{
				"user": map[string]string{"name": "A"},
				"exp":  now.Add(time.Hour).Unix(),
			}),
			wantErr: ErrMissingIdentity,
		},
		{"none algorithm", noneToken, ErrInvalidToken},
	}

	v := NewVerifier(secret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := v.Verify(tt.token)
			assert.Empty(t, id)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestVerifier_ExpiryUsesClock(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator("secret", time.Hour)
	gen.now = func() time.Time { return issued }
	token, err := gen.GenerateToken("u1")
	require.NoError(t, err)

	v := NewVerifier("secret")

	v.now = func() time.Time { return issued.Add(59 * time.Minute) }
	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	v.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
