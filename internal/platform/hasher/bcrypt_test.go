package hasher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cost int
		want int
	}{
		{"default cost", DefaultCost, DefaultCost},
		{"min cost", bcrypt.MinCost, bcrypt.MinCost},
		{"too low falls back", 1, DefaultCost},
		{"too high falls back", 99, DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewBcryptHasher(tt.cost).cost)
		})
	}
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	for _, plaintext := range []string{"secret1", "", "pässwörd", strings.Repeat("x", 72)} {
		digest, err := h.Hash(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, digest, "digest must not equal plaintext")
		assert.True(t, h.Verify(plaintext, digest))
		assert.False(t, h.Verify(plaintext+"!", digest))
	}
}

func TestBcryptHasher_SaltedDigests(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBcryptHasher_UsesConfiguredCost(t *testing.T) {
	t.Parallel()

	require.Equal(t, 10, DefaultCost)

	h := NewBcryptHasher(DefaultCost)
	digest, err := h.Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestBcryptHasher_HashTooLong(t *testing.T) {
	t.Parallel()

	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", 73))
	assert.Error(t, err)
}

func TestBcryptHasher_VerifyRejectsBytesPastLimit(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	plaintext := strings.Repeat("q", MaxPasswordBytes)
	digest, err := h.Hash(plaintext)
	require.NoError(t, err)

	assert.True(t, h.Verify(plaintext, digest))
	assert.False(t, h.Verify(plaintext+"DIFFERENT", digest))
}

func TestBcryptHasher_VerifyMalformedDigest(t *testing.T) {
	t.Parallel()

	assert.False(t, NewBcryptHasher(bcrypt.MinCost).Verify("secret1", "not-a-hash"))
}
