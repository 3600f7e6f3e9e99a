package passwordservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasherWithCost(bcrypt.MinCost)

	hash, err := h.HashPassword("Str0ng!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!pass", hash)

	assert.NoError(t, h.ComparePasswordHash("Str0ng!pass", hash))
	assert.ErrorIs(t, h.ComparePasswordHash("wrong", hash), ErrPasswordMismatch)
}

func TestHasher_MalformedHash(t *testing.T) {
	h := NewHasherWithCost(bcrypt.MinCost)

	err := h.ComparePasswordHash("anything", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
