package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_PasswordRoundTrip(t *testing.T) {
	h := NewHasher()

	hash, err := h.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	assert.True(t, h.VerifyPassword("correct horse battery staple", hash))
	assert.False(t, h.VerifyPassword("wrong password", hash))
}

func TestHasher_RefreshTokenRoundTrip(t *testing.T) {
	h := NewHasher()

	hash, err := h.HashRefreshToken("some-raw-refresh-token")
	require.NoError(t, err)

	assert.True(t, h.VerifyRefreshToken("some-raw-refresh-token", hash))
	assert.False(t, h.VerifyRefreshToken("another-token", hash))
}

func TestHasher_SaltsAreUnique(t *testing.T) {
	h := NewHasher()

	first, err := h.HashPassword("password123")
	require.NoError(t, err)
	second, err := h.HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.VerifyPassword("password123", first))
	assert.True(t, h.VerifyPassword("password123", second))
}

func TestHasher_DistinctCostProfiles(t *testing.T) {
	h := NewHasher()

	passwordHash, err := h.HashPassword("password123")
	require.NoError(t, err)
	refreshHash, err := h.HashRefreshToken("raw-token")
	require.NoError(t, err)

	// The password profile is memory-hard; the refresh profile is light
	// because it runs on every refresh call.
	assert.Contains(t, passwordHash, "m=65536")
	assert.Contains(t, refreshHash, "m=16384")
}

func TestHasher_VerifyNeverErrorsOnMalformedHash(t *testing.T) {
	h := NewHasher()

	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$",
		"$argon2id$v=19$m=abc,t=1,p=1$c2FsdA$aGFzaA",
		"$bcrypt$v=19$m=16384,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=16384,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=16384,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=16384,t=1,p=1$c2FsdA$",
	}

	for _, hash := range malformed {
		assert.False(t, h.VerifyPassword("password123", hash), "hash %q should not verify", hash)
		assert.False(t, h.VerifyRefreshToken("raw-token", hash), "hash %q should not verify", hash)
	}
}
