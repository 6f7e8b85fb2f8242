package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifiesRoundTrip(t *testing.T) {
	encoded, err := HashPassword("reading-is-fun")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := VerifyPassword(encoded, "reading-is-fun")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(encoded, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := HashPassword("reading-is-fun")
	require.NoError(t, err)
	second, err := HashPassword("reading-is-fun")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestVerifyPassword_RejectsForeignEncodings(t *testing.T) {
	// Hashes produced by other schemes must never verify, even with the
	// right password. Stored credentials have to use HashPassword.
	foreign := []string{
		"$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", // bcrypt
		"plaintext-password",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA", // argon2i, not argon2id
		"",
	}

	for _, encoded := range foreign {
		ok, err := VerifyPassword(encoded, "reading-is-fun")
		require.NoError(t, err)
		assert.False(t, ok, "encoding %q must not verify", encoded)
	}
}
