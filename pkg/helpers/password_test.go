package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash, "hash must not be the plaintext")

	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("samepassword")
	require.NoError(t, err)
	h2, err := HashPassword("samepassword")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "each hash embeds its own salt")

	assert.True(t, CheckPassword(h1, "samepassword"))
	assert.True(t, CheckPassword(h2, "samepassword"))
}

func TestHashPasswordLengthLimit(t *testing.T) {
	// bcrypt only reads the first 72 bytes; longer inputs are rejected
	// outright instead of being silently truncated
	_, err := HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := HashPassword(strings.Repeat("a", 72))
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, strings.Repeat("a", 72)))
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "whatever"))
	assert.False(t, CheckPassword("", "whatever"))
}
