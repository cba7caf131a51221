package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager("test-secret", "users-api", "users-api-clients", ttl)
	require.NoError(t, err)
	return m
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", "iss", "aud", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWT(t, 2*time.Hour)

	before := time.Now().UTC()
	token, exp, err := m.GenerateAccessToken("7", "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.NotEmpty(t, claims.ID, "jti is set for future revocation")

	// expiry is issuance time + configured lifetime
	assert.WithinDuration(t, before.Add(2*time.Hour), exp, 5*time.Second)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
	assert.True(t, exp.After(time.Now()))
}

func TestAccessTokenUniqueIDs(t *testing.T) {
	m := newTestJWT(t, time.Hour)
	t1, _, err := m.GenerateAccessToken("1", "a@b.com")
	require.NoError(t, err)
	t2, _, err := m.GenerateAccessToken("1", "a@b.com")
	require.NoError(t, err)

	c1, err := m.ParseAccessToken(t1)
	require.NoError(t, err)
	c2, err := m.ParseAccessToken(t2)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestParseAccessTokenRejections(t *testing.T) {
	m := newTestJWT(t, time.Hour)
	token, _, err := m.GenerateAccessToken("7", "a@b.com")
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewJWTManager("other-secret", "users-api", "users-api-clients", time.Hour)
		require.NoError(t, err)
		_, err = other.ParseAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewJWTManager("test-secret", "someone-else", "users-api-clients", time.Hour)
		require.NoError(t, err)
		_, err = other.ParseAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other, err := NewJWTManager("test-secret", "users-api", "other-clients", time.Hour)
		require.NoError(t, err)
		_, err = other.ParseAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := newTestJWT(t, -time.Minute)
		tok, _, err := expired.GenerateAccessToken("7", "a@b.com")
		require.NoError(t, err)
		_, err = m.ParseAccessToken(tok)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ParseAccessToken("not.a.jwt")
		assert.Error(t, err)
	})

	t.Run("non-HMAC method", func(t *testing.T) {
		// an unsigned token with otherwise valid claims must not parse
		now := time.Now().UTC()
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			Email: "a@b.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "7",
				Issuer:    "users-api",
				Audience:  jwt.ClaimStrings{"users-api-clients"},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})
		tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.ParseAccessToken(tok)
		assert.Error(t, err)
	})
}
