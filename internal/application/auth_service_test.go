package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarques/users-api/pkg/helpers"
)

func newAuthService(t *testing.T, repo *fakeRepo) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jwt, err := helpers.NewJWTManager("test-secret", "users-api", "users-api-clients", 2*time.Hour)
	require.NoError(t, err)
	return NewAuthService(repo, jwt, rdb, nil, 24*time.Hour), mr
}

func seedUser(t *testing.T, repo *fakeRepo, email, password string) string {
	t.Helper()
	svc := newUserService(repo)
	u, err := svc.Create(context.Background(), "Ana", email, password)
	require.NoError(t, err)
	return u.ID
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeRepo()
	id := seedUser(t, repo, "ana@x.com", "secret123")
	svc, _ := newAuthService(t, repo)

	before := time.Now().UTC()
	res, err := svc.Login(context.Background(), "ana@x.com", "secret123")
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.RefreshToken)
	assert.WithinDuration(t, before.Add(2*time.Hour), res.ExpiresAt, 5*time.Second)
	assert.Equal(t, id, res.User.ID)
	assert.Equal(t, "ana@x.com", res.User.Email)

	claims, err := svc.JWT.ParseAccessToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Subject)
	assert.Equal(t, "ana@x.com", claims.Email)
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "ana@x.com", "secret123")
	svc, _ := newAuthService(t, repo)

	_, err := svc.Login(context.Background(), "Ana@X.com", "secret123")
	assert.NoError(t, err)
}

func TestLoginFailureIsUniform(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "ana@x.com", "secret123")
	svc, _ := newAuthService(t, repo)
	ctx := context.Background()

	_, wrongPassword := svc.Login(ctx, "ana@x.com", "wrong")
	_, unknownEmail := svc.Login(ctx, "nobody@x.com", "secret123")

	// no user enumeration: both failures are the same error value
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestRefreshRotation(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "ana@x.com", "secret123")
	svc, mr := newAuthService(t, repo)
	ctx := context.Background()

	login, err := svc.Login(ctx, "ana@x.com", "secret123")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken, "refresh tokens rotate")
	assert.Equal(t, login.User.ID, refreshed.User.ID)
	assert.Len(t, mr.Keys(), 1, "rotation swaps the stored key, it does not accumulate")

	// the consumed token is gone
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// the rotated token still works
	_, err = svc.Refresh(ctx, refreshed.RefreshToken)
	assert.NoError(t, err)
}

func TestLoginStoresSingleRefreshKey(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "ana@x.com", "secret123")
	svc, mr := newAuthService(t, repo)
	ctx := context.Background()

	_, err := svc.Login(ctx, "ana@x.com", "secret123")
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "auth:refresh:"), keys[0])

	// concurrent sessions each hold their own key
	_, err = svc.Login(ctx, "ana@x.com", "secret123")
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 2)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	svc, _ := newAuthService(t, newFakeRepo())
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	repo := newFakeRepo()
	id := seedUser(t, repo, "ana@x.com", "secret123")
	svc, _ := newAuthService(t, repo)
	ctx := context.Background()

	login, err := svc.Login(ctx, "ana@x.com", "secret123")
	require.NoError(t, err)

	_, err = repo.Delete(ctx, id)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRevoke(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "ana@x.com", "secret123")
	svc, _ := newAuthService(t, repo)
	ctx := context.Background()

	login, err := svc.Login(ctx, "ana@x.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, login.RefreshToken))
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// revoking an unknown token is a no-op
	assert.NoError(t, svc.Revoke(ctx, "never-issued"))
}

func TestGenerateRefreshToken(t *testing.T) {
	t1, err := GenerateRefreshToken()
	require.NoError(t, err)
	t2, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
	// 32 random bytes, base64url without padding
	assert.Len(t, t1, 43)
}
