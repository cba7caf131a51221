package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("Ana", "Ana@X.com", "some-hash")
	require.NoError(t, err)

	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "ana@x.com", u.Email, "email is normalized to lowercase")
	assert.Equal(t, "some-hash", u.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(u.UpdatedAt), "timestamps start out equal")
	assert.Equal(t, time.UTC, u.CreatedAt.Location())
}

func TestNewUserTrimsWhitespace(t *testing.T) {
	u, err := NewUser("  Ana  ", "  ana@x.com  ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "ana@x.com", u.Email)
}

func TestNewUserValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    [3]string
		wantErr error
	}{
		{"empty name", [3]string{"", "a@b.com", "hash"}, ErrEmptyName},
		{"blank name", [3]string{"   ", "a@b.com", "hash"}, ErrEmptyName},
		{"empty email", [3]string{"Ana", "", "hash"}, ErrEmptyEmail},
		{"blank email", [3]string{"Ana", "  ", "hash"}, ErrEmptyEmail},
		{"empty hash", [3]string{"Ana", "a@b.com", ""}, ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.args[0], tt.args[1], tt.args[2])
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	u, err := NewUser("Ana", "ana@x.com", "hash")
	require.NoError(t, err)
	created := u.CreatedAt

	time.Sleep(time.Millisecond)
	require.NoError(t, u.UpdateProfile("Bia", "Bia@Y.com"))

	assert.Equal(t, "Bia", u.Name)
	assert.Equal(t, "bia@y.com", u.Email)
	assert.True(t, u.CreatedAt.Equal(created), "CreatedAt never changes")
	assert.True(t, u.UpdatedAt.After(created), "UpdatedAt is re-stamped")
}

func TestUpdateProfileValidation(t *testing.T) {
	u, err := NewUser("Ana", "ana@x.com", "hash")
	require.NoError(t, err)

	assert.ErrorIs(t, u.UpdateProfile("", "bia@y.com"), ErrEmptyName)
	assert.ErrorIs(t, u.UpdateProfile("Bia", "  "), ErrEmptyEmail)
	// failed updates leave the entity untouched
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "ana@x.com", u.Email)
}

func TestChangePassword(t *testing.T) {
	u, err := NewUser("Ana", "ana@x.com", "old-hash")
	require.NoError(t, err)
	created := u.CreatedAt

	time.Sleep(time.Millisecond)
	require.NoError(t, u.ChangePassword("new-hash"))

	assert.Equal(t, "new-hash", u.PasswordHash)
	assert.True(t, u.UpdatedAt.After(created))
	assert.ErrorIs(t, u.ChangePassword("  "), ErrEmptyPassword)
	assert.Equal(t, "new-hash", u.PasswordHash)
}
