package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserNormalizes(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u1", Email: " Ann@Example.COM ", Name: " Ann ", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.False(t, u.EmailVerified)

	u.MarkVerified(time.Now())
	assert.True(t, u.EmailVerified)
}

func TestNewUserRejectsUnknownRole(t *testing.T) {
	_, err := NewUser(CreateParams{ID: "u1", Email: "a@b.c", Name: "A", PasswordHash: "h", Role: "host"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}
