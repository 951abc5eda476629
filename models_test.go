package identity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserEnsureStatus(t *testing.T) {
	user := &identity.User{}
	user.EnsureStatus()
	assert.Equal(t, identity.UserStatusActive, user.Status)

	user.Status = identity.UserStatusSuspended
	user.EnsureStatus()
	assert.Equal(t, identity.UserStatusSuspended, user.Status)
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Pepe Rone", (&identity.User{FirstName: "Pepe", LastName: "Rone"}).FullName())
	assert.Equal(t, "Pepe", (&identity.User{FirstName: "Pepe"}).FullName())
	assert.Equal(t, "Rone", (&identity.User{LastName: "Rone"}).FullName())

	var nilUser *identity.User
	assert.Equal(t, "", nilUser.FullName())
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, identity.IsValidStatus(identity.UserStatusActive))
	assert.True(t, identity.IsValidStatus(identity.UserStatusInactive))
	assert.True(t, identity.IsValidStatus(identity.UserStatusSuspended))
	assert.False(t, identity.IsValidStatus("frozen"))
	assert.False(t, identity.IsValidStatus(""))
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	user := activeUser("hidden@example.com", "password123!")

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password_hash")
	assert.NotContains(t, string(raw), user.PasswordHash)
}

func TestNewUserProjection(t *testing.T) {
	t.Run("copies profile fields and nothing sensitive", func(t *testing.T) {
		lastLogin := time.Now()
		user := activeUser("projected@example.com", "password123!")
		user.Department = "Engineering"
		user.LoginAttempts = 3
		user.LastLoginAt = &lastLogin

		projection := identity.NewUserProjection(user)

		assert.Equal(t, user.ID, projection.ID)
		assert.Equal(t, user.Email, projection.Email)
		assert.Equal(t, "Engineering", projection.Department)
		assert.Equal(t, &lastLogin, projection.LastLoginAt)

		raw, err := json.Marshal(projection)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "password")
		assert.NotContains(t, string(raw), "login_attempts")
		assert.NotContains(t, string(raw), "lockout")
	})

	t.Run("nil user projects to nil", func(t *testing.T) {
		assert.Nil(t, identity.NewUserProjection(nil))
	})
}
