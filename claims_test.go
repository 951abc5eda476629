package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
)

func sampleClaims() *identity.JWTClaims {
	return &identity.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "c0ffee00-0000-0000-0000-000000000001",
			IssuedAt:  jwt.NewNumericDate(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)),
			ExpiresAt: jwt.NewNumericDate(time.Date(2026, 1, 2, 11, 4, 5, 0, time.UTC)),
		},
		UID:        "c0ffee00-0000-0000-0000-000000000001",
		Email:      "pepe@example.com",
		FirstName:  "Pepe",
		LastName:   "Rone",
		UserRole:   identity.RoleManager,
		UserStatus: identity.UserStatusActive,
	}
}

func TestJWTClaims(t *testing.T) {
	t.Run("accessors expose the embedded claim set", func(t *testing.T) {
		claims := sampleClaims()

		assert.Equal(t, "c0ffee00-0000-0000-0000-000000000001", claims.Subject())
		assert.Equal(t, "c0ffee00-0000-0000-0000-000000000001", claims.UserID())
		assert.Equal(t, "pepe@example.com", claims.UserEmail())
		assert.Equal(t, "Pepe Rone", claims.FullName())
		assert.Equal(t, identity.RoleManager, claims.Role())
		assert.Equal(t, identity.UserStatusActive, claims.Status())
		assert.Equal(t, time.Date(2026, 1, 2, 11, 4, 5, 0, time.UTC), claims.Expires().UTC())
		assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), claims.IssuedAt().UTC())
	})

	t.Run("user id falls back to the subject", func(t *testing.T) {
		claims := sampleClaims()
		claims.UID = ""

		assert.Equal(t, claims.Subject(), claims.UserID())
	})

	t.Run("full name handles missing parts", func(t *testing.T) {
		claims := sampleClaims()

		claims.LastName = ""
		assert.Equal(t, "Pepe", claims.FullName())

		claims.FirstName = ""
		claims.LastName = "Rone"
		assert.Equal(t, "Rone", claims.FullName())
	})

	t.Run("missing status defaults to active", func(t *testing.T) {
		claims := sampleClaims()
		claims.UserStatus = ""

		assert.Equal(t, identity.UserStatusActive, claims.Status())
	})

	t.Run("role checks honor the hierarchy", func(t *testing.T) {
		claims := sampleClaims()

		assert.True(t, claims.HasRole(identity.RoleManager))
		assert.False(t, claims.HasRole(identity.RoleAdmin))

		assert.True(t, claims.IsAtLeast(identity.RoleViewer))
		assert.True(t, claims.IsAtLeast(identity.RoleManager))
		assert.False(t, claims.IsAtLeast(identity.RoleAdmin))
	})

	t.Run("zero timestamps come back as zero times", func(t *testing.T) {
		claims := &identity.JWTClaims{}

		assert.True(t, claims.Expires().IsZero())
		assert.True(t, claims.IssuedAt().IsZero())
	})
}
