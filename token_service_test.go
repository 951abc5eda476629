package identity_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService() identity.TokenService {
	cfg := testConfig()
	return identity.NewTokenService(
		[]byte(cfg.SigningKey),
		cfg.TokenExpiration,
		cfg.Issuer,
		jwt.ClaimStrings(cfg.Audience),
		silentLogger{},
	)
}

func TestTokenServiceGenerate(t *testing.T) {
	svc := newTokenService()

	t.Run("embeds the account claim set", func(t *testing.T) {
		user := activeUser("claims@example.com", "password123!")
		user.Role = identity.RoleManager

		token, expiresAt, err := svc.Generate(user)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		assert.WithinDuration(t, time.Now().Add(8*time.Hour), expiresAt, 5*time.Second)

		claims, err := svc.Validate(token)
		require.NoError(t, err)

		assert.Equal(t, user.ID.String(), claims.Subject())
		assert.Equal(t, user.ID.String(), claims.UserID())
		assert.Equal(t, user.Email, claims.UserEmail())
		assert.Equal(t, identity.RoleManager, claims.Role())
		assert.Equal(t, identity.UserStatusActive, claims.Status())
		assert.Equal(t, "Pepe Rone", claims.FullName())
		assert.Equal(t, expiresAt.Unix(), claims.Expires().Unix())
	})

	t.Run("every token gets a unique jti", func(t *testing.T) {
		user := activeUser("jti@example.com", "password123!")

		first, _, err := svc.Generate(user)
		require.NoError(t, err)
		second, _, err := svc.Generate(user)
		require.NoError(t, err)

		parse := func(raw string) *identity.JWTClaims {
			claims := &identity.JWTClaims{}
			_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
				return []byte(testConfig().SigningKey), nil
			})
			require.NoError(t, err)
			return claims
		}

		assert.NotEqual(t, parse(first).RegisteredClaims.ID, parse(second).RegisteredClaims.ID)
	})

	t.Run("nil user errors out", func(t *testing.T) {
		_, _, err := svc.Generate(nil)
		assert.Error(t, err)
	})
}

func TestTokenServiceValidate(t *testing.T) {
	svc := newTokenService()
	cfg := testConfig()

	signWith := func(t *testing.T, key string, mutate func(*jwt.RegisteredClaims)) string {
		t.Helper()
		registered := jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   "some-subject",
			Audience:  jwt.ClaimStrings(cfg.Audience),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		if mutate != nil {
			mutate(&registered)
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &identity.JWTClaims{
			RegisteredClaims: registered,
		}).SignedString([]byte(key))
		require.NoError(t, err)
		return raw
	}

	t.Run("expired token is rejected with no skew tolerance", func(t *testing.T) {
		raw := signWith(t, cfg.SigningKey, func(c *jwt.RegisteredClaims) {
			c.IssuedAt = jwt.NewNumericDate(time.Now().Add(-9 * time.Hour))
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Second))
		})

		_, err := svc.Validate(raw)
		require.Error(t, err)
		assert.ErrorIs(t, err, identity.ErrTokenExpired)
		assert.True(t, identity.IsTokenExpiredError(err))
	})

	t.Run("token from another issuer is rejected", func(t *testing.T) {
		raw := signWith(t, cfg.SigningKey, func(c *jwt.RegisteredClaims) {
			c.Issuer = "someone-else"
		})

		_, err := svc.Validate(raw)
		assert.Error(t, err)
	})

	t.Run("token for another audience is rejected", func(t *testing.T) {
		raw := signWith(t, cfg.SigningKey, func(c *jwt.RegisteredClaims) {
			c.Audience = jwt.ClaimStrings{"other:audience"}
		})

		_, err := svc.Validate(raw)
		assert.Error(t, err)
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		raw := signWith(t, "another-key-another-key-another!", nil)

		_, err := svc.Validate(raw)
		require.Error(t, err)
		assert.True(t, identity.IsMalformedError(err))
	})

	t.Run("tampered payload is rejected", func(t *testing.T) {
		raw := signWith(t, cfg.SigningKey, nil)
		parts := strings.Split(raw, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + ".eyJzdWIiOiJhZG1pbiJ9." + parts[2]

		_, err := svc.Validate(tampered)
		assert.Error(t, err)
	})

	t.Run("unsigned token is rejected", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, &identity.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    cfg.Issuer,
				Audience:  jwt.ClaimStrings(cfg.Audience),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Validate(raw)
		assert.Error(t, err)
	})

	t.Run("garbage input is malformed", func(t *testing.T) {
		_, err := svc.Validate("garbage")
		require.Error(t, err)
		assert.True(t, identity.IsMalformedError(err))
	})
}

func TestTokenValidator(t *testing.T) {
	svc := newTokenService()

	// any TokenService is usable where a TokenValidator is expected
	var validator identity.TokenValidator = svc

	user := activeUser("narrow@example.com", "password123!")
	token, _, err := svc.Generate(user)
	require.NoError(t, err)

	claims, err := validator.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID())

	t.Run("func adapter forwards to the wrapped closure", func(t *testing.T) {
		adapted := identity.TokenValidatorFunc(svc.Validate)

		claims, err := adapted.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, user.Email, claims.UserEmail())
	})

	t.Run("nil adapter fails closed", func(t *testing.T) {
		var adapted identity.TokenValidatorFunc

		_, err := adapted.Validate(token)
		assert.True(t, identity.IsTokenInvalid(err))
	})
}
