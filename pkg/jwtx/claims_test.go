package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "https://auth.storefront.test"

func TestNewClaims(t *testing.T) {
	now := time.Now().UTC()
	c := jwtx.NewClaims("user-1", "alice", "customer", []string{jwtx.AMRPassword}, time.Hour, exampleIssuer, now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "alice", c.Username)
	require.Equal(t, "customer", c.Role)
	require.Equal(t, exampleIssuer, c.Issuer)
	require.Equal(t, now.Add(time.Hour).Unix(), c.ExpiresAt.Unix())
	require.NotEmpty(t, c.ID)
}

func TestNewJTIUnique(t *testing.T) {
	require.NotEqual(t, jwtx.NewJTI(), jwtx.NewJTI())
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "auth-service"}}

	require.NoError(t, c.ValidateIssuer("auth-service"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid", func(t *testing.T) {
		c := jwtx.NewClaims("u", "n", "customer", nil, time.Minute, exampleIssuer, now)
		require.NoError(t, c.ValidateExpiry(now, 0))
	})

	t.Run("expired", func(t *testing.T) {
		c := jwtx.NewClaims("u", "n", "customer", nil, time.Minute, exampleIssuer, now.Add(-time.Hour))
		require.ErrorIs(t, c.ValidateExpiry(now, 0), jwtx.ErrExpired)
	})

	t.Run("expired within leeway", func(t *testing.T) {
		c := jwtx.NewClaims("u", "n", "customer", nil, time.Minute, exampleIssuer, now.Add(-61*time.Second))
		require.NoError(t, c.ValidateExpiry(now, 5*time.Second))
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := jwtx.NewClaims("u", "n", "customer", nil, time.Hour, exampleIssuer, now.Add(time.Minute))
		require.ErrorIs(t, c.ValidateExpiry(now, 0), jwtx.ErrNotYetValid)
	})

	t.Run("missing exp", func(t *testing.T) {
		c := &jwtx.Claims{}
		require.ErrorIs(t, c.ValidateExpiry(now, 0), jwtx.ErrInvalidClaim)
	})
}
