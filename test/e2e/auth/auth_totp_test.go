package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestTOTPLoginThroughRedis runs a full two-step login with the challenge
// held in Redis.
func TestTOTPLoginThroughRedis(t *testing.T) {
	baseURL := setupAuthService(t)
	ctx := t.Context()

	c, u := registerAndLogin(t, baseURL, "bob")
	secret := enrollTOTP(t, c)
	require.NoError(t, c.Logout(ctx))

	res, err := c.Login(ctx, "bob", testPassword)
	require.NoError(t, err)
	require.True(t, res.RequiresTOTP)
	require.Equal(t, u.ID, res.UserID)

	_, err = c.Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrInvalidToken, "no session before the second factor")

	done, err := c.VerifyLogin(ctx, res.UserID, currentCode(t, secret))
	require.NoError(t, err)
	require.Equal(t, u.ID, done.User.ID)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.TOTPEnabled)
}

// TestTOTPAttemptLimitThroughRedis verifies the attempt counter in Redis
// discards the challenge on the last allowed failure.
func TestTOTPAttemptLimitThroughRedis(t *testing.T) {
	baseURL := setupAuthService(t)
	ctx := t.Context()

	c, _ := registerAndLogin(t, baseURL, "carol")
	secret := enrollTOTP(t, c)

	res, err := c.Login(ctx, "carol", testPassword)
	require.NoError(t, err)
	require.True(t, res.RequiresTOTP)

	bad := wrongCode(t, secret)

	for range domain.MaxTOTPAttempts - 1 {
		_, err = c.VerifyLogin(ctx, res.UserID, bad)
		require.ErrorIs(t, err, authsdk.ErrInvalidCodeLogin)
	}
	_, err = c.VerifyLogin(ctx, res.UserID, bad)
	require.ErrorIs(t, err, authsdk.ErrTooManyAttempts)

	_, err = c.VerifyLogin(ctx, res.UserID, currentCode(t, secret))
	require.ErrorIs(t, err, authsdk.ErrLoginExpired)
}
