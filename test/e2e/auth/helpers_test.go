package auth_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/app"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the fully wired auth application in process, with
 * login challenges kept in a real Redis container.
 */

const (
	testIssuer   = "storefront-e2e"
	testPassword = "secret123"
)

// setupRedisContainer starts Redis and returns its host:port.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

// setupAuthService starts the application with relaxed rate limits and
// returns its base URL.
func setupAuthService(t *testing.T) string {
	t.Helper()
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "1000")
	t.Setenv("RATELIMIT_STRICT_BURST", "1000")
	t.Setenv("RATELIMIT_MODERATE_REQUESTS", "1000")
	t.Setenv("RATELIMIT_MODERATE_BURST", "1000")
	return startAuthService(t)
}

// setupAuthServiceWithDefaultRateLimits is for tests of the limits themselves.
func setupAuthServiceWithDefaultRateLimits(t *testing.T) string {
	t.Helper()
	return startAuthService(t)
}

func startAuthService(t *testing.T) string {
	t.Helper()

	// app.New folds the environment into the shared limit profiles.
	strict, moderate, lenient, public := httpx.StrictLimit, httpx.ModerateLimit, httpx.LenientLimit, httpx.PublicLimit
	t.Cleanup(func() {
		httpx.StrictLimit, httpx.ModerateLimit, httpx.LenientLimit, httpx.PublicLimit = strict, moderate, lenient, public
	})

	redisAddr := setupRedisContainer(t)
	dir := t.TempDir()

	application, err := app.New(app.Config{
		Issuer:              testIssuer,
		Algorithm:           "EdDSA",
		SigningKeyFile:      filepath.Join(dir, "signing.pem"),
		TokenTTL:            time.Hour,
		ChallengeTTL:        5 * time.Minute,
		DatabaseFile:        filepath.Join(dir, "auth.db"),
		PepperFile:          filepath.Join(dir, "pepper"),
		MasterKey:           "e2e-master-key",
		ChallengeStore:      app.ChallengeStoreRedis,
		RedisAddr:           redisAddr,
		OAuthSuccessURL:     "/",
		OAuthFailureURL:     "/login",
		Env:                 "test",
		LogLevel:            "warn",
		LogFormat:           "json",
		StoreTimeout:        5 * time.Second,
		ShutdownGracePeriod: 5 * time.Second,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		if err := application.Shutdown(); err != nil {
			t.Logf("failed to shut down: %v", err)
		}
	})

	return srv.URL
}

func newClient(t *testing.T, baseURL string) *authsdk.SDKClient {
	t.Helper()
	c, err := authsdk.NewSDKClient(baseURL)
	require.NoError(t, err)
	return c
}

// registerAndLogin creates username and returns a client signed in as them.
func registerAndLogin(t *testing.T, baseURL, username string) (*authsdk.SDKClient, *authsdk.User) {
	t.Helper()
	ctx := t.Context()
	c := newClient(t, baseURL)

	_, err := c.Register(ctx, authsdk.RegisterRequest{Username: username, Password: testPassword})
	require.NoError(t, err, "Register should succeed")

	res, err := c.Login(ctx, username, testPassword)
	require.NoError(t, err, "Login should succeed")
	require.NotNil(t, res.User)
	return c, res.User
}

// enrollTOTP enables TOTP for the signed-in client and returns the secret.
func enrollTOTP(t *testing.T, c *authsdk.SDKClient) string {
	t.Helper()
	ctx := t.Context()

	setup, err := c.SetupTOTP(ctx)
	require.NoError(t, err)

	status, err := c.EnableTOTP(ctx, currentCode(t, setup.Secret))
	require.NoError(t, err)
	require.True(t, status.TOTPEnabled)
	return setup.Secret
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

// wrongCode returns a code no window near now accepts.
func wrongCode(t *testing.T, secret string) string {
	t.Helper()
	accepted := map[string]bool{}
	for step := -3; step <= 3; step++ {
		code, err := totp.GenerateCode(secret, time.Now().Add(time.Duration(step)*30*time.Second))
		require.NoError(t, err)
		accepted[code] = true
	}
	for _, c := range []string{"000000", "111111", "222222", "333333", "444444", "555555", "666666", "777777"} {
		if !accepted[c] {
			return c
		}
	}
	t.Fatal("no wrong code available")
	return ""
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
