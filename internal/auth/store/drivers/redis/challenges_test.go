package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/internal/auth/store/drivers/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a throwaway Redis container and returns its URL.
func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container tests skipped in short mode")
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

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func newChallenges(t *testing.T) *redis.Challenges {
	t.Helper()
	opts, err := goredis.ParseURL(setupRedis(t))
	require.NoError(t, err)
	c, err := redis.Open(context.Background(), opts, "test:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisTOTPChallenge(t *testing.T) {
	ctx := context.Background()
	c := newChallenges(t)

	now := time.Now().UTC()
	ch := domain.TOTPChallenge{UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
	require.NoError(t, c.PutTOTPChallenge(ctx, ch))

	for i := 1; i <= domain.MaxTOTPAttempts; i++ {
		got, err := c.IncrementTOTPAttempts(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, i, got.Attempts)
	}

	require.NoError(t, c.PutTOTPChallenge(ctx, ch))
	got, err := c.GetTOTPChallenge(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 0, got.Attempts)
	require.True(t, got.ExpiresAt.Equal(ch.ExpiresAt))

	require.NoError(t, c.DeleteTOTPChallenge(ctx, "u1"))
	_, err = c.GetTOTPChallenge(ctx, "u1")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = c.IncrementTOTPAttempts(ctx, "u1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedisChallengeExpires(t *testing.T) {
	ctx := context.Background()
	c := newChallenges(t)

	now := time.Now().UTC()
	require.NoError(t, c.PutTOTPChallenge(ctx, domain.TOTPChallenge{
		UserID: "u2", CreatedAt: now, ExpiresAt: now.Add(200 * time.Millisecond),
	}))

	require.Eventually(t, func() bool {
		_, err := c.GetTOTPChallenge(ctx, "u2")
		return err == store.ErrNotFound
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRedisLinkRequestTakenOnce(t *testing.T) {
	ctx := context.Background()
	c := newChallenges(t)

	now := time.Now().UTC()
	l := domain.LinkRequest{
		StateHash: "abc", UserID: "u1", Provider: domain.ProviderGoogle,
		CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, c.PutLinkRequest(ctx, l))
	require.ErrorIs(t, c.PutLinkRequest(ctx, l), store.ErrAlreadyExists)

	got, err := c.TakeLinkRequest(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
	require.True(t, got.IsLink())

	_, err = c.TakeLinkRequest(ctx, "abc")
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := c.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Zero(t, n)
	require.NoError(t, c.Ping(ctx))
}
