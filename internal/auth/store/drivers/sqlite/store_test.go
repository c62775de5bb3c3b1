package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newUser(username string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:         domain.RoleCustomer,
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsersCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("alice")
	u.Profile.Email = "alice@example.com"
	u.GoogleID = "g-alice"
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, domain.RoleCustomer, got.Role)
	require.Equal(t, int64(1), got.Version)
	require.False(t, got.CreatedAt.IsZero())

	byName, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	byGoogle, err := s.Users().GetUserByGoogleID(ctx, "g-alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byGoogle.ID)

	byEmail, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = s.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByGoogleID(ctx, "")
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestUsersUniqueness(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := newUser("alice")
	a.GoogleID = "g-1"
	require.NoError(t, s.Users().CreateUser(ctx, a))

	dupName := newUser("alice")
	require.ErrorIs(t, s.Users().CreateUser(ctx, dupName), store.ErrAlreadyExists)

	dupGoogle := newUser("bob")
	dupGoogle.GoogleID = "g-1"
	require.ErrorIs(t, s.Users().CreateUser(ctx, dupGoogle), store.ErrAlreadyExists)

	// Users without a Google id do not collide with each other.
	require.NoError(t, s.Users().CreateUser(ctx, newUser("carol")))
	require.NoError(t, s.Users().CreateUser(ctx, newUser("dave")))
}

func TestUsersUpdateOptimisticVersion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	first, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	second := first

	first.Profile.DisplayName = "Alice"
	saved, err := s.Users().UpdateUser(ctx, first)
	require.NoError(t, err)
	require.Equal(t, int64(2), saved.Version)

	second.Role = domain.RoleAdmin
	_, err = s.Users().UpdateUser(ctx, second)
	require.ErrorIs(t, err, store.ErrConflict)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Profile.DisplayName)
	require.Equal(t, domain.RoleCustomer, got.Role)

	missing := newUser("ghost")
	_, err = s.Users().UpdateUser(ctx, missing)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersTOTPRequiresSecret(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("bob")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	got.TOTPEnabled = true
	_, err = s.Users().UpdateUser(ctx, got)
	require.Error(t, err)
}

func TestUsersDeleteCascadesChallenges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	require.NoError(t, s.Challenges().PutTOTPChallenge(ctx, domain.TOTPChallenge{
		UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
	}))

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)

	_, err := s.Challenges().GetTOTPChallenge(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTOTPChallengeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("bob")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	c := domain.TOTPChallenge{UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
	require.NoError(t, s.Challenges().PutTOTPChallenge(ctx, c))

	for i := 1; i <= 3; i++ {
		got, err := s.Challenges().IncrementTOTPAttempts(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, i, got.Attempts)
	}

	// A fresh password login replaces the challenge and resets attempts.
	require.NoError(t, s.Challenges().PutTOTPChallenge(ctx, c))
	got, err := s.Challenges().GetTOTPChallenge(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Attempts)
	require.WithinDuration(t, c.ExpiresAt, got.ExpiresAt, time.Microsecond)

	require.NoError(t, s.Challenges().DeleteTOTPChallenge(ctx, u.ID))
	_, err = s.Challenges().IncrementTOTPAttempts(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTakeLinkRequestOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	link := domain.LinkRequest{
		StateHash: "state-link", UserID: u.ID, Provider: domain.ProviderGoogle,
		CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	}
	login := domain.LinkRequest{
		StateHash: "state-login", Provider: domain.ProviderGoogle,
		CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, s.Challenges().PutLinkRequest(ctx, link))
	require.NoError(t, s.Challenges().PutLinkRequest(ctx, login))

	got, err := s.Challenges().TakeLinkRequest(ctx, "state-link")
	require.NoError(t, err)
	require.True(t, got.IsLink())
	require.Equal(t, u.ID, got.UserID)

	_, err = s.Challenges().TakeLinkRequest(ctx, "state-link")
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err = s.Challenges().TakeLinkRequest(ctx, "state-login")
	require.NoError(t, err)
	require.False(t, got.IsLink())
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("alice")
	v := newUser("bob")
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Users().CreateUser(ctx, v))

	now := time.Now().UTC()
	require.NoError(t, s.Challenges().PutTOTPChallenge(ctx, domain.TOTPChallenge{
		UserID: u.ID, CreatedAt: now.Add(-10 * time.Minute), ExpiresAt: now.Add(-5 * time.Minute),
	}))
	require.NoError(t, s.Challenges().PutTOTPChallenge(ctx, domain.TOTPChallenge{
		UserID: v.ID, CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
	}))
	require.NoError(t, s.Challenges().PutLinkRequest(ctx, domain.LinkRequest{
		StateHash: "old", Provider: domain.ProviderGoogle,
		CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Minute),
	}))

	n, err := s.Challenges().DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	_, err = s.Challenges().GetTOTPChallenge(ctx, v.ID)
	require.NoError(t, err)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("alice")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, u))
		return store.ErrConflict
	})
	require.ErrorIs(t, err, store.ErrConflict)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
}
