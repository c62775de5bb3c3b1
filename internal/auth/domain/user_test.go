package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestFillProfileNeverOverwrites(t *testing.T) {
	u := domain.User{Profile: domain.Profile{DisplayName: "Alice A.", Email: "alice@home.test"}}

	changed := u.FillProfile(domain.ExternalProfile{
		DisplayName:   "Alice From Google",
		FirstName:     "Alice",
		Email:         "alice@gmail.test",
		EmailVerified: true,
	})

	require.True(t, changed)
	require.Equal(t, "Alice A.", u.Profile.DisplayName)
	require.Equal(t, "Alice", u.Profile.FirstName)
	require.Equal(t, "alice@home.test", u.Profile.Email)
	require.False(t, u.Profile.EmailVerified)
	require.False(t, u.EmailFromProvider)
}

func TestFillProfileNoChange(t *testing.T) {
	u := domain.User{Profile: domain.Profile{DisplayName: "x"}}
	require.False(t, u.FillProfile(domain.ExternalProfile{DisplayName: "y"}))
}

func TestClearProviderProfile(t *testing.T) {
	t.Run("provider email is cleared", func(t *testing.T) {
		u := domain.User{GoogleID: "g-1"}
		u.FillProfile(domain.ExternalProfile{DisplayName: "N", PictureURL: "p", Email: "n@x.test", EmailVerified: true})
		u.ClearProviderProfile()

		require.False(t, u.GoogleLinked())
		require.Equal(t, domain.Profile{}, u.Profile)
		require.False(t, u.EmailFromProvider)
	})

	t.Run("own email survives", func(t *testing.T) {
		u := domain.User{GoogleID: "g-1", Profile: domain.Profile{Email: "own@x.test"}}
		u.FillProfile(domain.ExternalProfile{DisplayName: "N", Email: "other@x.test"})
		u.ClearProviderProfile()

		require.Equal(t, "own@x.test", u.Profile.Email)
		require.Empty(t, u.Profile.DisplayName)
	})
}

func TestParseRole(t *testing.T) {
	r, err := domain.ParseRole("admin")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, r)

	_, err = domain.ParseRole("root")
	require.Error(t, err)
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	c := domain.TOTPChallenge{ExpiresAt: now}
	require.True(t, c.Expired(now))
	require.False(t, c.Expired(now.Add(-time.Second)))

	l := domain.LinkRequest{UserID: "u", ExpiresAt: now.Add(time.Minute)}
	require.True(t, l.IsLink())
	require.False(t, l.Expired(now))
}
