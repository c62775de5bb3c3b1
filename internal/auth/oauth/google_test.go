package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/oauth"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGoogleServer(t *testing.T, userinfo map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userinfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGoogle(srv *httptest.Server) *oauth.Google {
	return oauth.NewGoogle(oauth.GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/auth/oauth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: srv.URL + "/userinfo",
	})
}

func TestGoogleConfigured(t *testing.T) {
	require.False(t, oauth.GoogleConfigured(""))
	require.False(t, oauth.GoogleConfigured("mock-client-id"))
	require.True(t, oauth.GoogleConfigured("1234.apps.googleusercontent.com"))
}

func TestGoogleAuthCodeURL(t *testing.T) {
	srv := newGoogleServer(t, nil)
	g := newGoogle(srv)
	require.Equal(t, domain.ProviderGoogle, g.Name())

	u, err := url.Parse(g.AuthCodeURL("state-xyz"))
	require.NoError(t, err)
	require.Equal(t, "state-xyz", u.Query().Get("state"))
	require.Equal(t, "client", u.Query().Get("client_id"))
	require.Contains(t, u.Query().Get("scope"), "email")
}

func TestGoogleExchange(t *testing.T) {
	srv := newGoogleServer(t, map[string]any{
		"sub":            "g-42",
		"email":          "new@x.com",
		"email_verified": true,
		"name":           "New Person",
		"given_name":     "New",
		"family_name":    "Person",
		"picture":        "https://example.com/p.png",
	})
	g := newGoogle(srv)

	p, err := g.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	require.Equal(t, domain.ExternalProfile{
		Provider:      domain.ProviderGoogle,
		Subject:       "g-42",
		Email:         "new@x.com",
		EmailVerified: true,
		DisplayName:   "New Person",
		FirstName:     "New",
		LastName:      "Person",
		PictureURL:    "https://example.com/p.png",
	}, p)
}

func TestGoogleExchangeErrors(t *testing.T) {
	t.Run("bad code", func(t *testing.T) {
		g := newGoogle(newGoogleServer(t, map[string]any{"sub": "g-1"}))
		_, err := g.Exchange(context.Background(), "bad-code")
		require.ErrorIs(t, err, oauth.ErrExchange)
	})

	t.Run("no subject", func(t *testing.T) {
		g := newGoogle(newGoogleServer(t, map[string]any{"email": "a@b.c"}))
		_, err := g.Exchange(context.Background(), "good-code")
		require.ErrorIs(t, err, oauth.ErrMissingSubject)
	})
}

func TestRegistry(t *testing.T) {
	srv := newGoogleServer(t, nil)
	r := oauth.Registry{domain.ProviderGoogle: newGoogle(srv)}

	_, ok := r.Get("google")
	require.True(t, ok)
	_, ok = r.Get("github")
	require.False(t, ok)
}
