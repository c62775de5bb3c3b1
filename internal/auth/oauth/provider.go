// Package oauth talks to external identity providers. Each Provider turns an
// authorization code into a domain.ExternalProfile.
package oauth

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
)

var (
	ErrExchange       = errors.New("oauth: code exchange failed")
	ErrUserInfo       = errors.New("oauth: userinfo request failed")
	ErrMissingSubject = errors.New("oauth: provider returned no subject")
)

type Provider interface {
	Name() string

	// AuthCodeURL is the consent page the browser is sent to.
	AuthCodeURL(state string) string

	// Exchange redeems the callback code and fetches the user's profile.
	Exchange(ctx context.Context, code string) (domain.ExternalProfile, error)
}

// Registry maps provider names to configured providers. Unconfigured
// providers are simply absent.
type Registry map[string]Provider

func (r Registry) Get(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}
