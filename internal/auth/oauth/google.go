package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	// mockClientID is the placeholder shipped in sample env files.
	mockClientID = "mock-client-id"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint and UserInfoURL default to Google's. Tests point them at a
	// local server.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// GoogleConfigured reports whether clientID looks like a real client.
func GoogleConfigured(clientID string) bool {
	return clientID != "" && clientID != mockClientID
}

type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

var _ Provider = (*Google)(nil)

func NewGoogle(cfg GoogleConfig) *Google {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = GoogleUserInfoURL
	}

	return &Google{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
	}
}

func (g *Google) Name() string { return domain.ProviderGoogle }

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

func (g *Google) Exchange(ctx context.Context, code string) (domain.ExternalProfile, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return domain.ExternalProfile{}, err
	}

	resp, err := g.config.Client(ctx, tok).Do(req)
	if err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.ExternalProfile{}, fmt.Errorf("%w: status %d", ErrUserInfo, resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	if info.Sub == "" {
		return domain.ExternalProfile{}, ErrMissingSubject
	}

	return domain.ExternalProfile{
		Provider:      domain.ProviderGoogle,
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		DisplayName:   info.Name,
		FirstName:     info.GivenName,
		LastName:      info.FamilyName,
		PictureURL:    info.Picture,
	}, nil
}
