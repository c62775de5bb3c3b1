package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// TokenCookie is the cookie the service stores the identity token in.
const TokenCookie = "auth_token"

// SDKClient talks to the auth API. It keeps the identity cookie in its jar, so
// a successful Login signs in every later call.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// APIPrefix is prepended to auth routes. Default "/api/auth".
	APIPrefix string
}

// NewSDKClient returns a client with a cookie jar that does not follow
// redirects, so OAuth redirects can be inspected.
func NewSDKClient(baseURL string) (*SDKClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &SDKClient{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		APIPrefix: "/api/auth",
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Token returns the identity token currently held in the cookie jar.
func (c *SDKClient) Token() string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == TokenCookie {
			return ck.Value
		}
	}
	return ""
}

func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var out UserResponse
	if err := c.doJSON(ctx, http.MethodPost, c.APIPrefix+"/register", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login signs in with a username or email. When the account has TOTP enabled
// the result carries RequiresTOTP and the user id for VerifyLogin.
func (c *SDKClient) Login(ctx context.Context, identifier, password string) (*LoginResponse, error) {
	req := LoginRequest{Password: password}
	if strings.Contains(identifier, "@") {
		req.Email = identifier
	} else {
		req.Username = identifier
	}

	var out LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, c.APIPrefix+"/login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyLogin completes a pending TOTP login.
func (c *SDKClient) VerifyLogin(ctx context.Context, userID, code string) (*LoginResponse, error) {
	var out LoginResponse
	req := VerifyLoginRequest{UserID: userID, TOTPToken: code}
	if err := c.doJSON(ctx, http.MethodPost, c.APIPrefix+"/totp/verify-login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, c.APIPrefix+"/logout", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (c *SDKClient) Me(ctx context.Context) (*User, error) {
	var out UserResponse
	if err := c.doJSON(ctx, http.MethodGet, c.APIPrefix+"/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}
