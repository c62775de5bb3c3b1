package http

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// OAuthHandler runs the external provider round trip.
type OAuthHandler struct {
	OAuthService *service.OAuthService
	Cookies      CookieConfig
	StoreTimeout time.Duration

	// SuccessURL and FailureURL are where the browser lands after the callback.
	SuccessURL string
	FailureURL string
}

// HandleBegin handles GET /api/auth/oauth/{provider}
//
//	@Summary		Start an OAuth login
//	@Tags			OAuth
//	@Param			provider	path	string	true	"Provider name, e.g. google"
//	@Success		302
//	@Failure		503	{object}	authsdk.ErrorResponse	"Provider not configured"
//	@Router			/api/auth/oauth/{provider} [get]
func (h *OAuthHandler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	redirect, err := h.OAuthService.BeginLogin(ctx, r.PathValue("provider"))
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	h.redirectToProvider(w, r, redirect)
}

// HandleBeginLink handles GET /api/auth/oauth/{provider}/link
//
//	@Summary		Link a provider to the current account
//	@Tags			OAuth
//	@Security		CookieAuth
//	@Param			provider	path	string	true	"Provider name, e.g. google"
//	@Success		302
//	@Failure		401	{object}	authsdk.ErrorResponse	"Not signed in"
//	@Failure		503	{object}	authsdk.ErrorResponse	"Provider not configured"
//	@Router			/api/auth/oauth/{provider}/link [get]
func (h *OAuthHandler) HandleBeginLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	redirect, err := h.OAuthService.BeginLink(ctx, httpx.UserIDFromContext(r.Context()), r.PathValue("provider"))
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	h.redirectToProvider(w, r, redirect)
}

func (h *OAuthHandler) redirectToProvider(w http.ResponseWriter, r *http.Request, redirect service.Redirect) {
	h.Cookies.setState(w, redirect.State)
	httpx.NoCache(w)
	http.Redirect(w, r, redirect.URL, http.StatusFound)
}

// HandleCallback handles GET /api/auth/oauth/{provider}/callback
//
//	@Summary		OAuth callback
//	@Description	Redeems the state, then either signs in (setting the identity cookie) or
//	@Description	completes a link. Always redirects, to the failure URL with ?error= on error.
//	@Tags			OAuth
//	@Param			provider	path	string	true	"Provider name"
//	@Param			state		query	string	true	"State from the authorize redirect"
//	@Param			code		query	string	true	"Authorization code"
//	@Success		302
//	@Router			/api/auth/oauth/{provider}/callback [get]
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())
	provider := r.PathValue("provider")
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		log.Info("provider denied authorization", slog.String("provider", provider), slog.String("error", errCode))
		h.fail(w, r, "access_denied")
		return
	}

	state := q.Get("state")
	bound := stateFromCookie(r)
	h.Cookies.clearState(w)
	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(bound)) != 1 {
		h.fail(w, r, "invalid_state")
		return
	}

	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	res, err := h.OAuthService.Callback(ctx, provider, state, q.Get("code"))
	if err != nil {
		code := "server_error"
		if errors.Is(err, service.ErrInvalidState) {
			code = "invalid_state"
		} else if apiErr, ok := apiErrorFor(err, nil); ok {
			code = apiErr.Code
		} else {
			log.Error("oauth callback failed", slog.String("provider", provider), slog.Any("error", err))
		}
		h.fail(w, r, code)
		return
	}

	if res.Linked {
		http.Redirect(w, r, withQuery(h.SuccessURL, "linked", provider), http.StatusFound)
		return
	}

	h.Cookies.setToken(w, res.Login.Token)
	http.Redirect(w, r, h.SuccessURL, http.StatusFound)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, withQuery(h.FailureURL, "error", code), http.StatusFound)
}

// HandleUnlink handles POST /api/auth/oauth/{provider}/unlink
//
//	@Summary		Unlink a provider
//	@Description	Detaches the provider and its profile. Later provider logins no longer
//	@Description	match this account by email.
//	@Tags			OAuth
//	@Security		CookieAuth
//	@Produce		json
//	@Param			provider	path		string	true	"Provider name"
//	@Success		200			{object}	authsdk.UnlinkResponse
//	@Failure		400			{object}	authsdk.ErrorResponse	"Not linked"
//	@Failure		503			{object}	authsdk.ErrorResponse	"Unknown or disabled provider"
//	@Router			/api/auth/oauth/{provider}/unlink [post]
func (h *OAuthHandler) HandleUnlink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	u, err := h.OAuthService.Unlink(ctx, httpx.UserIDFromContext(r.Context()), r.PathValue("provider"))
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UnlinkResponse{GoogleLinked: u.GoogleLinked()})
}

// withQuery adds key=value to raw, keeping any query it already has.
func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
