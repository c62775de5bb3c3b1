package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// AuthHandler serves registration, password login and the current session.
type AuthHandler struct {
	LoginService *service.LoginService
	UserService  *service.UserService
	Cookies      CookieConfig
	StoreTimeout time.Duration
}

// HandleRegister handles POST /api/auth/register
//
//	@Summary		Register
//	@Description	Creates a customer account with a password. Does not sign in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing or too short fields"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Username taken"
//	@Router			/api/auth/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, maxBodyBytes, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription("Invalid JSON body").WriteError(w)
		return
	}

	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	u, err := h.LoginService.Register(ctx, req.Username, req.Password, req.Email)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.UserResponse{User: toUser(u)})
}

// HandleLogin handles POST /api/auth/login
//
//	@Summary		Password login
//	@Description	Checks a username (or email) and password. Accounts with TOTP get a pending
//	@Description	login instead of a cookie and must call /api/auth/totp/verify-login.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials"
//	@Router			/api/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, maxBodyBytes, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription("Invalid JSON body").WriteError(w)
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	res, err := h.LoginService.LoginWithPassword(ctx, identifier, req.Password)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	if res.State == domain.StateTOTPPending {
		httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{RequiresTOTP: true, UserID: res.UserID})
		return
	}

	h.Cookies.setToken(w, res.Token)
	user := toUser(res.User)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{User: &user})
}

// HandleVerifyLogin handles POST /api/auth/totp/verify-login
//
//	@Summary		Complete a TOTP login
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyLoginRequest	true	"Pending user and code"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		401		{object}	authsdk.ErrorResponse	"Wrong code or expired login"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Too many attempts"
//	@Router			/api/auth/totp/verify-login [post]
func (h *AuthHandler) HandleVerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyLoginRequest
	if err := httpx.DecodeJSON(r, maxBodyBytes, &req); err != nil || req.UserID == "" || req.TOTPToken == "" {
		authsdk.ErrInvalidRequest.WithDescription("userId and totpToken are required").WriteError(w)
		return
	}

	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	res, err := h.LoginService.VerifySecondFactor(ctx, req.UserID, req.TOTPToken)
	if err != nil {
		// Don't reveal which accounts exist or have TOTP.
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrTOTPNotEnabled) {
			err = service.ErrChallengeExpired
		}
		writeServiceError(w, r, err, authsdk.ErrInvalidCodeLogin)
		return
	}

	h.Cookies.setToken(w, res.Token)
	user := toUser(res.User)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{User: &user})
}

// HandleLogout handles POST /api/auth/logout
//
//	@Summary	Log out
//	@Tags		Auth
//	@Success	204
//	@Router		/api/auth/logout [post]
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.clearToken(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /api/auth/me
//
//	@Summary	Current user
//	@Tags		Auth
//	@Security	CookieAuth
//	@Produce	json
//	@Success	200	{object}	authsdk.UserResponse
//	@Failure	401	{object}	authsdk.ErrorResponse	"Missing or invalid token"
//	@Router		/api/auth/me [get]
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	u, err := h.UserService.GetUserByID(ctx, httpx.UserIDFromContext(r.Context()))
	if errors.Is(err, service.ErrNotFound) {
		// The token outlived its account.
		slogx.FromContext(ctx).Warn("token for deleted user")
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{User: toUser(u)})
}
