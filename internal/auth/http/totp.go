package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// TOTPHandler manages the caller's second factor.
type TOTPHandler struct {
	TOTPService  *service.TOTPService
	StoreTimeout time.Duration
}

// HandleSetup handles POST /api/auth/totp/setup
//
//	@Summary		Start TOTP setup
//	@Description	Generates a new pending secret. Calling again replaces it. TOTP is not
//	@Description	active until /api/auth/totp/verify succeeds.
//	@Tags			TOTP
//	@Security		CookieAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TOTPSetupResponse
//	@Failure		400	{object}	authsdk.ErrorResponse	"TOTP already enabled"
//	@Router			/api/auth/totp/setup [post]
func (h *TOTPHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	setup, err := h.TOTPService.Setup(ctx, httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TOTPSetupResponse{
		Secret:     setup.Secret,
		OTPAuthURL: setup.OTPAuthURL,
		QRCode:     setup.QRCode,
	})
}

// HandleVerify handles POST /api/auth/totp/verify
//
//	@Summary	Enable TOTP
//	@Tags		TOTP
//	@Security	CookieAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		authsdk.TOTPVerifyRequest	true	"Code from the authenticator"
//	@Success	200		{object}	authsdk.TOTPStatusResponse
//	@Failure	400		{object}	authsdk.ErrorResponse	"Invalid code or not set up"
//	@Router		/api/auth/totp/verify [post]
func (h *TOTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TOTPVerifyRequest
	if err := httpx.DecodeJSON(r, maxBodyBytes, &req); err != nil || req.Token == "" {
		authsdk.ErrInvalidRequest.WithDescription("token is required").WriteError(w)
		return
	}

	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	if err := h.TOTPService.Enable(ctx, httpx.UserIDFromContext(r.Context()), req.Token); err != nil {
		writeServiceError(w, r, err, authsdk.ErrInvalidCodeSetup)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TOTPStatusResponse{TOTPEnabled: true})
}

// HandleDisable handles POST /api/auth/totp/disable
//
//	@Summary	Disable TOTP
//	@Tags		TOTP
//	@Security	CookieAuth
//	@Produce	json
//	@Success	200	{object}	authsdk.TOTPStatusResponse
//	@Failure	400	{object}	authsdk.ErrorResponse	"TOTP not enabled"
//	@Router		/api/auth/totp/disable [post]
func (h *TOTPHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	if err := h.TOTPService.Disable(ctx, httpx.UserIDFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TOTPStatusResponse{TOTPEnabled: false})
}
