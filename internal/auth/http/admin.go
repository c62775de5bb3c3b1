package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// AdminHandler serves user administration. Routes require the admin role.
type AdminHandler struct {
	UserService  *service.UserService
	StoreTimeout time.Duration
}

// HandleSetRole handles PUT /api/admin/users/{id}/role
//
//	@Summary		Change a user's role
//	@Description	Takes effect on the user's next login. Existing tokens keep the old role.
//	@Tags			Admin
//	@Security		CookieAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		authsdk.SetRoleRequest	true	"customer or admin"
//	@Success		200		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Unknown role"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Not an admin"
//	@Failure		404		{object}	authsdk.ErrorResponse	"No such user"
//	@Router			/api/admin/users/{id}/role [put]
func (h *AdminHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SetRoleRequest
	if err := httpx.DecodeJSON(r, maxBodyBytes, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription("Invalid JSON body").WriteError(w)
		return
	}

	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	u, err := h.UserService.SetRole(ctx, r.PathValue("id"), req.Role)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{User: toUser(u)})
}

// HandleDelete handles DELETE /api/admin/users/{id}
//
//	@Summary	Delete a user
//	@Tags		Admin
//	@Security	CookieAuth
//	@Param		id	path	string	true	"User ID"
//	@Success	204
//	@Failure	403	{object}	authsdk.ErrorResponse	"Not an admin"
//	@Failure	404	{object}	authsdk.ErrorResponse	"No such user"
//	@Router		/api/admin/users/{id} [delete]
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext(r, h.StoreTimeout)
	defer cancel()

	if err := h.UserService.DeleteUser(ctx, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
