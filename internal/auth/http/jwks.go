package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

var errSignerNotReady = errors.New("no signing key loaded")

// JWKSHandler publishes the token verification keys. HS256 deployments
// publish an empty set.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify identity tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(km *jwtx.KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, km.JWKS())
	}
}
