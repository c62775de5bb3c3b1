package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// apiErrorFor maps a service error to its API error. invalidCode is the
// variant used for ErrInvalidCode, which is 400 during setup and 401 during
// login. ok is false for errors with no client-facing meaning.
func apiErrorFor(err error, invalidCode *authsdk.APIError) (apiErr *authsdk.APIError, ok bool) {
	if invalidCode == nil {
		invalidCode = authsdk.ErrInvalidCodeSetup
	}

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return authsdk.ErrInvalidRequest, true
	case errors.Is(err, service.ErrInvalidCredentials):
		return authsdk.ErrInvalidCredentials, true
	case errors.Is(err, service.ErrInvalidToken):
		return authsdk.ErrInvalidToken, true
	case errors.Is(err, service.ErrInvalidCode):
		return invalidCode, true
	case errors.Is(err, service.ErrTOTPAlreadyEnabled):
		return authsdk.ErrTOTPAlreadyEnabled, true
	case errors.Is(err, service.ErrTOTPNotEnabled):
		return authsdk.ErrTOTPNotEnabled, true
	case errors.Is(err, service.ErrTOTPNotSetUp):
		return authsdk.ErrTOTPNotSetUp, true
	case errors.Is(err, service.ErrNotLinked):
		return authsdk.ErrNotLinked, true
	case errors.Is(err, service.ErrAlreadyLinked):
		return authsdk.ErrAlreadyLinked, true
	case errors.Is(err, service.ErrNotFound):
		return authsdk.ErrNotFound, true
	case errors.Is(err, service.ErrChallengeExpired):
		return authsdk.ErrLoginExpired, true
	case errors.Is(err, service.ErrTooManyAttempts):
		return authsdk.ErrTooManyAttempts, true
	case errors.Is(err, service.ErrUsernameTaken):
		return authsdk.ErrUsernameTaken, true
	case errors.Is(err, service.ErrProviderDisabled):
		return authsdk.ErrProviderDisabled, true
	case errors.Is(err, store.ErrConflict):
		return authsdk.ErrConflict, true
	}
	return authsdk.ErrServerError, false
}

// writeServiceError writes err as an API error. Unknown errors are logged
// and returned as server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, invalidCode *authsdk.APIError) {
	apiErr, ok := apiErrorFor(err, invalidCode)
	if !ok {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
	}
	apiErr.WriteError(w)
}
