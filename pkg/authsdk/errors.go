package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// Error codes written in the "error" field of every error response.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeInvalidCode        = "invalid_code"
	ErrorCodeTOTPAlreadyEnabled = "totp_already_enabled"
	ErrorCodeTOTPNotEnabled     = "totp_not_enabled"
	ErrorCodeTOTPNotSetUp       = "totp_not_set_up"
	ErrorCodeNotLinked          = "not_linked"
	ErrorCodeAlreadyLinked      = "already_linked"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeLoginExpired       = "login_expired"
	ErrorCodeTooManyAttempts    = "too_many_attempts"
	ErrorCodeUsernameTaken      = "username_taken"
	ErrorCodeConflict           = "conflict"
	ErrorCodeInsufficientRole   = "insufficient_role"
	ErrorCodeProviderDisabled   = "provider_disabled"
	ErrorCodeRateLimited        = "rate_limit_exceeded"
	ErrorCodeServerError        = "server_error"
)

// APIError is the error body of the auth API. The server writes it and the
// SDK client decodes it.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError by status and code, so errors.Is works
// against the predefined values below.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// WithDescription returns a copy of e with a different message.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required fields",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid credentials",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the identity token is missing, invalid or expired",
	}

	// ErrInvalidCodeSetup is a wrong code while enabling TOTP.
	ErrInvalidCodeSetup = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidCode,
		Description: "the verification code is invalid",
	}

	// ErrInvalidCodeLogin is a wrong code during a login challenge.
	ErrInvalidCodeLogin = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCode,
		Description: "the verification code is invalid",
	}

	ErrTOTPAlreadyEnabled = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeTOTPAlreadyEnabled,
		Description: "two-factor authentication is already enabled",
	}

	ErrTOTPNotEnabled = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeTOTPNotEnabled,
		Description: "two-factor authentication is not enabled",
	}

	ErrTOTPNotSetUp = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeTOTPNotSetUp,
		Description: "call totp/setup before verifying a code",
	}

	ErrNotLinked = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeNotLinked,
		Description: "no external account is linked",
	}

	ErrAlreadyLinked = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAlreadyLinked,
		Description: "the external account is linked to another user",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "not found",
	}

	ErrLoginExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeLoginExpired,
		Description: "the login attempt expired, sign in again",
	}

	ErrTooManyAttempts = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeTooManyAttempts,
		Description: "too many invalid codes, sign in again",
	}

	ErrUsernameTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeUsernameTaken,
		Description: "the username is already taken",
	}

	ErrConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConflict,
		Description: "the record was changed concurrently, retry the request",
	}

	ErrProviderDisabled = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeProviderDisabled,
		Description: "the identity provider is not configured",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
