package authsdk

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIErrorWriteAndParse(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrLoginExpired.WriteError(rec)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	err := parseErrorResponse(rec.Result(), rec.Body.Bytes())
	require.ErrorIs(t, err, ErrLoginExpired)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, ErrorCodeLoginExpired, apiErr.Code)
}

func TestAPIErrorIsComparesStatus(t *testing.T) {
	require.False(t, errors.Is(ErrInvalidCodeLogin, ErrInvalidCodeSetup))
	require.True(t, errors.Is(ErrInvalidCodeLogin.WithDescription("nope"), ErrInvalidCodeLogin))
}

func TestParseErrorResponseFallback(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadGateway}
	err := parseErrorResponse(resp, []byte("<html>"))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
}
