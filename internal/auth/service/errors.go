package service

import (
	"errors"
	"time"
)

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrTOTPAlreadyEnabled = errors.New("totp_already_enabled")
	ErrTOTPNotEnabled     = errors.New("totp_not_enabled")
	ErrTOTPNotSetUp       = errors.New("totp_not_set_up")
	ErrNotLinked          = errors.New("not_linked")
	ErrAlreadyLinked      = errors.New("already_linked")
	ErrNotFound           = errors.New("not_found")
	ErrChallengeExpired   = errors.New("login_expired")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrInvalidState       = errors.New("invalid_state")
	ErrProviderDisabled   = errors.New("provider_disabled")
)

// Clock returns the current time. Services fall back to time.Now when unset.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
