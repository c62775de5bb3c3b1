package authsdk

import (
	"time"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// ErrorResponse is the JSON body of an error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// User is the public view of an account. Secrets never appear here.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Role           string    `json:"role"`
	DisplayName    string    `json:"displayName,omitempty"`
	FirstName      string    `json:"firstName,omitempty"`
	LastName       string    `json:"lastName,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Email          string    `json:"email,omitempty"`
	EmailVerified  bool      `json:"emailVerified"`
	GoogleLinked   bool      `json:"googleLinked"`
	TOTPEnabled    bool      `json:"totpEnabled"`
	HasPassword    bool      `json:"hasPassword"`
	CreatedAt      time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// LoginRequest accepts either username or email as the identifier.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// LoginResponse is either a signed-in user, or a pending second factor.
type LoginResponse struct {
	User         *User  `json:"user,omitempty"`
	RequiresTOTP bool   `json:"requiresTotp,omitempty"`
	UserID       string `json:"userId,omitempty"`
}

type UserResponse struct {
	User User `json:"user"`
}

type VerifyLoginRequest struct {
	UserID    string `json:"userId"`
	TOTPToken string `json:"totpToken"`
}

type TOTPSetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"`
}

type TOTPVerifyRequest struct {
	Token string `json:"token"`
}

type TOTPStatusResponse struct {
	TOTPEnabled bool `json:"totpEnabled"`
}

type UnlinkResponse struct {
	GoogleLinked bool `json:"googleLinked"`
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// JWKS is the body of /.well-known/jwks.json.
type JWKS = jwtx.JWKS
