package domain

// Provider names accepted in /oauth/{provider} routes.
const ProviderGoogle = "google"

// ExternalProfile is what an OAuth provider tells us about the signed-in
// account.
type ExternalProfile struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	DisplayName   string
	FirstName     string
	LastName      string
	PictureURL    string
}

// LoginState is where a login attempt stands.
type LoginState int

const (
	StateAnonymous LoginState = iota
	StatePasswordVerified
	StateTOTPPending
	StateAuthenticated
)

func (s LoginState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StatePasswordVerified:
		return "password_verified"
	case StateTOTPPending:
		return "totp_pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
