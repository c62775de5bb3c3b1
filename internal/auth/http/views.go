package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

func toUser(u domain.User) authsdk.User {
	return authsdk.User{
		ID:             u.ID,
		Username:       u.Username,
		Role:           u.Role.String(),
		DisplayName:    u.Profile.DisplayName,
		FirstName:      u.Profile.FirstName,
		LastName:       u.Profile.LastName,
		ProfilePicture: u.Profile.PictureURL,
		Email:          u.Profile.Email,
		EmailVerified:  u.Profile.EmailVerified,
		GoogleLinked:   u.GoogleLinked(),
		TOTPEnabled:    u.TOTPEnabled,
		HasPassword:    u.HasPassword(),
		CreatedAt:      u.CreatedAt,
	}
}

// storeContext bounds the store work done for r. Cancelling r cancels it too.
func storeContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), timeout)
}
