package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/oauth"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const DefaultLinkTTL = 10 * time.Minute

// Redirect is where the browser goes to start an OAuth round trip. State
// must also be bound to the browser by the caller.
type Redirect struct {
	State string
	URL   string
}

// CallbackResult reports what a callback did. Linked callbacks issue no token.
type CallbackResult struct {
	Linked bool
	User   domain.User
	Login  LoginResult
}

type OAuthService struct {
	Store      store.Store
	Challenges store.Challenges
	Providers  oauth.Registry
	Login      *LoginService

	LinkTTL time.Duration
	Clock   Clock
}

func (s *OAuthService) provider(name string) (oauth.Provider, error) {
	p, ok := s.Providers.Get(name)
	if !ok {
		return nil, ErrProviderDisabled
	}
	return p, nil
}

// BeginLogin starts an anonymous login round trip.
func (s *OAuthService) BeginLogin(ctx context.Context, provider string) (Redirect, error) {
	return s.begin(ctx, provider, "")
}

// BeginLink starts a round trip that attaches the provider identity to userID.
func (s *OAuthService) BeginLink(ctx context.Context, userID, provider string) (Redirect, error) {
	if userID == "" {
		return Redirect{}, ErrInvalidRequest
	}
	return s.begin(ctx, provider, userID)
}

func (s *OAuthService) begin(ctx context.Context, providerName, userID string) (Redirect, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return Redirect{}, err
	}

	state, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return Redirect{}, fmt.Errorf("failed to generate state: %w", err)
	}

	ttl := s.LinkTTL
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	now := s.Clock.now()

	err = s.Challenges.PutLinkRequest(ctx, domain.LinkRequest{
		StateHash: cryptox.FingerprintToken(state),
		UserID:    userID,
		Provider:  p.Name(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return Redirect{}, fmt.Errorf("failed to store link request: %w", err)
	}

	return Redirect{State: state, URL: p.AuthCodeURL(state)}, nil
}

// Callback redeems state, exchanges code with the provider, then either
// completes a link or logs in.
func (s *OAuthService) Callback(ctx context.Context, providerName, state, code string) (CallbackResult, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return CallbackResult{}, err
	}
	if state == "" || code == "" {
		return CallbackResult{}, ErrInvalidState
	}

	req, err := s.Challenges.TakeLinkRequest(ctx, cryptox.FingerprintToken(state))
	if errors.Is(err, store.ErrNotFound) {
		return CallbackResult{}, ErrInvalidState
	}
	if err != nil {
		return CallbackResult{}, fmt.Errorf("failed to load link request: %w", err)
	}
	if req.Expired(s.Clock.now()) || req.Provider != p.Name() {
		return CallbackResult{}, ErrInvalidState
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return CallbackResult{}, err
	}

	if req.IsLink() {
		u, err := s.CompleteLink(ctx, req.UserID, profile)
		if err != nil {
			return CallbackResult{}, err
		}
		return CallbackResult{Linked: true, User: u}, nil
	}

	res, err := s.LoginOrCreate(ctx, profile)
	if err != nil {
		return CallbackResult{}, err
	}
	return CallbackResult{User: res.User, Login: res}, nil
}

// LoginOrCreate signs in the owner of profile, linking by email or creating
// an account when nobody owns it yet.
func (s *OAuthService) LoginOrCreate(ctx context.Context, profile domain.ExternalProfile) (LoginResult, error) {
	return s.Login.Login(ctx, &GoogleProvider{OAuth: s}, Credentials{Profile: profile})
}

// resolveUser finds the account for profile: an existing linkage first,
// then a verified email match that has not opted out, then a new customer.
func (s *OAuthService) resolveUser(ctx context.Context, profile domain.ExternalProfile) (domain.User, error) {
	if profile.Subject == "" {
		return domain.User{}, ErrInvalidRequest
	}
	l := slogx.FromContext(ctx).With(slog.String("provider", profile.Provider))

	var result domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		users := tx.Users()

		u, err := users.GetUserByGoogleID(ctx, profile.Subject)
		if err == nil {
			result = u
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if match, ok, err := emailMatch(ctx, users, profile); err != nil {
			return err
		} else if ok {
			match.GoogleID = profile.Subject
			match.FillProfile(profile)
			saved, err := users.UpdateUser(ctx, match)
			if err != nil {
				return err
			}
			l.Info("oauth identity auto-linked by email", slog.String("user_id", saved.ID))
			result = saved
			return nil
		}

		u, err = newOAuthUser(ctx, users, profile, s.Clock.now())
		if err != nil {
			return err
		}
		if err := users.CreateUser(ctx, u); err != nil {
			return err
		}
		l.Info("user created from oauth profile", slog.String("user_id", u.ID))
		result = u
		return nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to resolve oauth user: %w", err)
	}
	return result, nil
}

// emailMatch looks for an account whose username or email equals the
// provider's verified email and that may be auto-linked.
func emailMatch(ctx context.Context, users store.Users, profile domain.ExternalProfile) (domain.User, bool, error) {
	if profile.Email == "" || !profile.EmailVerified {
		return domain.User{}, false, nil
	}

	for _, lookup := range []func(context.Context, string) (domain.User, error){
		users.GetUserByUsername,
		users.GetUserByEmail,
	} {
		u, err := lookup(ctx, profile.Email)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.User{}, false, err
		}
		if u.AutoLinkDisabled || u.GoogleLinked() {
			continue
		}
		return u, true, nil
	}
	return domain.User{}, false, nil
}

func newOAuthUser(ctx context.Context, users store.Users, profile domain.ExternalProfile, now time.Time) (domain.User, error) {
	username := profile.Email
	if username != "" {
		_, err := users.GetUserByUsername(ctx, username)
		switch {
		case err == nil:
			username = ""
		case !errors.Is(err, store.ErrNotFound):
			return domain.User{}, err
		}
	}
	if username == "" {
		username = profile.Provider + "_" + profile.Subject
	}

	u := domain.User{
		ID:        idx.NewAt(now).String(),
		Username:  username,
		Role:      domain.RoleCustomer,
		GoogleID:  profile.Subject,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	u.FillProfile(profile)
	return u, nil
}

// CompleteLink attaches profile to userID. Linking the identity the user
// already holds is a no-op.
func (s *OAuthService) CompleteLink(ctx context.Context, userID string, profile domain.ExternalProfile) (domain.User, error) {
	if profile.Subject == "" {
		return domain.User{}, ErrInvalidRequest
	}

	var result domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		users := tx.Users()

		u, err := users.GetUserByID(ctx, userID)
		if err != nil {
			return mapUserErr(err)
		}

		if u.GoogleID == profile.Subject {
			result = u
			return nil
		}
		if u.GoogleLinked() {
			return ErrAlreadyLinked
		}

		owner, err := users.GetUserByGoogleID(ctx, profile.Subject)
		switch {
		case err == nil && owner.ID != u.ID:
			return ErrAlreadyLinked
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return err
		}

		u.GoogleID = profile.Subject
		u.AutoLinkDisabled = false
		u.FillProfile(profile)

		saved, err := users.UpdateUser(ctx, u)
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyLinked
		}
		if err != nil {
			return err
		}
		result = saved
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("oauth identity linked", slog.String("user_id", userID))
	return result, nil
}

// Unlink removes the named provider identity and the profile fields it
// supplied, and stops email matching from re-attaching it. A user only ever
// holds a Google linkage, so any other name is ErrProviderDisabled.
func (s *OAuthService) Unlink(ctx context.Context, userID, providerName string) (domain.User, error) {
	if providerName != domain.ProviderGoogle {
		return domain.User{}, ErrProviderDisabled
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, mapUserErr(err)
	}
	if !u.GoogleLinked() {
		return domain.User{}, ErrNotLinked
	}

	u.ClearProviderProfile()
	u.AutoLinkDisabled = true

	saved, err := s.Store.Users().UpdateUser(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to unlink: %w", err)
	}

	l := slogx.FromContext(ctx).With(slog.String("user_id", userID))
	if !saved.HasPassword() {
		l.Warn("unlinked account has no password left")
	}
	l.Info("oauth identity unlinked")
	return saved, nil
}
