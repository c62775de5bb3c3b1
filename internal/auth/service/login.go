package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const (
	DefaultChallengeTTL = 5 * time.Minute

	MinUsernameLength = 3
	MinPasswordLength = 6
)

// Credentials carries whatever a provider needs to authenticate. Each
// provider reads only its own fields.
type Credentials struct {
	Identifier string
	Password   string
	Profile    domain.ExternalProfile
}

// AuthProvider is one way of proving who a user is. The route picks the
// provider; there is no dynamic registration.
type AuthProvider interface {
	// Method is the amr value recorded in issued tokens.
	Method() string
	Authenticate(ctx context.Context, c Credentials) (domain.User, error)
	RequiresSecondFactor(u domain.User) bool
}

// PasswordProvider checks a username or email plus password.
type PasswordProvider struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
}

var _ AuthProvider = (*PasswordProvider)(nil)

func (p *PasswordProvider) Method() string { return jwtx.AMRPassword }

func (p *PasswordProvider) Authenticate(ctx context.Context, c Credentials) (domain.User, error) {
	identifier := strings.TrimSpace(c.Identifier)
	if identifier == "" || c.Password == "" {
		return domain.User{}, ErrInvalidRequest
	}

	u, err := p.Store.Users().GetUserByUsername(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		u, err = p.Store.Users().GetUserByEmail(ctx, identifier)
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if !u.HasPassword() {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := p.Hasher.Verify(c.Password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Warn("unreadable password hash", slog.String("user_id", u.ID), slog.Any("error", err))
		}
		return domain.User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (p *PasswordProvider) RequiresSecondFactor(u domain.User) bool { return u.TOTPEnabled }

// GoogleProvider authenticates with a profile already fetched from Google,
// linking or creating the local account as needed.
type GoogleProvider struct {
	OAuth *OAuthService
}

var _ AuthProvider = (*GoogleProvider)(nil)

func (p *GoogleProvider) Method() string { return jwtx.AMRGoogle }

func (p *GoogleProvider) Authenticate(ctx context.Context, c Credentials) (domain.User, error) {
	return p.OAuth.resolveUser(ctx, c.Profile)
}

// RequiresSecondFactor is false: the provider runs its own second factor.
func (p *GoogleProvider) RequiresSecondFactor(domain.User) bool { return false }

type LoginResult struct {
	State domain.LoginState

	// UserID is set in every state past Anonymous.
	UserID string

	// Token and User are set only when State is StateAuthenticated.
	Token string
	User  domain.User
}

type LoginService struct {
	Store      store.Store
	Challenges store.Challenges
	Password   *PasswordProvider
	Tokens     *TokenIssuer
	TOTP       *TOTPService

	ChallengeTTL time.Duration
	Clock        Clock
}

// Login runs provider p and either issues a token or, when the account
// needs a second factor, parks the login in a TOTP challenge.
func (s *LoginService) Login(ctx context.Context, p AuthProvider, c Credentials) (LoginResult, error) {
	u, err := p.Authenticate(ctx, c)
	if err != nil {
		return LoginResult{}, err
	}

	l := slogx.FromContext(ctx).With(slog.String("user_id", u.ID), slog.String("method", p.Method()))

	if p.RequiresSecondFactor(u) {
		ttl := s.ChallengeTTL
		if ttl <= 0 {
			ttl = DefaultChallengeTTL
		}
		now := s.Clock.now()
		err := s.Challenges.PutTOTPChallenge(ctx, domain.TOTPChallenge{
			UserID:    u.ID,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		})
		if err != nil {
			return LoginResult{}, fmt.Errorf("failed to store TOTP challenge: %w", err)
		}

		l.Info("login awaiting second factor")
		return LoginResult{State: domain.StateTOTPPending, UserID: u.ID}, nil
	}

	token, err := s.Tokens.Issue(u, p.Method())
	if err != nil {
		return LoginResult{}, err
	}

	l.Info("login succeeded")
	return LoginResult{State: domain.StateAuthenticated, UserID: u.ID, Token: token, User: u}, nil
}

func (s *LoginService) LoginWithPassword(ctx context.Context, identifier, password string) (LoginResult, error) {
	return s.Login(ctx, s.Password, Credentials{Identifier: identifier, Password: password})
}

// VerifySecondFactor completes a TOTPPending login. Wrong codes count
// against the challenge; the last allowed failure discards it.
func (s *LoginService) VerifySecondFactor(ctx context.Context, userID, code string) (LoginResult, error) {
	l := slogx.FromContext(ctx).With(slog.String("user_id", userID))

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return LoginResult{}, mapUserErr(err)
	}
	if !u.TOTPEnabled {
		return LoginResult{}, ErrTOTPNotEnabled
	}

	ch, err := s.Challenges.GetTOTPChallenge(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, ErrChallengeExpired
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to load TOTP challenge: %w", err)
	}
	if ch.Expired(s.Clock.now()) {
		_ = s.Challenges.DeleteTOTPChallenge(ctx, userID)
		return LoginResult{}, ErrChallengeExpired
	}
	if ch.Attempts >= domain.MaxTOTPAttempts {
		_ = s.Challenges.DeleteTOTPChallenge(ctx, userID)
		return LoginResult{}, ErrTooManyAttempts
	}

	ok, err := s.TOTP.Check(u, code)
	if err != nil {
		return LoginResult{}, err
	}

	if !ok {
		ch, err := s.Challenges.IncrementTOTPAttempts(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrChallengeExpired
		}
		if err != nil {
			return LoginResult{}, fmt.Errorf("failed to record TOTP attempt: %w", err)
		}

		if ch.Attempts >= domain.MaxTOTPAttempts {
			if err := s.Challenges.DeleteTOTPChallenge(ctx, userID); err != nil {
				return LoginResult{}, fmt.Errorf("failed to discard TOTP challenge: %w", err)
			}
			l.Warn("totp challenge discarded after too many attempts")
			return LoginResult{}, ErrTooManyAttempts
		}

		l.Info("totp code rejected", slog.Int("attempts", ch.Attempts))
		return LoginResult{}, ErrInvalidCode
	}

	if err := s.Challenges.DeleteTOTPChallenge(ctx, userID); err != nil {
		return LoginResult{}, fmt.Errorf("failed to clear TOTP challenge: %w", err)
	}

	token, err := s.Tokens.Issue(u, jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA)
	if err != nil {
		return LoginResult{}, err
	}

	l.Info("login succeeded", slog.String("method", jwtx.AMRMFA))
	return LoginResult{State: domain.StateAuthenticated, UserID: u.ID, Token: token, User: u}, nil
}

// Register creates a password customer. Email is optional.
func (s *LoginService) Register(ctx context.Context, username, password, email string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if len(username) < MinUsernameLength || len(password) < MinPasswordLength {
		return domain.User{}, ErrInvalidRequest
	}
	if email != "" && !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidRequest
	}

	hash, err := s.Password.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Clock.now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Profile:      domain.Profile{Email: email},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}
