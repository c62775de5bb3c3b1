package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"

	_ "github.com/aussiebroadwan/storefront/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const defaultStoreTimeout = 5 * time.Second

// Options configures the HTTP surface.
type Options struct {
	BuildVersion string
	Cookie       CookieConfig

	// SuccessURL and FailureURL are the post-OAuth landing pages.
	SuccessURL string
	FailureURL string

	// StoreTimeout bounds the store work of one request. Default 5s.
	StoreTimeout time.Duration
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys       *jwtx.KeyManager
	verifier   jwtx.Verifier
	store      store.Store
	challenges store.Challenges
	opts       Options
	startTime  time.Time
	logger     *slog.Logger

	LoginService *service.LoginService
	TOTPService  *service.TOTPService
	OAuthService *service.OAuthService
	UserService  *service.UserService
}

func NewRouter(
	km *jwtx.KeyManager,
	st store.Store,
	challenges store.Challenges,
	opts Options,
	logger *slog.Logger,
) *Router {
	if opts.Cookie.Name == "" {
		opts.Cookie.Name = httpx.DefaultTokenCookie
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}
	if opts.SuccessURL == "" {
		opts.SuccessURL = "/"
	}
	if opts.FailureURL == "" {
		opts.FailureURL = "/login"
	}

	r := &Router{
		Mux:        http.NewServeMux(),
		keys:       km,
		store:      st,
		challenges: challenges,
		opts:       opts,
		startTime:  time.Now(),
		logger:     logger,
	}

	// Recover sits inside the logger so panics are logged with the request id.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

// ApplyRoutes registers every route. The services must be set first.
func (r *Router) ApplyRoutes() {
	r.verifier = r.LoginService.Tokens.SessionVerifier()

	r.registerAuth()
	r.registerTOTP()
	r.registerOAuth()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Storefront Authentication API
//	@version		0.1.0
//	@description	Password, TOTP and Google sign-in for the storefront. The identity token
//	@description	is a JWT carried in the httpOnly auth_token cookie.
//
//	@BasePath		/
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						auth_token
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn verifies the identity token and limits the caller by user id.
func (r *Router) authn(h http.HandlerFunc, mws ...httpx.Middleware) http.Handler {
	chain := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier, r.opts.Cookie.Name),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	}
	return httpx.Chain(h, append(chain, mws...)...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		LoginService: r.LoginService,
		UserService:  r.UserService,
		Cookies:      r.opts.Cookie,
		StoreTimeout: r.opts.StoreTimeout,
	}

	// Credential endpoints - strict rate limit by IP to slow guessing
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister), httpx.RateLimitByIP(httpx.StrictLimit)),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(httpx.StrictLimit)),
	)
	r.Mux.Handle("POST /api/auth/totp/verify-login",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyLogin), httpx.RateLimitByIP(httpx.StrictLimit)),
	)

	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout), httpx.RateLimitByIP(httpx.LenientLimit)),
	)
	r.Mux.Handle("GET /api/auth/me", r.authn(h.HandleMe))
}

func (r *Router) registerTOTP() {
	h := &TOTPHandler{
		TOTPService:  r.TOTPService,
		StoreTimeout: r.opts.StoreTimeout,
	}

	r.Mux.Handle("POST /api/auth/totp/setup", r.authn(h.HandleSetup))
	r.Mux.Handle("POST /api/auth/totp/verify", r.authn(h.HandleVerify))
	r.Mux.Handle("POST /api/auth/totp/disable", r.authn(h.HandleDisable))
}

func (r *Router) registerOAuth() {
	h := &OAuthHandler{
		OAuthService: r.OAuthService,
		Cookies:      r.opts.Cookie,
		StoreTimeout: r.opts.StoreTimeout,
		SuccessURL:   r.opts.SuccessURL,
		FailureURL:   r.opts.FailureURL,
	}

	// Browser round trips - lenient rate limit by IP
	r.Mux.Handle("GET /api/auth/oauth/{provider}",
		httpx.Chain(http.HandlerFunc(h.HandleBegin), httpx.RateLimitByIP(httpx.LenientLimit)),
	)
	r.Mux.Handle("GET /api/auth/oauth/{provider}/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback), httpx.RateLimitByIP(httpx.LenientLimit)),
	)

	r.Mux.Handle("GET /api/auth/oauth/{provider}/link", r.authn(h.HandleBeginLink))
	r.Mux.Handle("POST /api/auth/oauth/{provider}/unlink", r.authn(h.HandleUnlink))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{
		UserService:  r.UserService,
		StoreTimeout: r.opts.StoreTimeout,
	}

	admin := httpx.RequireRole(domain.RoleAdmin.String())
	r.Mux.Handle("PUT /api/admin/users/{id}/role", r.authn(h.HandleSetRole, admin))
	r.Mux.Handle("DELETE /api/admin/users/{id}", r.authn(h.HandleDelete, admin))
}

func (r *Router) registerSystem() {
	// Health and key discovery - polled by monitors and verifiers
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.opts.BuildVersion), httpx.RateLimitByIP(httpx.PublicLimit)),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.opts.BuildVersion, r.store, r.challenges, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys), httpx.RateLimitByIP(httpx.PublicLimit)),
	)

	// API docs
	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}
