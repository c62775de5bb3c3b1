package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/storefront/internal/auth/http"
	"github.com/aussiebroadwan/storefront/internal/auth/oauth"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	redisstore "github.com/aussiebroadwan/storefront/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/storefront/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	// totpIssuer labels the account in authenticator apps.
	totpIssuer = "Storefront"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         *sqlite.Store
	challenges store.Challenges
	redis      *redisstore.Challenges // nil unless AUTH_CHALLENGE_STORE=redis
	keyManager *jwtx.KeyManager
	hasher     *cryptox.PasswordHasher
	sealer     *cryptox.Sealer

	// Services
	tokenIssuer         *service.TokenIssuer
	totpService         *service.TOTPService
	loginService        *service.LoginService
	oauthService        *service.OAuthService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server  *http.Server
	router  *httpapi.Router
	running bool
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Rate limit profiles must be final before routes are built
	httpx.ApplyRateLimitEnv()

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)

	if app.sealer, err = initSealer(cfg, app.logger); err != nil {
		return nil, fmt.Errorf("failed to initialize sealer: %w", err)
	}

	if app.keyManager, err = InitAuthKeys(cfg, app.logger); err != nil {
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initChallenges(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the HTTP handler with all routes and middleware applied.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.running = true

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.running {
		app.housekeepingService.Stop()
		app.running = false
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the user database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initChallenges picks the store for TOTP challenges and OAuth link requests.
func (app *Application) initChallenges() error {
	switch app.cfg.ChallengeStore {
	case ChallengeStoreSQLite, "":
		app.challenges = app.db.Challenges()

	case ChallengeStoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.StoreTimeout)
		defer cancel()

		rc, err := redisstore.Open(ctx, &goredis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		}, redisstore.DefaultPrefix)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redis = rc
		app.challenges = rc

	default:
		return fmt.Errorf("unknown AUTH_CHALLENGE_STORE %q (supported: sqlite, redis)", app.cfg.ChallengeStore)
	}

	app.logger.Info("challenge store ready", "store", app.cfg.ChallengeStore)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenIssuer = &service.TokenIssuer{
		KeyManager: app.keyManager,
		Issuer:     app.cfg.Issuer,
		TTL:        app.cfg.TokenTTL,
	}

	app.totpService = &service.TOTPService{
		Store:  app.db,
		Sealer: app.sealer,
		Issuer: totpIssuer,
	}

	app.loginService = &service.LoginService{
		Store:        app.db,
		Challenges:   app.challenges,
		Password:     &service.PasswordProvider{Store: app.db, Hasher: app.hasher},
		Tokens:       app.tokenIssuer,
		TOTP:         app.totpService,
		ChallengeTTL: app.cfg.ChallengeTTL,
	}

	providers := oauth.Registry{}
	if oauth.GoogleConfigured(app.cfg.GoogleClientID) {
		google := oauth.NewGoogle(oauth.GoogleConfig{
			ClientID:     app.cfg.GoogleClientID,
			ClientSecret: app.cfg.GoogleClientSecret,
			RedirectURL:  app.cfg.GoogleRedirectURL,
		})
		providers[google.Name()] = google
		app.logger.Info("google sign-in enabled")
	} else {
		app.logger.Warn("google sign-in disabled, GOOGLE_CLIENT_ID is not set")
	}

	app.oauthService = &service.OAuthService{
		Store:      app.db,
		Challenges: app.challenges,
		Providers:  providers,
		Login:      app.loginService,
	}

	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.challenges,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	tokenTTL := app.cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = jwtx.DefaultTokenTTL
	}

	router := httpapi.NewRouter(app.keyManager, app.db, app.challenges, httpapi.Options{
		BuildVersion: BuildVersion,
		Cookie: httpapi.CookieConfig{
			Name:   httpx.DefaultTokenCookie,
			Secure: app.cfg.IsProd(),
			MaxAge: tokenTTL,
		},
		SuccessURL:   app.cfg.OAuthSuccessURL,
		FailureURL:   app.cfg.OAuthFailureURL,
		StoreTimeout: app.cfg.StoreTimeout,
	}, app.logger)

	router.LoginService = app.loginService
	router.TOTPService = app.totpService
	router.OAuthService = app.oauthService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
