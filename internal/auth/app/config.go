package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ChallengeStoreSQLite = "sqlite"
	ChallengeStoreRedis  = "redis"
)

type Config struct {
	Issuer    string        // Issuer claim for tokens (default: storefront-auth)
	Algorithm string        // JWT signing algorithm (HS256, EdDSA) (default: HS256)
	JWTSecret string        // HS256 shared secret, at least 32 bytes
	TokenTTL  time.Duration // Identity token lifetime (default: 7 days)

	// SigningKeyFile holds the EdDSA PKCS8 key. It is created on first start.
	// Empty means a fresh key per process.
	SigningKeyFile string

	ChallengeTTL time.Duration // TOTP login challenge lifetime (default: 5m)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: ./pepper)
	MasterKey    string // Key material for sealing TOTP secrets at rest

	ChallengeStore string // Where login challenges live (sqlite, redis) (default: sqlite)
	RedisAddr      string // host:port (default: localhost:6379)
	RedisPassword  string
	RedisDB        int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	OAuthSuccessURL    string // Browser landing page after an OAuth round trip (default: /)
	OAuthFailureURL    string // Landing page on failure, receives ?error= (default: /login)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	StoreTimeout         time.Duration // Per-request store deadline (default: 5s)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the environment. A .env file in the working directory is
// loaded first when present; real environment variables win over it.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "storefront-auth"),
		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", "HS256"),
		JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		TokenTTL:       getEnvDurationOrDefault("AUTH_TOKEN_TTL", 7*24*time.Hour),
		SigningKeyFile: os.Getenv("AUTH_SIGNING_KEY_FILE"),
		ChallengeTTL:   getEnvDurationOrDefault("AUTH_TOTP_CHALLENGE_TTL", 5*time.Minute),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		MasterKey:    os.Getenv("AUTH_MASTER_KEY"),

		ChallengeStore: getEnvOrDefault("AUTH_CHALLENGE_STORE", ChallengeStoreSQLite),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvIntOrDefault("REDIS_DB", 0),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnvOrDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/oauth/google/callback"),
		OAuthSuccessURL:    getEnvOrDefault("OAUTH_SUCCESS_URL", "/"),
		OAuthFailureURL:    getEnvOrDefault("OAUTH_FAILURE_URL", "/login"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		StoreTimeout:         getEnvDurationOrDefault("STORE_TIMEOUT", 5*time.Second),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// IsProd reports whether cookies must be Secure and dev fallbacks are refused.
func (c Config) IsProd() bool { return c.Env == "prod" }

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
