package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// InitAuthKeys builds the token KeyManager for the configured algorithm.
//
// HS256 needs AUTH_JWT_SECRET. EdDSA loads AUTH_SIGNING_KEY_FILE, creating it
// on first start; without a file the key is generated per process and every
// token becomes invalid on restart.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		Issuer:    cfg.Issuer,
	}

	switch cfg.Algorithm {
	case jwtx.AlgorithmHS256:
		if cfg.JWTSecret == "" {
			return nil, errors.New("AUTH_JWT_SECRET is required for HS256")
		}
		opts.Secret = []byte(cfg.JWTSecret)

	case jwtx.AlgorithmEdDSA:
		if cfg.SigningKeyFile == "" {
			logger.Warn("no AUTH_SIGNING_KEY_FILE set, tokens will not survive a restart")
			break
		}
		pemKey, err := loadOrCreateSigningKey(cfg.SigningKeyFile)
		if err != nil {
			return nil, err
		}
		opts.PrivateKeyPEM = pemKey
	}

	km, err := jwtx.NewKeyManager(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key manager: %w", err)
	}

	logger.Info("token signing ready",
		"algorithm", km.Algorithm(),
		"kid", km.Signer.KID(),
		"issuer", cfg.Issuer,
	)
	return km, nil
}

func loadOrCreateSigningKey(path string) ([]byte, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read signing key: %w", err)
	}

	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create signing key dir: %w", err)
	}
	if err := os.WriteFile(path, pemKey, 0o600); err != nil {
		return nil, fmt.Errorf("write signing key: %w", err)
	}
	return pemKey, nil
}

// initSealer returns the sealer for TOTP secrets. Outside prod a missing
// master key falls back to a random one.
func initSealer(cfg Config, logger *slog.Logger) (*cryptox.Sealer, error) {
	if cfg.MasterKey != "" {
		return cryptox.NewSealer([]byte(cfg.MasterKey))
	}
	if cfg.IsProd() {
		return nil, errors.New("AUTH_MASTER_KEY is required in prod")
	}
	logger.Warn("no AUTH_MASTER_KEY set, enrolled TOTP secrets will be unreadable after a restart")
	return cryptox.NewEphemeralSealer()
}
