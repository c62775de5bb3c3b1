// Command seed creates the demo accounts in the auth database. It is safe to
// run repeatedly: existing usernames are left alone.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/storefront/internal/auth/app"
	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

type account struct {
	Username string
	Password string
	Role     domain.Role
}

func main() {
	adminUser := flag.String("admin", "admin", "username of the admin account")
	adminPassword := flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password (generated when empty)")
	flag.Parse()

	cfg := app.LoadConfig()
	logger := slogx.New(slogx.Config{
		Service: "auth-seed",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  "text",
	})

	if *adminPassword == "" {
		generated, err := cryptox.GeneratePassword()
		if err != nil {
			log.Fatalf("failed to generate admin password: %v", err)
		}
		*adminPassword = generated
		logger.Warn("generated admin password, store it now", "username", *adminUser, "password", generated)
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		log.Fatalf("failed to load pepper: %v", err)
	}

	st, err := sqlite.NewStore(fmt.Sprintf("file:%s", cfg.DatabaseFile))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer st.Close()

	if err := st.ApplyMigrations(); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	accounts := []account{
		{Username: "standard", Password: "secret", Role: domain.RoleCustomer},
		{Username: *adminUser, Password: *adminPassword, Role: domain.RoleAdmin},
	}

	ctx := slogx.WithContext(context.Background(), logger)
	if err := seed(ctx, st, cryptox.NewPasswordHasher(pepper), accounts); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func seed(ctx context.Context, st store.Store, hasher *cryptox.PasswordHasher, accounts []account) error {
	log := slogx.FromContext(ctx)
	login := &service.LoginService{
		Store:    st,
		Password: &service.PasswordProvider{Store: st, Hasher: hasher},
	}
	users := &service.UserService{Store: st}

	for _, a := range accounts {
		u, err := login.Register(ctx, a.Username, a.Password, "")
		if errors.Is(err, service.ErrUsernameTaken) {
			log.Info("user already exists", slog.String("username", a.Username))
			continue
		}
		if err != nil {
			return fmt.Errorf("create %s: %w", a.Username, err)
		}

		if a.Role != domain.RoleCustomer {
			if _, err := users.SetRole(ctx, u.ID, a.Role.String()); err != nil {
				return fmt.Errorf("set role for %s: %w", a.Username, err)
			}
		}
		log.Info("created user", slog.String("username", a.Username), slog.String("role", a.Role.String()))
	}

	n, err := st.Users().CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	log.Info("seed complete", slog.Int("users", n))
	return nil
}
