package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, mapUserErr(err)
	}
	return u, nil
}

// SetRole changes a user's role. Callers must already hold the admin role.
func (s *UserService) SetRole(ctx context.Context, userID, role string) (domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, ErrInvalidRequest
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, mapUserErr(err)
	}
	if u.Role == r {
		return u, nil
	}

	u.Role = r
	saved, err := s.Store.Users().UpdateUser(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to set role: %w", err)
	}

	slogx.FromContext(ctx).Info("user role changed", slog.String("target_user_id", userID), slog.String("role", role))
	return saved, nil
}

// DeleteUser removes the account and any pending challenges with it.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		return mapUserErr(err)
	}

	slogx.FromContext(ctx).Info("user deleted", slog.String("target_user_id", userID))
	return nil
}
