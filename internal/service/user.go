package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/repository"
)

// UserService handles profile reads and updates, plus the "my listings"
// view.
type UserService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	products repository.ProductRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		products: products,
		logger:   logger,
	}
}

// Profile returns the user's record. The Password field never serializes
// (json:"-"), so handlers can return this directly.
func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfile merges the provided fields after validating each one that is
// present. nil fields are not validated and not changed.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd model.UserUpdate) (*model.User, error) {
	if upd.Username != nil && len(*upd.Username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("Username must be at least %d characters long", MinUsernameLength))
	}
	if upd.Email != nil && !validEmail(*upd.Email) {
		return nil, apperror.ValidationFailed("email", "Please provide a valid email")
	}
	if upd.FirstName != nil && *upd.FirstName == "" {
		return nil, apperror.ValidationFailed("firstName", "First name cannot be empty")
	}
	if upd.LastName != nil && *upd.LastName == "" {
		return nil, apperror.ValidationFailed("lastName", "Last name cannot be empty")
	}
	if upd.Phone != nil && len(*upd.Phone) < MinPhoneLength {
		return nil, apperror.ValidationFailed("phone",
			fmt.Sprintf("Phone number must be at least %d digits", MinPhoneLength))
	}
	if upd.Address != nil && len(*upd.Address) < MinAddressLength {
		return nil, apperror.ValidationFailed("address",
			fmt.Sprintf("Address must be at least %d characters long", MinAddressLength))
	}

	current, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Changing email re-checks uniqueness against everyone else.
	if upd.Email != nil && *upd.Email != current.Email {
		_, err := s.users.GetUserByEmail(ctx, *upd.Email)
		switch {
		case err == nil:
			return nil, apperror.Conflict("Email already exists")
		case !errors.Is(err, apperror.ErrNotFound):
			return nil, fmt.Errorf("service/user: checking email: %w", err)
		}
	}

	updated, err := s.users.UpdateUser(ctx, userID, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return updated, nil
}

// Listings returns the products the user is selling.
func (s *UserService) Listings(ctx context.Context, userID string) ([]model.Product, error) {
	return s.products.ListProductsBySeller(ctx, userID)
}
