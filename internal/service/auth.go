// Package service contains the business logic layer: validation, ownership
// rules and orchestration live here, between the HTTP handlers (which only
// speak JSON) and the repositories (which only speak storage). Services
// return domain errors from internal/apperror; the handler layer translates
// them to status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/auth"
	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/repository"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	MinPhoneLength    = 10
	MinAddressLength  = 5
)

// AuthService handles registration, login/logout and session resolution.
type AuthService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user and the session token issued for them so the
// handler can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput is the data needed to create an account. The profile fields
// are optional.
type RegisterInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// Register creates an account and logs it in.
//
// Email uniqueness is enforced HERE, not in the store: the store's
// CreateUser deliberately accepts anything, so the pre-check below is the
// one place the "no duplicate emails" rule lives.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if !validEmail(in.Email) {
		return nil, apperror.ValidationFailed("email", "Please provide a valid email")
	}
	if len(in.Username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("Username must be at least %d characters long", MinUsernameLength))
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("Email already exists")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hashed, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Email:     in.Email,
		Password:  hashed,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Address:   in.Address,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	token, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: creating session: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the credentials and issues a new session token.
//
// Unknown email and wrong password return the same message, so the endpoint
// can't be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("Invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		return nil, apperror.Unauthenticated("Invalid email or password")
	}

	token, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: creating session: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// Logout deletes the session. Idempotent: logging out twice is fine.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	removed, err := s.sessions.DeleteSession(ctx, token)
	if err != nil {
		return fmt.Errorf("service/auth: deleting session: %w", err)
	}
	if removed {
		s.logger.Info("session deleted")
	}
	return nil
}

// UserFromToken resolves a bearer token to its user.
//
// The two failure modes map to different statuses at the boundary: a missing
// token is Unauthenticated (401), an unknown or expired one is Forbidden
// (403) — the contract the frontend already depends on.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("Access token required")
	}

	userID, err := s.sessions.ResolveSession(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Forbidden("Invalid or expired token")
		}
		return nil, fmt.Errorf("service/auth: resolving session: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Session outlived its user; treat like a bad token.
			return nil, apperror.Forbidden("Invalid or expired token")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}
	return user, nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
