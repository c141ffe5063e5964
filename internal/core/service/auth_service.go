package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/core/auth"
	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

// AuthService implements registration, login and identity lookup.
type AuthService struct {
	users  ports.UserRepository
	tokens *auth.TokenIssuer
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthService(users ports.UserRepository, tokens *auth.TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger, now: time.Now}
}

// Register creates a CUSTOMER account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)

	v := &domain.ValidationError{}
	if name == "" {
		v.Add("Name is required")
	}
	switch {
	case in.Email == "":
		v.Add("Email is required")
	case !auth.ValidEmail(in.Email):
		v.Add("Invalid email format")
	}
	switch {
	case in.Password == "":
		v.Add("Password is required")
	case !auth.ValidPassword(in.Password):
		v.Add(auth.PasswordPolicyMessage)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	cred := &domain.Credentials{
		User: domain.User{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     in.Email,
			Role:      domain.RoleCustomer,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, cred); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Str("user_id", cred.User.ID).Msg("user registered")
	return s.issue(cred.User)
}

// Login verifies the email/password pair. Unknown email and wrong password
// fail identically, and both cost one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	v := &domain.ValidationError{}
	switch {
	case email == "":
		v.Add("Email is required")
	case !auth.ValidEmail(email):
		v.Add("Invalid email format")
	}
	if password == "" {
		v.Add("Password is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	cred, err := s.users.FindCredentialsByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		cred = nil
	}

	var hash string
	if cred != nil {
		hash = cred.PasswordHash
	}
	if !auth.ComparePassword(hash, password) || cred == nil {
		s.logger.Debug().Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(cred.User)
}

// Me returns the user behind an authenticated session.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) issue(user domain.User) (*ports.AuthResult, error) {
	tok, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{
		User:      user,
		Token:     tok.Value,
		ExpiresAt: tok.ExpiresAt,
		ExpiresIn: tok.ExpiresIn,
	}, nil
}
