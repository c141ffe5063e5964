package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/core/auth"
	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

type UserService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// GetAllUsers returns a page of users, newest first, and the total count.
func (s *UserService) GetAllUsers(ctx context.Context, page ports.Page) ([]domain.User, int64, error) {
	return s.users.List(ctx, normalizePage(page))
}

func (s *UserService) GetUsersByRole(ctx context.Context, role string) ([]domain.User, error) {
	if role == "" {
		return nil, domain.NewValidationError("Role is required")
	}
	r, ok := domain.ParseRole(role)
	if !ok {
		return nil, domain.NewValidationError("Invalid role")
	}
	return s.users.ListByRole(ctx, r)
}

// SearchUsers matches query as a substring of name or email.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("Search query is required")
	}
	return s.users.Search(ctx, query)
}

// UpdateUser applies a partial update. Whether the caller may change the
// role is decided before this is called.
func (s *UserService) UpdateUser(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	var patch ports.UserPatch

	v := &domain.ValidationError{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			v.Add("Name cannot be empty")
		}
		patch.Name = &name
	}
	if in.Email != nil && !auth.ValidEmail(*in.Email) {
		v.Add("Invalid email format")
	}
	if in.Role != nil {
		role, ok := domain.ParseRole(*in.Role)
		if !ok {
			v.Add("Invalid role")
		}
		patch.Role = &role
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil && *in.Email != current.Email {
		patch.Email = in.Email
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrEmailInUse) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to update user")
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

// DeleteUser removes the user and every order it owns.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
