package ports

import (
	"context"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

// UpdateUserInput carries a partial user update as received from the client.
// Nil fields were not supplied.
type UpdateUserInput struct {
	Name  *string
	Email *string
	Role  *string
}

// UserService defines use-case operations for the user directory.
type UserService interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetAllUsers(ctx context.Context, page Page) ([]domain.User, int64, error)
	GetUsersByRole(ctx context.Context, role string) ([]domain.User, error)
	SearchUsers(ctx context.Context, query string) ([]domain.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
