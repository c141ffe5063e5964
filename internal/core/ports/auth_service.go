package ports

import (
	"context"
	"time"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}
