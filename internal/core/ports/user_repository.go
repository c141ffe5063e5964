package ports

import (
	"context"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

// Page selects a window of a list ordered newest first.
type Page struct {
	Limit  int
	Offset int
}

// UserPatch carries the fields to change on a user. Nil fields are left as is.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *domain.Role
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create stores a new user. A taken email yields domain.ErrUserExists.
	Create(ctx context.Context, cred *domain.Credentials) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindCredentialsByEmail is the only read that returns a password hash.
	FindCredentialsByEmail(ctx context.Context, email string) (*domain.Credentials, error)
	// List returns a page of users and the total count.
	List(ctx context.Context, page Page) ([]domain.User, int64, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	// Search matches query as a substring of name or email.
	Search(ctx context.Context, query string) ([]domain.User, error)
	// Update applies patch. A taken email yields domain.ErrEmailInUse.
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	// Delete removes the user together with every order it owns.
	Delete(ctx context.Context, id string) error
}
