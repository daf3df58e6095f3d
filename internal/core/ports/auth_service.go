package ports

import (
	"context"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	// CurrentRole reads the role from the store, never from the token.
	CurrentRole(ctx context.Context, userID string) (string, error)
}

// Provisioner guarantees the per-user system accounts exist.
type Provisioner interface {
	EnsureDefaults(ctx context.Context, userID string) error
}

// CreateUserInput carries an admin request to create a user.
type CreateUserInput struct {
	Email    string
	Password string
	Role     string // empty defaults to domain.RoleUser
}

// AdminService defines the admin-only user management use cases.
type AdminService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateRole(ctx context.Context, actorID, userID, role string) (*domain.User, error)
}
