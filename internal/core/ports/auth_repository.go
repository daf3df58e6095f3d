package ports

import (
	"context"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

// UserRepository defines persistence for user credentials and roles.
type UserRepository interface {
	// FindByEmail expects an already normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create fails with domain.ErrUserExists on a duplicate email.
	Create(ctx context.Context, user *domain.User) error
	// List returns every user, newest first.
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)
}

// LoginLimiter counts failed logins per key (normalized email).
type LoginLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
