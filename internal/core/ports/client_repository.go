package ports

import (
	"context"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

// ClientFilter scopes a client listing. UserID is always required.
type ClientFilter struct {
	UserID string
	// Query matches razon social (case-insensitive) or cuit (substring).
	Query string
}

// ClientRepository defines persistence for clients. Every lookup is scoped
// by owner: a client owned by someone else is reported as not found.
type ClientRepository interface {
	List(ctx context.Context, filter ClientFilter) ([]*domain.Client, error)
	FindByID(ctx context.Context, userID, id string) (*domain.Client, error)
	// Create fails with domain.ErrCuitTaken on a duplicate (user, cuit).
	Create(ctx context.Context, c *domain.Client) error
	// Update writes every mutable field of c.
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, userID, id string) error
}
