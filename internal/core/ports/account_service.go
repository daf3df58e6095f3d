package ports

import (
	"context"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

// CreateAccountInput carries the fields accepted when creating an account.
type CreateAccountInput struct {
	Name     string
	Type     string
	ClientID *string
}

// UpdateAccountInput carries a rename and/or an activation toggle.
type UpdateAccountInput struct {
	Name     *string
	IsActive *bool
}

// ListAccountsInput carries the list endpoint filters.
type ListAccountsInput struct {
	Type            string // ignored unless a known account type
	IncludeInactive bool
}

// AccountService defines per-user account use cases.
type AccountService interface {
	List(ctx context.Context, userID string, input ListAccountsInput) ([]*domain.Account, error)
	Create(ctx context.Context, userID string, input CreateAccountInput) (*domain.Account, error)
	Update(ctx context.Context, userID, id string, input UpdateAccountInput) (*domain.Account, error)
	Deactivate(ctx context.Context, userID, id string) (*domain.Account, error)
}
