package ports

import (
	"context"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

// AccountFilter scopes an account listing. UserID is always required.
type AccountFilter struct {
	UserID          string
	Type            domain.AccountType // empty = every type
	IncludeInactive bool
}

// AccountRepository defines persistence for accounts. Accounts are never
// removed; deactivation is an Update with IsActive=false.
type AccountRepository interface {
	// List returns accounts ordered by type, then name.
	List(ctx context.Context, filter AccountFilter) ([]*domain.Account, error)
	FindByID(ctx context.Context, userID, id string) (*domain.Account, error)
	// Create fails with domain.ErrAccountExists on a duplicate (user, name)
	// and domain.ErrClientLinked on a duplicate (user, client).
	Create(ctx context.Context, a *domain.Account) error
	// Update writes name and is_active.
	Update(ctx context.Context, a *domain.Account) error
	// Upsert atomically creates the (user, name) account or forces its type
	// and active flag on the existing row.
	Upsert(ctx context.Context, userID, name string, t domain.AccountType) error
	// CountByClient reports how many accounts reference the client.
	CountByClient(ctx context.Context, userID, clientID string) (int64, error)
}
