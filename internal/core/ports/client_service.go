package ports

import (
	"context"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

// CreateClientInput carries the fields accepted when creating a client.
type CreateClientInput struct {
	RazonSocial string
	Cuit        *string
	TipoPersona *string
}

// NullableString is a patch value: Set reports whether the field was sent
// at all, and a nil Value with Set=true clears the field.
type NullableString struct {
	Set   bool
	Value *string
}

// UpdateClientInput carries a partial update; absent fields are untouched.
type UpdateClientInput struct {
	RazonSocial *string
	Cuit        NullableString
	TipoPersona NullableString
}

// ClientService defines per-user client use cases.
type ClientService interface {
	List(ctx context.Context, userID, query string) ([]*domain.Client, error)
	Get(ctx context.Context, userID, id string) (*domain.Client, error)
	Create(ctx context.Context, userID string, input CreateClientInput) (*domain.Client, error)
	Update(ctx context.Context, userID, id string, input UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, userID, id string) error
}
