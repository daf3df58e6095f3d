package handler

import (
	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

// --- Request → Service input ---

func toUpdateClientInput(req updateClientRequest) ports.UpdateClientInput {
	return ports.UpdateClientInput{
		RazonSocial: req.RazonSocial,
		Cuit:        ports.NullableString{Set: req.Cuit.Set, Value: req.Cuit.Value},
		TipoPersona: ports.NullableString{Set: req.TipoPersona.Set, Value: req.TipoPersona.Value},
	}
}

// --- Domain → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func toUsersResponse(users []*domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		RazonSocial: c.RazonSocial,
		Cuit:        c.Cuit,
		TipoPersona: c.TipoPersona,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func toClientsResponse(items []*domain.Client) []clientResponse {
	out := make([]clientResponse, len(items))
	for i, c := range items {
		out[i] = toClientResponse(c)
	}
	return out
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:       a.ID,
		Name:     a.Name,
		Type:     string(a.Type),
		IsActive: a.IsActive,
		ClientID: a.ClientID,
	}
}

func toAccountsResponse(items []*domain.Account) []accountResponse {
	out := make([]accountResponse, len(items))
	for i, a := range items {
		out[i] = toAccountResponse(a)
	}
	return out
}
