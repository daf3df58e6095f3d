package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
	"github.com/proyecto-caja/caja-server/internal/pkg/metrics"
)

const (
	minRazonSocial = 2
	maxRazonSocial = 120
)

type ClientService struct {
	clients  ports.ClientRepository
	accounts ports.AccountRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewClientService(clients ports.ClientRepository, accounts ports.AccountRepository, logger zerolog.Logger) *ClientService {
	return &ClientService{clients: clients, accounts: accounts, logger: logger, now: time.Now}
}

// List returns the user's clients, newest first, optionally filtered.
func (s *ClientService) List(ctx context.Context, userID, query string) ([]*domain.Client, error) {
	items, err := s.clients.List(ctx, ports.ClientFilter{UserID: userID, Query: strings.TrimSpace(query)})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return items, nil
}

func (s *ClientService) Get(ctx context.Context, userID, id string) (*domain.Client, error) {
	return s.clients.FindByID(ctx, userID, id)
}

func (s *ClientService) Create(ctx context.Context, userID string, input ports.CreateClientInput) (*domain.Client, error) {
	razonSocial, err := normalizeRazonSocial(input.RazonSocial)
	if err != nil {
		return nil, err
	}

	var cuit *string
	if input.Cuit != nil {
		if cuit, err = domain.NormalizeCUIT(*input.Cuit); err != nil {
			return nil, err
		}
	}

	tipo, err := normalizeTipoPersona(input.TipoPersona)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	client := &domain.Client{
		ID:          uuid.NewString(),
		UserID:      userID,
		RazonSocial: razonSocial,
		Cuit:        cuit,
		TipoPersona: tipo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("client", "create").Inc()
	s.logger.Info().Str("client_id", client.ID).Str("user_id", userID).Msg("client created")
	return client, nil
}

// Update applies only the fields present in input.
func (s *ClientService) Update(ctx context.Context, userID, id string, input ports.UpdateClientInput) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.RazonSocial != nil {
		if client.RazonSocial, err = normalizeRazonSocial(*input.RazonSocial); err != nil {
			return nil, err
		}
	}

	if input.Cuit.Set {
		client.Cuit = nil
		if input.Cuit.Value != nil {
			if client.Cuit, err = domain.NormalizeCUIT(*input.Cuit.Value); err != nil {
				return nil, err
			}
		}
	}

	if input.TipoPersona.Set {
		if client.TipoPersona, err = normalizeTipoPersona(input.TipoPersona.Value); err != nil {
			return nil, err
		}
	}

	client.UpdatedAt = s.now().UTC()
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("client", "update").Inc()
	return client, nil
}

// Delete removes the client for good. Clients still referenced by a
// CLIENT account are kept.
func (s *ClientService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.clients.FindByID(ctx, userID, id); err != nil {
		return err
	}

	linked, err := s.accounts.CountByClient(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if linked > 0 {
		return domain.ErrClientInUse
	}

	if err := s.clients.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("client", "delete").Inc()
	s.logger.Info().Str("client_id", id).Str("user_id", userID).Msg("client deleted")
	return nil
}

func normalizeRazonSocial(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", domain.Validation("razonSocial is required")
	}
	if n := utf8.RuneCountInString(v); n < minRazonSocial || n > maxRazonSocial {
		return "", domain.Validation("razonSocial must be between 2 and 120 characters")
	}
	return v, nil
}

// normalizeTipoPersona maps nil and blank to nil.
func normalizeTipoPersona(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.ToUpper(strings.TrimSpace(*raw))
	if v == "" {
		return nil, nil
	}
	if !domain.ValidTipoPersona(v) {
		return nil, domain.Validation("tipoPersona must be one of: JURIDICA FISICA")
	}
	return &v, nil
}
