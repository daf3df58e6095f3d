package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
	"github.com/proyecto-caja/caja-server/internal/pkg/metrics"
)

type AccountService struct {
	accounts ports.AccountRepository
	clients  ports.ClientRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAccountService(accounts ports.AccountRepository, clients ports.ClientRepository, logger zerolog.Logger) *AccountService {
	return &AccountService{accounts: accounts, clients: clients, logger: logger, now: time.Now}
}

func (s *AccountService) List(ctx context.Context, userID string, input ports.ListAccountsInput) ([]*domain.Account, error) {
	filter := ports.AccountFilter{UserID: userID, IncludeInactive: input.IncludeInactive}
	if t := domain.AccountType(input.Type); t.Valid() {
		filter.Type = t
	}

	items, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return items, nil
}

func (s *AccountService) Create(ctx context.Context, userID string, input ports.CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Validation("name is required")
	}

	accType := domain.AccountType(input.Type)
	if !accType.Valid() {
		return nil, domain.Validation("type must be one of: CASH BANK INCOME CLIENT")
	}

	var clientID *string
	if input.ClientID != nil {
		if v := strings.TrimSpace(*input.ClientID); v != "" {
			clientID = &v
		}
	}

	switch {
	case accType == domain.AccountClient && clientID == nil:
		return nil, domain.Validation("clientId is required when type=CLIENT")
	case accType != domain.AccountClient && clientID != nil:
		return nil, domain.Validation("clientId is only allowed when type=CLIENT")
	}

	if clientID != nil {
		if _, err := s.clients.FindByID(ctx, userID, *clientID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Validation("clientId does not reference one of your clients")
			}
			return nil, fmt.Errorf("create account: %w", err)
		}
	}

	account := &domain.Account{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      accType,
		IsActive:  true,
		ClientID:  clientID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("account", "create").Inc()
	s.logger.Info().Str("account_id", account.ID).Str("type", string(accType)).Msg("account created")
	return account, nil
}

// Update renames and/or toggles an account. Deactivation through this path
// follows the same rules as Deactivate.
func (s *AccountService) Update(ctx context.Context, userID, id string, input ports.UpdateAccountInput) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.Validation("name cannot be empty")
		}
		if name != account.Name {
			if err := account.CheckRename(); err != nil {
				return nil, err
			}
			account.Name = name
		}
	}

	if input.IsActive != nil {
		if !*input.IsActive && account.IsActive {
			if err := account.CheckDeactivate(); err != nil {
				return nil, err
			}
		}
		account.IsActive = *input.IsActive
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("account", "update").Inc()
	return account, nil
}

// Deactivate soft-deletes an account.
func (s *AccountService) Deactivate(ctx context.Context, userID, id string) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := account.CheckDeactivate(); err != nil {
		return nil, err
	}

	account.IsActive = false
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("deactivate account: %w", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("account", "deactivate").Inc()
	s.logger.Info().Str("account_id", account.ID).Msg("account deactivated")
	return account, nil
}
