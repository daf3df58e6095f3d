package service

import (
	"context"
	"fmt"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
	"github.com/proyecto-caja/caja-server/internal/pkg/metrics"
)

// Provisioner upserts the system accounts of a user.
type Provisioner struct {
	accounts ports.AccountRepository
}

func NewProvisioner(accounts ports.AccountRepository) *Provisioner {
	return &Provisioner{accounts: accounts}
}

// EnsureDefaults makes CAJA (CASH) and INGRESOS HONORARIOS (INCOME) exist
// and be active for userID. Safe to call on every request.
func (p *Provisioner) EnsureDefaults(ctx context.Context, userID string) error {
	for _, sys := range domain.SystemAccounts {
		if err := p.accounts.Upsert(ctx, userID, sys.Name, sys.Type); err != nil {
			return fmt.Errorf("ensure %s: %w", sys.Name, err)
		}
		metrics.AccountsProvisionedTotal.WithLabelValues(sys.Name).Inc()
	}
	return nil
}
