package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
	"github.com/proyecto-caja/caja-server/internal/infrastructure/db/memory"
)

type accountFixture struct {
	svc   *AccountService
	store *memory.Store
}

// newAccountFixture provisions the system accounts for u1.
func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	store := memory.New()
	if err := NewProvisioner(store.Accounts()).EnsureDefaults(context.Background(), "u1"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	return &accountFixture{
		svc:   NewAccountService(store.Accounts(), store.Clients(), zerolog.Nop()),
		store: store,
	}
}

func (f *accountFixture) byName(t *testing.T, name string) *domain.Account {
	t.Helper()
	all, _ := f.store.Accounts().List(context.Background(), ports.AccountFilter{UserID: "u1", IncludeInactive: true})
	for _, a := range all {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("account %s not found", name)
	return nil
}

func TestAccountService_CreateBank(t *testing.T) {
	f := newAccountFixture(t)

	a, err := f.svc.Create(context.Background(), "u1", ports.CreateAccountInput{Name: " Banco Nación ", Type: "BANK"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Name != "Banco Nación" || !a.IsActive || a.ClientID != nil {
		t.Fatalf("unexpected account: %+v", a)
	}

	_, err = f.svc.Create(context.Background(), "u1", ports.CreateAccountInput{Name: "Banco Nación", Type: "BANK"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}
}

func TestAccountService_CreateValidation(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	client := &domain.Client{ID: "c1", UserID: "u1", RazonSocial: "ACME"}
	_ = f.store.Clients().Create(ctx, client)
	_ = f.store.Clients().Create(ctx, &domain.Client{ID: "c2", UserID: "u2", RazonSocial: "Foreign"})

	tests := []struct {
		name  string
		input ports.CreateAccountInput
		msg   string
	}{
		{"blank name", ports.CreateAccountInput{Name: " ", Type: "BANK"}, "name is required"},
		{"bad type", ports.CreateAccountInput{Name: "X", Type: "SAVINGS"}, "type must be one of: CASH BANK INCOME CLIENT"},
		{"client without id", ports.CreateAccountInput{Name: "X", Type: "CLIENT"}, "clientId is required when type=CLIENT"},
		{"id without client type", ports.CreateAccountInput{Name: "X", Type: "BANK", ClientID: ptr("c1")}, "clientId is only allowed when type=CLIENT"},
		{"foreign client", ports.CreateAccountInput{Name: "X", Type: "CLIENT", ClientID: ptr("c2")}, "clientId does not reference one of your clients"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, "u1", tt.input)
			if !errors.Is(err, domain.ErrValidation) || err.Error() != tt.msg {
				t.Fatalf("expected %q, got %v", tt.msg, err)
			}
		})
	}

	a, err := f.svc.Create(ctx, "u1", ports.CreateAccountInput{Name: "ACME", Type: "CLIENT", ClientID: ptr("c1")})
	if err != nil {
		t.Fatalf("create client account: %v", err)
	}
	if a.ClientID == nil || *a.ClientID != "c1" {
		t.Fatalf("expected linked client, got %+v", a)
	}
}

func TestAccountService_RenameRules(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	income := f.byName(t, domain.IncomeAccountName)
	_, err := f.svc.Update(ctx, "u1", income.ID, ports.UpdateAccountInput{Name: ptr("HONORARIOS")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error renaming INCOME, got %v", err)
	}

	caja := f.byName(t, domain.CashAccountName)
	if _, err := f.svc.Update(ctx, "u1", caja.ID, ports.UpdateAccountInput{Name: ptr("EFECTIVO")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error renaming CAJA, got %v", err)
	}
	if _, err := f.svc.Update(ctx, "u1", caja.ID, ports.UpdateAccountInput{Name: ptr("CAJA")}); err != nil {
		t.Fatalf("unchanged name must be accepted, got %v", err)
	}

	bank, _ := f.svc.Create(ctx, "u1", ports.CreateAccountInput{Name: "Banco", Type: "BANK"})
	renamed, err := f.svc.Update(ctx, "u1", bank.ID, ports.UpdateAccountInput{Name: ptr("Banco Galicia")})
	if err != nil || renamed.Name != "Banco Galicia" {
		t.Fatalf("rename bank: %+v, %v", renamed, err)
	}
	if _, err := f.svc.Update(ctx, "u1", bank.ID, ports.UpdateAccountInput{Name: ptr("  ")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := f.svc.Update(ctx, "u1", bank.ID, ports.UpdateAccountInput{Name: ptr("CAJA")}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict renaming onto CAJA, got %v", err)
	}
}

func TestAccountService_DeactivateRules(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	for _, name := range []string{domain.CashAccountName, domain.IncomeAccountName} {
		a := f.byName(t, name)
		if _, err := f.svc.Deactivate(ctx, "u1", a.ID); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error deactivating %s, got %v", name, err)
		}
		if _, err := f.svc.Update(ctx, "u1", a.ID, ports.UpdateAccountInput{IsActive: ptr(false)}); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error deactivating %s via update, got %v", name, err)
		}
	}

	bank, _ := f.svc.Create(ctx, "u1", ports.CreateAccountInput{Name: "Banco", Type: "BANK"})
	got, err := f.svc.Deactivate(ctx, "u1", bank.ID)
	if err != nil || got.IsActive {
		t.Fatalf("deactivate bank: %+v, %v", got, err)
	}

	active, _ := f.svc.List(ctx, "u1", ports.ListAccountsInput{})
	for _, a := range active {
		if a.ID == bank.ID {
			t.Fatalf("deactivated account listed as active")
		}
	}
	all, _ := f.svc.List(ctx, "u1", ports.ListAccountsInput{IncludeInactive: true})
	if len(all) != len(active)+1 {
		t.Fatalf("expected inactive account with includeInactive, got %d vs %d", len(all), len(active))
	}

	reactivated, err := f.svc.Update(ctx, "u1", bank.ID, ports.UpdateAccountInput{IsActive: ptr(true)})
	if err != nil || !reactivated.IsActive {
		t.Fatalf("reactivate: %+v, %v", reactivated, err)
	}
}

func TestAccountService_ListTypeFilter(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	cash, err := f.svc.List(ctx, "u1", ports.ListAccountsInput{Type: "CASH"})
	if err != nil || len(cash) != 1 || cash[0].Name != domain.CashAccountName {
		t.Fatalf("expected only CAJA, got %+v, %v", cash, err)
	}

	ignored, _ := f.svc.List(ctx, "u1", ports.ListAccountsInput{Type: "NOPE"})
	if len(ignored) != 2 {
		t.Fatalf("unknown type must be ignored, got %d accounts", len(ignored))
	}
}

func TestAccountService_NotFound(t *testing.T) {
	f := newAccountFixture(t)
	caja := f.byName(t, domain.CashAccountName)

	if _, err := f.svc.Deactivate(context.Background(), "u2", caja.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for foreign account, got %v", err)
	}
}
