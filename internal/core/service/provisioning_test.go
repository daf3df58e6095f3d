package service

import (
	"context"
	"sync"
	"testing"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
	"github.com/proyecto-caja/caja-server/internal/infrastructure/db/memory"
)

func TestProvisioner_EnsureDefaultsIdempotent(t *testing.T) {
	ctx := context.Background()
	accounts := memory.New().Accounts()
	p := NewProvisioner(accounts)

	for iter := 0; iter < 3; iter++ {
		if err := p.EnsureDefaults(ctx, "u1"); err != nil {
			t.Fatalf("ensure defaults: %v", err)
		}
	}

	got, err := accounts.List(ctx, ports.AccountFilter{UserID: "u1", IncludeInactive: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 system accounts, got %d", len(got))
	}
	byName := map[string]*domain.Account{}
	for _, a := range got {
		byName[a.Name] = a
	}
	if a := byName["CAJA"]; a == nil || a.Type != domain.AccountCash || !a.IsActive {
		t.Fatalf("unexpected CAJA: %+v", a)
	}
	if a := byName["INGRESOS HONORARIOS"]; a == nil || a.Type != domain.AccountIncome || !a.IsActive {
		t.Fatalf("unexpected INGRESOS HONORARIOS: %+v", a)
	}
}

func TestProvisioner_ReactivatesAndFixesType(t *testing.T) {
	ctx := context.Background()
	accounts := memory.New().Accounts()
	_ = accounts.Create(ctx, &domain.Account{ID: "a1", UserID: "u1", Name: "CAJA", Type: domain.AccountBank, IsActive: false})

	if err := NewProvisioner(accounts).EnsureDefaults(ctx, "u1"); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}

	a, err := accounts.FindByID(ctx, "u1", "a1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if a.Type != domain.AccountCash || !a.IsActive {
		t.Fatalf("expected repaired CAJA, got %+v", a)
	}
}

func TestProvisioner_Concurrent(t *testing.T) {
	ctx := context.Background()
	accounts := memory.New().Accounts()
	p := NewProvisioner(accounts)

	var wg sync.WaitGroup
	for iter := 0; iter < 10; iter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.EnsureDefaults(ctx, "u1")
		}()
	}
	wg.Wait()

	got, _ := accounts.List(ctx, ports.AccountFilter{UserID: "u1", IncludeInactive: true})
	if len(got) != 2 {
		t.Fatalf("expected 2 accounts after concurrent provisioning, got %d", len(got))
	}
}
