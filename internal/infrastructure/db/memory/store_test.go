package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

func strPtr(s string) *string { return &s }

func TestClientRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	clients := New().Clients()

	c := &domain.Client{ID: "c1", UserID: "u1", RazonSocial: "ACME", CreatedAt: time.Now()}
	if err := clients.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := clients.FindByID(ctx, "u2", "c1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for other owner, got %v", err)
	}
	if err := clients.Delete(ctx, "u2", "c1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on foreign delete, got %v", err)
	}
	got, err := clients.List(ctx, ports.ClientFilter{UserID: "u2"})
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty list for other owner, got %v, %v", got, err)
	}
}

func TestClientRepository_CuitUniquePerUser(t *testing.T) {
	ctx := context.Background()
	clients := New().Clients()

	mustCreate := func(c *domain.Client) {
		t.Helper()
		if err := clients.Create(ctx, c); err != nil {
			t.Fatalf("create %s: %v", c.ID, err)
		}
	}
	mustCreate(&domain.Client{ID: "c1", UserID: "u1", RazonSocial: "ACME", Cuit: strPtr("20123456789")})
	mustCreate(&domain.Client{ID: "c2", UserID: "u2", RazonSocial: "ACME", Cuit: strPtr("20123456789")})
	mustCreate(&domain.Client{ID: "c3", UserID: "u1", RazonSocial: "Sin CUIT"})
	mustCreate(&domain.Client{ID: "c4", UserID: "u1", RazonSocial: "Sin CUIT 2"})

	err := clients.Create(ctx, &domain.Client{ID: "c5", UserID: "u1", RazonSocial: "Dup", Cuit: strPtr("20123456789")})
	if !errors.Is(err, domain.ErrCuitTaken) {
		t.Fatalf("expected ErrCuitTaken, got %v", err)
	}
}

func TestClientRepository_ListQuery(t *testing.T) {
	ctx := context.Background()
	clients := New().Clients()
	now := time.Now()

	_ = clients.Create(ctx, &domain.Client{ID: "c1", UserID: "u1", RazonSocial: "Acme SA", Cuit: strPtr("20123456789"), CreatedAt: now})
	_ = clients.Create(ctx, &domain.Client{ID: "c2", UserID: "u1", RazonSocial: "Globex", CreatedAt: now.Add(time.Second)})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"c2", "c1"}},
		{"acme", []string{"c1"}},
		{"20-12345678", []string{"c1"}},
		{"glob", []string{"c2"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		got, err := clients.List(ctx, ports.ClientFilter{UserID: "u1", Query: tt.query})
		if err != nil {
			t.Fatalf("list %q: %v", tt.query, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("query %q: expected %d results, got %d", tt.query, len(tt.want), len(got))
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Fatalf("query %q: position %d expected %s, got %s", tt.query, i, tt.want[i], got[i].ID)
			}
		}
	}
}

func TestClientRepository_DeleteLinked(t *testing.T) {
	ctx := context.Background()
	store := New()

	_ = store.Clients().Create(ctx, &domain.Client{ID: "c1", UserID: "u1", RazonSocial: "ACME"})
	_ = store.Accounts().Create(ctx, &domain.Account{ID: "a1", UserID: "u1", Name: "ACME", Type: domain.AccountClient, IsActive: true, ClientID: strPtr("c1")})

	if err := store.Clients().Delete(ctx, "u1", "c1"); !errors.Is(err, domain.ErrClientInUse) {
		t.Fatalf("expected ErrClientInUse, got %v", err)
	}
}

func TestAccountRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	accounts := New().Accounts()

	_ = accounts.Create(ctx, &domain.Account{ID: "a1", UserID: "u1", Name: "Banco", Type: domain.AccountBank, IsActive: true})
	_ = accounts.Create(ctx, &domain.Account{ID: "a2", UserID: "u1", Name: "ACME", Type: domain.AccountClient, IsActive: true, ClientID: strPtr("c1")})

	err := accounts.Create(ctx, &domain.Account{ID: "a3", UserID: "u1", Name: "Banco", Type: domain.AccountBank, IsActive: true})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	err = accounts.Create(ctx, &domain.Account{ID: "a4", UserID: "u1", Name: "Otro", Type: domain.AccountClient, IsActive: true, ClientID: strPtr("c1")})
	if !errors.Is(err, domain.ErrClientLinked) {
		t.Fatalf("expected ErrClientLinked, got %v", err)
	}
	if err := accounts.Create(ctx, &domain.Account{ID: "a5", UserID: "u2", Name: "Banco", Type: domain.AccountBank, IsActive: true}); err != nil {
		t.Fatalf("same name for another user should succeed: %v", err)
	}
}

func TestAccountRepository_UpsertRepairs(t *testing.T) {
	ctx := context.Background()
	accounts := New().Accounts()

	_ = accounts.Create(ctx, &domain.Account{ID: "a1", UserID: "u1", Name: "CAJA", Type: domain.AccountBank, IsActive: false})

	if err := accounts.Upsert(ctx, "u1", "CAJA", domain.AccountCash); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	a, err := accounts.FindByID(ctx, "u1", "a1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if a.Type != domain.AccountCash || !a.IsActive {
		t.Fatalf("expected repaired CAJA, got %+v", a)
	}
}

func TestAccountRepository_ConcurrentUpsert(t *testing.T) {
	ctx := context.Background()
	accounts := New().Accounts()

	var wg sync.WaitGroup
	for iter := 0; iter < 20; iter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = accounts.Upsert(ctx, "u1", "CAJA", domain.AccountCash)
		}()
	}
	wg.Wait()

	got, _ := accounts.List(ctx, ports.AccountFilter{UserID: "u1", IncludeInactive: true})
	if len(got) != 1 {
		t.Fatalf("expected exactly one CAJA, got %d", len(got))
	}
}

func TestAccountRepository_ListOrderAndVisibility(t *testing.T) {
	ctx := context.Background()
	accounts := New().Accounts()

	_ = accounts.Create(ctx, &domain.Account{ID: "a1", UserID: "u1", Name: "Zeta", Type: domain.AccountBank, IsActive: true})
	_ = accounts.Create(ctx, &domain.Account{ID: "a2", UserID: "u1", Name: "Alfa", Type: domain.AccountBank, IsActive: true})
	_ = accounts.Create(ctx, &domain.Account{ID: "a3", UserID: "u1", Name: "Vieja", Type: domain.AccountBank, IsActive: false})
	_ = accounts.Create(ctx, &domain.Account{ID: "a4", UserID: "u1", Name: "CAJA", Type: domain.AccountCash, IsActive: true})

	active, _ := accounts.List(ctx, ports.AccountFilter{UserID: "u1"})
	want := []string{"Alfa", "Zeta", "CAJA"}
	if len(active) != len(want) {
		t.Fatalf("expected %d active, got %d", len(want), len(active))
	}
	for i, name := range want {
		if active[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, active[i].Name)
		}
	}

	all, _ := accounts.List(ctx, ports.AccountFilter{UserID: "u1", IncludeInactive: true})
	if len(all) != 4 {
		t.Fatalf("expected 4 accounts including inactive, got %d", len(all))
	}
}

func TestUserRepository_EmailUnique(t *testing.T) {
	ctx := context.Background()
	users := New().Users()

	_ = users.Create(ctx, &domain.User{ID: "u1", Email: "ana@example.com", Role: domain.RoleUser})
	err := users.Create(ctx, &domain.User{ID: "u2", Email: "ana@example.com", Role: domain.RoleUser})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	u, err := users.UpdateRole(ctx, "u1", domain.RoleAdmin)
	if err != nil || u.Role != domain.RoleAdmin {
		t.Fatalf("update role: %+v, %v", u, err)
	}
	if _, err := users.UpdateRole(ctx, "missing", domain.RoleAdmin); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
