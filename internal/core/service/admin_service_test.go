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

func TestAdminService_CreateUser(t *testing.T) {
	svc := NewAdminService(memory.New().Users(), zerolog.Nop())
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, ports.CreateUserInput{Email: "Bob@Example.com", Password: "pass123"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Role != domain.RoleUser || u.Email != "bob@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	admin, err := svc.CreateUser(ctx, ports.CreateUserInput{Email: "root@example.com", Password: "pass123", Role: "admin"})
	if err != nil || admin.Role != domain.RoleAdmin {
		t.Fatalf("create admin: %+v, %v", admin, err)
	}

	if _, err := svc.CreateUser(ctx, ports.CreateUserInput{Email: "x@example.com", Password: "pass123", Role: "ROOT"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for bad role, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, ports.CreateUserInput{Email: "bob@example.com", Password: "pass123"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	users, err := svc.ListUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("expected 2 users, got %d, %v", len(users), err)
	}
}

func TestAdminService_UpdateRole(t *testing.T) {
	svc := NewAdminService(memory.New().Users(), zerolog.Nop())
	ctx := context.Background()

	admin, _ := svc.CreateUser(ctx, ports.CreateUserInput{Email: "root@example.com", Password: "pass123", Role: domain.RoleAdmin})
	user, _ := svc.CreateUser(ctx, ports.CreateUserInput{Email: "bob@example.com", Password: "pass123"})

	promoted, err := svc.UpdateRole(ctx, admin.ID, user.ID, "admin")
	if err != nil || promoted.Role != domain.RoleAdmin {
		t.Fatalf("promote: %+v, %v", promoted, err)
	}

	if _, err := svc.UpdateRole(ctx, admin.ID, admin.ID, domain.RoleUser); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected self-demotion to be refused, got %v", err)
	}
	if _, err := svc.UpdateRole(ctx, admin.ID, user.ID, "GOD"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateRole(ctx, admin.ID, "missing", domain.RoleUser); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdminService_EnsureAdmin(t *testing.T) {
	users := memory.New().Users()
	svc := NewAdminService(users, zerolog.Nop())
	ctx := context.Background()

	for iter := 0; iter < 2; iter++ {
		if err := svc.EnsureAdmin(ctx, "Root@Example.com", "pass123"); err != nil {
			t.Fatalf("ensure admin: %v", err)
		}
	}

	all, _ := users.List(ctx)
	if len(all) != 1 || all[0].Role != domain.RoleAdmin || all[0].Email != "root@example.com" {
		t.Fatalf("expected one admin, got %+v", all)
	}
}
