package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

type stubRoleLookup struct {
	role string
	err  error
	ids  []string
}

func (s *stubRoleLookup) CurrentRole(_ context.Context, userID string) (string, error) {
	s.ids = append(s.ids, userID)
	return s.role, s.err
}

func runRequireRole(t *testing.T, lookup RoleLookup, identity *domain.Identity) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if identity != nil {
		SetIdentity(c, *identity)
	}

	called := false
	handler := RequireRole(lookup, domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestRequireRole_UsesStoredRole(t *testing.T) {
	// The token claims USER but the store says ADMIN: the store wins.
	lookup := &stubRoleLookup{role: domain.RoleAdmin}
	rec, called := runRequireRole(t, lookup, &domain.Identity{UserID: "u1", Role: domain.RoleUser})

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
	if len(lookup.ids) != 1 || lookup.ids[0] != "u1" {
		t.Fatalf("expected lookup for u1, got %v", lookup.ids)
	}
}

func TestRequireRole_ForbidsDemotedUser(t *testing.T) {
	lookup := &stubRoleLookup{role: domain.RoleUser}
	rec, called := runRequireRole(t, lookup, &domain.Identity{UserID: "u1", Role: domain.RoleAdmin})

	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_Unauthorized(t *testing.T) {
	rec, _ := runRequireRole(t, &stubRoleLookup{role: domain.RoleAdmin}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	rec, _ = runRequireRole(t, &stubRoleLookup{err: domain.ErrUnauthorized}, &domain.Identity{UserID: "gone"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted user, got %d", rec.Code)
	}
}

func TestRequireRole_StoreError(t *testing.T) {
	rec, called := runRequireRole(t, &stubRoleLookup{err: errors.New("db down")}, &domain.Identity{UserID: "u1"})
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
