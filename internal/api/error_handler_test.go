package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"echo http error", echo.NewHTTPError(http.StatusUnauthorized, "unauthorized"), 401, `{"error":"unauthorized"}`},
		{"validation", domain.Validation("razonSocial is required"), 400, `{"error":"razonSocial is required"}`},
		{"wrapped validation", fmt.Errorf("create: %w", domain.Validation("bad cuit")), 400, `{"error":"bad cuit"}`},
		{"invalid credentials", domain.ErrInvalidCredentials, 401, `{"error":"invalid credentials"}`},
		{"forbidden", domain.ErrForbidden, 403, `{"error":"forbidden"}`},
		{"not found", domain.ErrClientNotFound, 404, `{"error":"client not found"}`},
		{"conflict", domain.ErrCuitTaken, 409, `{"error":"cuit already exists for this user"}`},
		{"throttled", &domain.Error{Kind: domain.ErrTooManyAttempts, Msg: "slow down"}, 429, `{"error":"slow down"}`},
		{"unexpected", errors.New("dial tcp: refused"), 500, `{"error":"internal server error"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/clients", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.New(&logs))(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if strings.TrimSpace(rec.Body.String()) != tc.wantBody {
				t.Fatalf("unexpected body: %s", rec.Body.String())
			}
			if tc.wantCode == 500 && !strings.Contains(logs.String(), "dial tcp: refused") {
				t.Fatalf("expected unexpected error to be logged, got %q", logs.String())
			}
			if tc.wantCode != 500 && logs.Len() != 0 {
				t.Fatalf("expected no log output, got %q", logs.String())
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Body.String() != "done" {
		t.Fatalf("body was rewritten: %q", rec.Body.String())
	}
}
