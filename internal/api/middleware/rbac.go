package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

// RoleLookup reads a user's current role from the store.
type RoleLookup interface {
	CurrentRole(ctx context.Context, userID string) (string, error)
}

// RequireRole must run after Session. It ignores the role claim in the
// token and asks lookup for the stored role, so a demotion takes effect on
// the next request.
func RequireRole(lookup RoleLookup, allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return errUnauthorized()
			}

			role, err := lookup.CurrentRole(c.Request().Context(), id.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return errUnauthorized()
				}
				return err
			}

			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
