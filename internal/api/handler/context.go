package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/proyecto-caja/caja-server/internal/api/middleware"
	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

// ctxIdentity returns the caller's identity stored by the Session
// middleware. A missing identity means the route was wired without the
// guard; fail closed with 401.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func invalidPayload() error {
	return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
}
