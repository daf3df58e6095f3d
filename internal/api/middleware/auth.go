package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

// CookieName is the httpOnly cookie carrying the session token.
const CookieName = "access_token"

const identityKey = "identity"

func errUnauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

// Session validates the HS256 session token and stores the caller's
// domain.Identity in the context. The cookie wins over the Authorization
// header when both are present.
func Session(jwtSecret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return []byte(jwtSecret), nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c)
			if raw == "" {
				return errUnauthorized()
			}

			claims := jwt.MapClaims{}
			tkn, err := parser.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !tkn.Valid {
				return errUnauthorized()
			}

			sub, _ := claims.GetSubject()
			if sub == "" {
				return errUnauthorized()
			}
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)

			SetIdentity(c, domain.Identity{UserID: sub, Email: email, Role: role})
			return next(c)
		}
	}
}

// SetIdentity stores id for downstream handlers.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity stored by Session.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok && id.UserID != ""
}

func tokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
