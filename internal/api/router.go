package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/proyecto-caja/caja-server/docs"
	"github.com/proyecto-caja/caja-server/internal/api/handler"
	"github.com/proyecto-caja/caja-server/internal/api/middleware"
	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
	"github.com/proyecto-caja/caja-server/internal/web"
)

// Deps are the services and settings the router wires into handlers.
type Deps struct {
	Auth     ports.AuthService
	Clients  ports.ClientService
	Accounts ports.AccountService
	Admin    ports.AdminService

	JWTSecret   string
	Cookie      handler.CookieConfig
	CORSOrigins []string
	ServiceName string
	// Checks back GET /health/ready, keyed by dependency name.
	Checks map[string]handler.Check
	Log    zerolog.Logger

	// Registry receives the HTTP metrics. Nil uses the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookie)
	clientHandler := handler.NewClientHandler(d.Clients)
	accountHandler := handler.NewAccountHandler(d.Accounts)
	adminHandler := handler.NewAdminHandler(d.Admin)
	healthHandler := handler.NewHealthHandler(d.ServiceName, d.Checks)

	session := middleware.Session(d.JWTSecret)

	// --- Operational routes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth ---
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/register", authHandler.Register)
	auth.GET("/me", authHandler.Me, session)

	// --- Clients ---
	clients := e.Group("/clients", session)
	clients.GET("", clientHandler.List)
	clients.POST("", clientHandler.Create)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)

	// --- Accounts ---
	accounts := e.Group("/accounts", session)
	accounts.GET("", accountHandler.List)
	accounts.POST("", accountHandler.Create)
	accounts.PUT("/:id", accountHandler.Update)
	accounts.DELETE("/:id", accountHandler.Deactivate)

	// --- Admin ---
	admin := e.Group("/admin", session, middleware.RequireRole(d.Auth, domain.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.PUT("/users/:id", adminHandler.UpdateRole)

	// --- SPA ---
	e.Group("/app", echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
		Root:       ".",
		HTML5:      true,
		Filesystem: http.FS(web.Dist()),
	}))
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/app/")
	})

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
