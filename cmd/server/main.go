// @title           Caja API
// @version         1.0
// @description     Authentication, clients and accounts for the Caja back office.
// @BasePath        /
// @securityDefinitions.apikey CookieAuth
// @in              cookie
// @name            access_token
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/proyecto-caja/caja-server/internal/api"
	"github.com/proyecto-caja/caja-server/internal/api/handler"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
	"github.com/proyecto-caja/caja-server/internal/core/service"
	"github.com/proyecto-caja/caja-server/internal/infrastructure/db/memory"
	mongostore "github.com/proyecto-caja/caja-server/internal/infrastructure/db/mongo"
	"github.com/proyecto-caja/caja-server/internal/infrastructure/db/postgres"
	redisstore "github.com/proyecto-caja/caja-server/internal/infrastructure/db/redis"
	"github.com/proyecto-caja/caja-server/internal/pkg/config"
	"github.com/proyecto-caja/caja-server/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// repositories groups the store-specific implementations.
type repositories struct {
	users    ports.UserRepository
	clients  ports.ClientRepository
	accounts ports.AccountRepository
	checks   map[string]handler.Check
	closers  []io.Closer
}

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: cfg.ServiceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store initialisation failed")
	}
	defer func() {
		for _, c := range repos.closers {
			_ = c.Close()
		}
	}()

	var limiter ports.LoginLimiter
	if cfg.Redis.Addr != "" {
		rdb, loginLimiter, err := redisstore.Open(ctx, redisstore.Config{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			KeyPrefix:   cfg.Redis.KeyPrefix,
			MaxAttempts: cfg.Login.MaxAttempts,
			Window:      cfg.Login.Window,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		repos.closers = append(repos.closers, rdb)
		repos.checks["redis"] = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
		limiter = loginLimiter
	} else {
		log.Warn().Msg("REDIS_ADDR not set; login throttling disabled")
	}

	provisioner := service.NewProvisioner(repos.accounts)
	authService := service.NewAuthService(repos.users, provisioner, limiter, service.AuthConfig{
		JWTSecret:         cfg.JWTSecret,
		TokenTTL:          cfg.TokenTTL,
		AllowRegistration: cfg.AllowRegistration,
	}, log)
	adminService := service.NewAdminService(repos.users, log)

	if cfg.Admin.Email != "" {
		if err := adminService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatal().Err(err).Msg("admin bootstrap failed")
		}
	}

	e := api.NewRouter(api.Deps{
		Auth:        authService,
		Clients:     service.NewClientService(repos.clients, repos.accounts, log),
		Accounts:    service.NewAccountService(repos.accounts, repos.clients, log),
		Admin:       adminService,
		JWTSecret:   cfg.JWTSecret,
		Cookie:      handler.CookieConfig{Secure: cfg.IsProduction(), TTL: cfg.TokenTTL},
		CORSOrigins: cfg.CORSOrigins,
		ServiceName: cfg.ServiceName,
		Checks:      repos.checks,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := postgres.Migrate(cfg.Postgres.DSN); err != nil {
			return nil, err
		}
		db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		return &repositories{
			users:    postgres.NewUserRepository(db),
			clients:  postgres.NewClientRepository(db),
			accounts: postgres.NewAccountRepository(db),
			checks:   map[string]handler.Check{"postgres": db.PingContext},
			closers:  []io.Closer{db},
		}, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &repositories{
			users:    mongostore.NewUserRepository(db),
			clients:  mongostore.NewClientRepository(db),
			accounts: mongostore.NewAccountRepository(db),
			checks: map[string]handler.Check{"mongo": func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			}},
			closers: []io.Closer{mongoCloser{client}},
		}, nil

	default:
		l := logger.Get()
		l.Warn().Msg("using the in-memory store; data is lost on restart")
		store := memory.New()
		return &repositories{
			users:    store.Users(),
			clients:  store.Clients(),
			accounts: store.Accounts(),
			checks:   map[string]handler.Check{"memory": store.Ping},
		}, nil
	}
}

type mongoCloser struct {
	client interface{ Disconnect(context.Context) error }
}

func (m mongoCloser) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
