package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
	"github.com/proyecto-caja/caja-server/internal/pkg/metrics"
)

// DefaultTokenTTL is the lifetime of a session token and its cookie.
const DefaultTokenTTL = 7 * 24 * time.Hour

var errThrottled = &domain.Error{Kind: domain.ErrTooManyAttempts, Msg: "too many failed login attempts, try again later"}

// AuthConfig holds the token and registration settings of AuthService.
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AllowRegistration bool
}

// AuthService implements login, self-registration and identity checks.
type AuthService struct {
	users       ports.UserRepository
	provisioner ports.Provisioner
	limiter     ports.LoginLimiter
	cfg         AuthConfig
	log         zerolog.Logger
	now         func() time.Time
}

// NewAuthService builds an AuthService. limiter may be nil, which disables
// failed-login throttling.
func NewAuthService(users ports.UserRepository, provisioner ports.Provisioner, limiter ports.LoginLimiter, cfg AuthConfig, log zerolog.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		users:       users,
		provisioner: provisioner,
		limiter:     limiter,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// Login verifies credentials, provisions the system accounts and mints a
// session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validation("email and password are required")
	}

	if s.blocked(ctx, email) {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, errThrottled
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("login: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, s.rejected(ctx, email)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.rejected(ctx, email)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to reset login attempts")
		}
	}

	if err := s.provisioner.EnsureDefaults(ctx, user.ID); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	expiresAt := s.now().Add(s.cfg.TokenTTL)
	token, err := s.generateToken(user, expiresAt)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return &domain.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Register creates a USER account when self-registration is enabled.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if !s.cfg.AllowRegistration {
		return nil, &domain.Error{Kind: domain.ErrForbidden, Msg: "registration is disabled"}
	}

	email = NormalizeEmail(email)
	if err := validateNewCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("user", "create").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Me returns the user behind a verified session, re-running provisioning
// for accounts created before the system accounts existed.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.provisioner.EnsureDefaults(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return user, nil
}

// CurrentRole returns the role stored for userID.
func (s *AuthService) CurrentRole(ctx context.Context, userID string) (string, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *AuthService) lookup(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *AuthService) blocked(ctx context.Context, email string) bool {
	if s.limiter == nil {
		return false
	}
	blocked, err := s.limiter.Blocked(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("login limiter check failed, allowing attempt")
		return false
	}
	return blocked
}

func (s *AuthService) rejected(ctx context.Context, email string) error {
	metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	if s.limiter != nil {
		if err := s.limiter.RecordFailure(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to record login failure")
		}
	}
	return domain.ErrInvalidCredentials
}

func (s *AuthService) generateToken(user *domain.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   s.now().Unix(),
		"exp":   expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}
