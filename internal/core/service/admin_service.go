package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
	"github.com/proyecto-caja/caja-server/internal/pkg/metrics"
)

// AdminService implements user management for administrators.
type AdminService struct {
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewAdminService(users ports.UserRepository, log zerolog.Logger) *AdminService {
	return &AdminService{users: users, log: log, now: time.Now}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	email := NormalizeEmail(input.Email)
	if err := validateNewCredentials(email, input.Password); err != nil {
		return nil, err
	}

	role := strings.ToUpper(strings.TrimSpace(input.Role))
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.Validation("role must be one of: ADMIN USER")
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("user", "create").Inc()
	s.log.Info().Str("user_id", user.ID).Str("role", role).Msg("user created by admin")
	return user, nil
}

// UpdateRole changes the role of userID. Admins cannot demote themselves,
// which keeps at least the acting admin in place.
func (s *AdminService) UpdateRole(ctx context.Context, actorID, userID, role string) (*domain.User, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if !domain.ValidRole(role) {
		return nil, domain.Validation("role must be one of: ADMIN USER")
	}
	if actorID == userID && role != domain.RoleAdmin {
		return nil, domain.Validation("admins cannot remove their own admin role")
	}

	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("user", "update").Inc()
	s.log.Info().Str("user_id", userID).Str("role", role).Str("actor_id", actorID).Msg("user role changed")
	return user, nil
}

// EnsureAdmin creates an ADMIN with the given credentials unless the email
// is already registered. Used to bootstrap a fresh installation.
func (s *AdminService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("ensure admin: %w", err)
	}

	_, err = s.CreateUser(ctx, ports.CreateUserInput{Email: email, Password: password, Role: domain.RoleAdmin})
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}
