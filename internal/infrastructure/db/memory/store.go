// Package memory is an in-process store used for local development
// (STORE_DRIVER=memory) and for end-to-end tests of the HTTP layer. It
// enforces the same uniqueness rules as the database-backed stores.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

// Store keeps users, clients and accounts in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	clients  map[string]*domain.Client
	accounts map[string]*domain.Account
}

func New() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		clients:  make(map[string]*domain.Client),
		accounts: make(map[string]*domain.Account),
	}
}

// Ping satisfies the readiness check contract.
func (s *Store) Ping(context.Context) error { return nil }

// Users, Clients and Accounts return views over the same Store; their
// method sets overlap, so each repository contract gets its own type.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (s *Store) Clients() *ClientRepository { return &ClientRepository{s: s} }

func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// --- UserRepository ---------------------------------------------------------

type UserRepository struct{ s *Store }

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) UpdateRole(_ context.Context, id, role string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	return cloneUser(u), nil
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

// --- ClientRepository -------------------------------------------------------

type ClientRepository struct{ s *Store }

var _ ports.ClientRepository = (*ClientRepository)(nil)

func (r *ClientRepository) List(_ context.Context, f ports.ClientFilter) ([]*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(f.Query)
	digits := domain.Digits(f.Query)

	out := []*domain.Client{}
	for _, c := range r.s.clients {
		if c.UserID != f.UserID {
			continue
		}
		if q != "" && !matchesClient(c, q, digits) {
			continue
		}
		out = append(out, cloneClient(c))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matchesClient(c *domain.Client, q, digits string) bool {
	if strings.Contains(strings.ToLower(c.RazonSocial), q) {
		return true
	}
	if c.Cuit == nil {
		return false
	}
	return strings.Contains(*c.Cuit, q) || (digits != "" && strings.Contains(*c.Cuit, digits))
}

func (r *ClientRepository) FindByID(_ context.Context, userID, id string) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrClientNotFound
	}
	return cloneClient(c), nil
}

func (r *ClientRepository) Create(_ context.Context, c *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.cuitTaken(c) {
		return domain.ErrCuitTaken
	}
	r.s.clients[c.ID] = cloneClient(c)
	return nil
}

func (r *ClientRepository) Update(_ context.Context, c *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.clients[c.ID]
	if !ok || existing.UserID != c.UserID {
		return domain.ErrClientNotFound
	}
	if r.cuitTaken(c) {
		return domain.ErrCuitTaken
	}
	r.s.clients[c.ID] = cloneClient(c)
	return nil
}

func (r *ClientRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok || c.UserID != userID {
		return domain.ErrClientNotFound
	}
	for _, a := range r.s.accounts {
		if a.ClientID != nil && *a.ClientID == id {
			return domain.ErrClientInUse
		}
	}
	delete(r.s.clients, id)
	return nil
}

// cuitTaken must be called with the write lock held.
func (r *ClientRepository) cuitTaken(c *domain.Client) bool {
	if c.Cuit == nil {
		return false
	}
	for _, other := range r.s.clients {
		if other.ID != c.ID && other.UserID == c.UserID && other.Cuit != nil && *other.Cuit == *c.Cuit {
			return true
		}
	}
	return false
}

func cloneClient(c *domain.Client) *domain.Client {
	clone := *c
	clone.Cuit = cloneString(c.Cuit)
	clone.TipoPersona = cloneString(c.TipoPersona)
	return &clone
}

// --- AccountRepository ------------------------------------------------------

type AccountRepository struct{ s *Store }

var _ ports.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) List(_ context.Context, f ports.AccountFilter) ([]*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.Account{}
	for _, a := range r.s.accounts {
		if a.UserID != f.UserID {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if !f.IncludeInactive && !a.IsActive {
			continue
		}
		out = append(out, cloneAccount(a))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *AccountRepository) FindByID(_ context.Context, userID, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountRepository) Create(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.unique(a); err != nil {
		return err
	}
	r.s.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r *AccountRepository) Update(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.accounts[a.ID]
	if !ok || existing.UserID != a.UserID {
		return domain.ErrAccountNotFound
	}
	if err := r.unique(a); err != nil {
		return err
	}
	existing.Name = a.Name
	existing.IsActive = a.IsActive
	return nil
}

func (r *AccountRepository) Upsert(_ context.Context, userID, name string, t domain.AccountType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.UserID == userID && a.Name == name {
			a.Type = t
			a.IsActive = true
			a.ClientID = nil
			return nil
		}
	}
	a := &domain.Account{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      t,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	r.s.accounts[a.ID] = a
	return nil
}

func (r *AccountRepository) CountByClient(_ context.Context, userID, clientID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, a := range r.s.accounts {
		if a.UserID == userID && a.ClientID != nil && *a.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

// unique must be called with the write lock held.
func (r *AccountRepository) unique(a *domain.Account) error {
	for _, other := range r.s.accounts {
		if other.ID == a.ID || other.UserID != a.UserID {
			continue
		}
		if other.Name == a.Name {
			return domain.ErrAccountExists
		}
		if a.ClientID != nil && other.ClientID != nil && *other.ClientID == *a.ClientID {
			return domain.ErrClientLinked
		}
	}
	return nil
}

func cloneAccount(a *domain.Account) *domain.Account {
	clone := *a
	clone.ClientID = cloneString(a.ClientID)
	return &clone
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
