package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

const accountColumns = `id, user_id, name, type, is_active, client_id, created_at`

// Unique constraints of the accounts table, see migrations/000001_init.up.sql.
const (
	constraintAccountName   = "accounts_user_id_name_key"
	constraintAccountClient = "accounts_user_id_client_id_key"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

type accountRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Name      string         `db:"name"`
	Type      string         `db:"type"`
	IsActive  bool           `db:"is_active"`
	ClientID  sql.NullString `db:"client_id"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r accountRow) toDomain() *domain.Account {
	return &domain.Account{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Type:      domain.AccountType(r.Type),
		IsActive:  r.IsActive,
		ClientID:  stringPtr(r.ClientID),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func (r *AccountRepository) List(ctx context.Context, f ports.AccountFilter) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	args := []any{f.UserID}

	if f.Type != "" {
		args = append(args, string(f.Type))
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	if !f.IncludeInactive {
		query += ` AND is_active`
	}
	query += ` ORDER BY type COLLATE "C", name COLLATE "C"`

	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]*domain.Account, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, userID, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row accountRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return row.toDomain(), nil
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := accountRow{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Type:      string(a.Type),
		IsActive:  a.IsActive,
		ClientID:  nullString(a.ClientID),
		CreatedAt: a.CreatedAt,
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, is_active, client_id, created_at)
		VALUES (:id, :user_id, :name, :type, :is_active, :client_id, :created_at)`, row)
	if err != nil {
		return accountWriteError("insert account", err)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = $3, is_active = $4 WHERE id = $1 AND user_id = $2`,
		a.ID, a.UserID, a.Name, a.IsActive)
	if err != nil {
		return accountWriteError("update account", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Upsert relies on accounts_user_id_name_key for atomicity: concurrent
// calls for the same user converge on one row.
func (r *AccountRepository) Upsert(ctx context.Context, userID, name string, t domain.AccountType) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, is_active, client_id, created_at)
		VALUES ($1, $2, $3, $4, TRUE, NULL, $5)
		ON CONFLICT (user_id, name)
		DO UPDATE SET type = EXCLUDED.type, is_active = TRUE, client_id = NULL`,
		uuid.NewString(), userID, name, string(t), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) CountByClient(ctx context.Context, userID, clientID string) (int64, error) {
	if _, err := uuid.Parse(clientID); err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM accounts WHERE user_id = $1 AND client_id = $2`, userID, clientID)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func accountWriteError(op string, err error) error {
	code, constraint := pqCode(err)
	if code == codeUniqueViolation {
		if constraint == constraintAccountClient {
			return domain.ErrClientLinked
		}
		return domain.ErrAccountExists
	}
	return fmt.Errorf("%s: %w", op, err)
}
