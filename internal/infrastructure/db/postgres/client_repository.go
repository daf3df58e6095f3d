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

const clientColumns = `id, user_id, razon_social, cuit, tipo_persona, created_at, updated_at`

type ClientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

type clientRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	RazonSocial string         `db:"razon_social"`
	Cuit        sql.NullString `db:"cuit"`
	TipoPersona sql.NullString `db:"tipo_persona"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func newClientRow(c *domain.Client) clientRow {
	return clientRow{
		ID:          c.ID,
		UserID:      c.UserID,
		RazonSocial: c.RazonSocial,
		Cuit:        nullString(c.Cuit),
		TipoPersona: nullString(c.TipoPersona),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r clientRow) toDomain() *domain.Client {
	return &domain.Client{
		ID:          r.ID,
		UserID:      r.UserID,
		RazonSocial: r.RazonSocial,
		Cuit:        stringPtr(r.Cuit),
		TipoPersona: stringPtr(r.TipoPersona),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// List filters by owner and, when a query is given, by razon social
// (ILIKE) or cuit (substring of the raw query or of its digits).
func (r *ClientRepository) List(ctx context.Context, f ports.ClientFilter) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT ` + clientColumns + ` FROM clients WHERE user_id = $1`
	args := []any{f.UserID}

	if f.Query != "" {
		args = append(args, likePattern(f.Query))
		cond := `razon_social ILIKE $2 OR cuit LIKE $2`
		if digits := domain.Digits(f.Query); digits != "" && digits != f.Query {
			args = append(args, likePattern(digits))
			cond += ` OR cuit LIKE $` + strconv.Itoa(len(args))
		}
		query += ` AND (` + cond + `)`
	}
	query += ` ORDER BY created_at DESC`

	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	out := make([]*domain.Client, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, userID, id string) (*domain.Client, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrClientNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row clientRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO clients (id, user_id, razon_social, cuit, tipo_persona, created_at, updated_at)
		VALUES (:id, :user_id, :razon_social, :cuit, :tipo_persona, :created_at, :updated_at)`,
		newClientRow(c))
	if err != nil {
		return clientWriteError("insert client", err)
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE clients
		SET razon_social = :razon_social, cuit = :cuit, tipo_persona = :tipo_persona, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`,
		newClientRow(c))
	if err != nil {
		return clientWriteError("update client", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrClientNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if code, _ := pqCode(err); code == codeForeignKeyViolation {
			return domain.ErrClientInUse
		}
		return fmt.Errorf("delete client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func clientWriteError(op string, err error) error {
	if code, _ := pqCode(err); code == codeUniqueViolation {
		return domain.ErrCuitTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
