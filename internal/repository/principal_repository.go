package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lead-lens/internal/domain"
)

// PrincipalFilter narrows a principal listing.
type PrincipalFilter struct {
	Role   domain.Role
	Search string
	Limit  int
	Offset int
}

// PrincipalRepository defines persistence access for dashboard accounts.
type PrincipalRepository interface {
	Create(ctx context.Context, p *domain.Principal) error
	Update(ctx context.Context, p *domain.Principal) error
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
	GetByIDAndRole(ctx context.Context, id string, role domain.Role) (*domain.Principal, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Principal, error)
	List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, int, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type principalRepository struct {
	db DB
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(db DB) PrincipalRepository {
	return &principalRepository{db: db}
}

const principalColumns = `id, email, name, role, status, password_hash, sf_field, sf_value, created_at, last_login_at`

func (r *principalRepository) Create(ctx context.Context, p *domain.Principal) error {
	const query = `
        INSERT INTO users (email, name, role, status, password_hash, sf_field, sf_value)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		p.Email,
		p.Name,
		string(p.Role),
		string(p.Status),
		p.PasswordHash,
		p.ScopeField,
		p.ScopeValue,
	).Scan(&p.ID, &p.CreatedAt)
	return mapError(err)
}

func (r *principalRepository) Update(ctx context.Context, p *domain.Principal) error {
	const query = `
        UPDATE users SET email=$1, name=$2, status=$3, password_hash=$4, sf_field=$5, sf_value=$6
        WHERE id=$7`

	cmd, err := r.db.Exec(ctx, query,
		p.Email,
		p.Name,
		string(p.Status),
		p.PasswordHash,
		p.ScopeField,
		p.ScopeValue,
		p.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *principalRepository) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM users WHERE id=$1`
	return scanPrincipal(r.db.QueryRow(ctx, query, id))
}

func (r *principalRepository) GetByIDAndRole(ctx context.Context, id string, role domain.Role) (*domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM users WHERE id=$1 AND role=$2`
	return scanPrincipal(r.db.QueryRow(ctx, query, id, string(role)))
}

// ListByEmail returns every row for email across roles, oldest first.
func (r *principalRepository) ListByEmail(ctx context.Context, email string) ([]domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM users WHERE email=$1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	return collectPrincipals(rows)
}

func (r *principalRepository) List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, int, error) {
	clauses := []string{"role=$1"}
	args := []any{string(filter.Role)}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s)", placeholder, placeholder))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 25
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY name, id LIMIT %d OFFSET %d`,
		principalColumns, where, limit, offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectPrincipals(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *principalRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET last_login_at=$1 WHERE id=$2`, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row. audit_log.user_id is nulled by the foreign key.
func (r *principalRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var (
		p      domain.Principal
		role   string
		status string
	)
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.Name,
		&role,
		&status,
		&p.PasswordHash,
		&p.ScopeField,
		&p.ScopeValue,
		&p.CreatedAt,
		&p.LastLoginAt,
	); err != nil {
		return nil, mapError(err)
	}
	p.Role = domain.Role(role)
	p.Status = domain.PrincipalStatus(status)
	return &p, nil
}

func collectPrincipals(rows pgx.Rows) ([]domain.Principal, error) {
	defer rows.Close()

	var items []domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
