package tenants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/docuvault/docuvault/internal/platform/db"
	"github.com/docuvault/docuvault/internal/shared"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for tenants.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository over a pool or transaction.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// Create inserts a new tenant. A subdomain collision surfaces as
// shared.ErrAlreadyExists.
func (r *Repository) Create(ctx context.Context, name, subdomain string) (Tenant, error) {
	var t Tenant
	err := r.q.QueryRow(ctx,
		`INSERT INTO tenants (id, name, subdomain, is_active)
VALUES ($1, $2, $3, TRUE)
RETURNING id, name, subdomain, is_active, created_at`,
		uuid.New(), name, subdomain,
	).Scan(&t.ID, &t.Name, &t.Subdomain, &t.IsActive, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Tenant{}, shared.ErrAlreadyExists
		}
		return Tenant{}, err
	}
	return t, nil
}

// GetBySubdomain fetches a tenant by its unique subdomain slug.
func (r *Repository) GetBySubdomain(ctx context.Context, subdomain string) (Tenant, error) {
	var t Tenant
	err := r.q.QueryRow(ctx,
		`SELECT id, name, subdomain, is_active, created_at FROM tenants WHERE subdomain = $1`,
		subdomain,
	).Scan(&t.ID, &t.Name, &t.Subdomain, &t.IsActive, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, shared.ErrNotFound
		}
		return Tenant{}, err
	}
	return t, nil
}

// List returns all tenants ordered by subdomain.
func (r *Repository) List(ctx context.Context) ([]Tenant, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, subdomain, is_active, created_at FROM tenants ORDER BY subdomain`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Subdomain, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
