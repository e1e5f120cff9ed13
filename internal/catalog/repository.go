package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/docuvault/docuvault/internal/platform/db"
	"github.com/docuvault/docuvault/internal/shared"
)

// Repository provides PostgreSQL backed permission lookup.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository over a pool or transaction.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// FindPermission fetches a permission row by its (category, codename) pair.
func (r *Repository) FindPermission(ctx context.Context, category, codename string) (Permission, error) {
	var perm Permission
	err := r.q.QueryRow(ctx,
		`SELECT id, category, codename FROM permissions WHERE category = $1 AND codename = $2`,
		category, codename,
	).Scan(&perm.ID, &perm.Category, &perm.Codename)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, err
	}
	return perm, nil
}
