package tenantgroups

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/docuvault/docuvault/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for tenant groups.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository over a pool or transaction.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// GetOrCreate returns the group named name for the tenant, creating it when
// absent. The second return reports whether a new row was created.
func (r *Repository) GetOrCreate(ctx context.Context, tenantID uuid.UUID, name string) (Group, bool, error) {
	var g Group
	err := r.q.QueryRow(ctx,
		`SELECT id, tenant_id, name, created_at FROM tenant_groups WHERE tenant_id = $1 AND name = $2`,
		tenantID, name,
	).Scan(&g.ID, &g.TenantID, &g.Name, &g.CreatedAt)
	if err == nil {
		return g, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Group{}, false, err
	}

	err = r.q.QueryRow(ctx,
		`INSERT INTO tenant_groups (tenant_id, name)
VALUES ($1, $2)
ON CONFLICT (tenant_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, tenant_id, name, created_at`,
		tenantID, name,
	).Scan(&g.ID, &g.TenantID, &g.Name, &g.CreatedAt)
	if err != nil {
		return Group{}, false, err
	}
	return g, true, nil
}

// ListPermissionIDs returns the IDs of permissions currently attached to a group.
func (r *Repository) ListPermissionIDs(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT permission_id FROM tenant_group_permissions WHERE tenant_group_id = $1`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ReplacePermissions overwrites the group's permission set by attaching the
// missing IDs and detaching everything else.
func (r *Repository) ReplacePermissions(ctx context.Context, groupID int64, permissionIDs []int64) error {
	existing, err := r.ListPermissionIDs(ctx, groupID)
	if err != nil {
		return err
	}
	current := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		current[id] = struct{}{}
	}
	keep := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		keep[id] = struct{}{}
		if _, ok := current[id]; !ok {
			if _, err := r.q.Exec(ctx,
				`INSERT INTO tenant_group_permissions (tenant_group_id, permission_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`,
				groupID, id); err != nil {
				return err
			}
		}
	}
	for id := range current {
		if _, ok := keep[id]; !ok {
			if _, err := r.q.Exec(ctx,
				`DELETE FROM tenant_group_permissions WHERE tenant_group_id = $1 AND permission_id = $2`,
				groupID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddMember records group membership for a user.
func (r *Repository) AddMember(ctx context.Context, groupID, userID int64) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO tenant_group_users (tenant_group_id, user_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`,
		groupID, userID)
	return err
}
