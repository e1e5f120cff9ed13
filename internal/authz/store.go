package authz

import (
	"context"

	"github.com/docuvault/docuvault/internal/platform/db"
)

// PermissionStore reads permission data from PostgreSQL. It implements both
// Store and PermissionLister.
type PermissionStore struct {
	q db.Querier
}

// NewPermissionStore constructs a store over a pool or transaction.
func NewPermissionStore(q db.Querier) *PermissionStore {
	return &PermissionStore{q: q}
}

func (s *PermissionStore) queryStrings(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var perm string
		if err := rows.Scan(&perm); err != nil {
			return nil, err
		}
		out = append(out, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DirectPermissions returns qualified permissions assigned straight to the user.
func (s *PermissionStore) DirectPermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.queryStrings(ctx,
		`SELECT p.category || '.' || p.codename
FROM permissions p
JOIN user_permissions up ON up.permission_id = p.id
WHERE up.user_id = $1`, userID)
}

// GroupPermissions returns qualified permissions reachable through standard
// group membership.
func (s *PermissionStore) GroupPermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.queryStrings(ctx,
		`SELECT DISTINCT p.category || '.' || p.codename
FROM permissions p
JOIN group_permissions gp ON gp.permission_id = p.id
JOIN user_groups ug ON ug.group_id = gp.group_id
WHERE ug.user_id = $1`, userID)
}

// TenantGroupPermissions returns the distinct qualified permissions attached
// to any tenant group the user belongs to, across all tenants.
func (s *PermissionStore) TenantGroupPermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.queryStrings(ctx,
		`SELECT DISTINCT p.category || '.' || p.codename
FROM permissions p
JOIN tenant_group_permissions tgp ON tgp.permission_id = p.id
JOIN tenant_group_users tgu ON tgu.tenant_group_id = tgp.tenant_group_id
WHERE tgu.user_id = $1`, userID)
}

// AllKnownPermissions returns every stored permission in qualified form.
func (s *PermissionStore) AllKnownPermissions(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx,
		`SELECT category || '.' || codename FROM permissions ORDER BY category, codename`)
}
