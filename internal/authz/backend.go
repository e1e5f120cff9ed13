package authz

import "context"

// Store supplies the raw permission data for a principal. Absent data
// yields empty slices, never an error.
type Store interface {
	// DirectPermissions returns qualified permissions assigned straight to
	// the user.
	DirectPermissions(ctx context.Context, userID int64) ([]string, error)
	// GroupPermissions returns qualified permissions reachable through
	// standard group membership.
	GroupPermissions(ctx context.Context, userID int64) ([]string, error)
	// TenantGroupPermissions returns the distinct qualified permissions
	// attached to any tenant group the user belongs to.
	TenantGroupPermissions(ctx context.Context, userID int64) ([]string, error)
}

// Backend answers effective-permission queries for a principal.
type Backend interface {
	AllPermissions(ctx context.Context, p Principal, cache *Cache) (PermissionSet, error)
	HasPermission(ctx context.Context, p Principal, perm string, cache *Cache) (bool, error)
}

// TenantGroupBackend resolves permissions as the union of direct grants,
// standard group permissions, and tenant-group permissions. Tenant groups are
// unioned across every group the principal belongs to with no tenant filter;
// cross-tenant membership is expected to be prevented at assignment time.
type TenantGroupBackend struct {
	store Store
}

// NewTenantGroupBackend constructs the union backend.
func NewTenantGroupBackend(store Store) *TenantGroupBackend {
	return &TenantGroupBackend{store: store}
}

// tenantGroupPermissions memoizes the tenant-group arm.
func (b *TenantGroupBackend) tenantGroupPermissions(ctx context.Context, p Principal, cache *Cache) ([]string, error) {
	if cache.tenantLoaded {
		return cache.tenantGroupPerms, nil
	}
	perms, err := b.store.TenantGroupPermissions(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	cache.tenantGroupPerms = perms
	cache.tenantLoaded = true
	return perms, nil
}

// GroupPermissions returns the permissions the principal holds through both
// standard groups and tenant groups.
func (b *TenantGroupBackend) GroupPermissions(ctx context.Context, p Principal, cache *Cache) (PermissionSet, error) {
	if !p.Active {
		return PermissionSet{}, nil
	}
	if cache == nil {
		cache = NewCache()
	}
	if cache.groupLoaded {
		return cache.groupPerms, nil
	}

	set := PermissionSet{}
	groupPerms, err := b.store.GroupPermissions(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for _, perm := range groupPerms {
		set.Add(perm)
	}
	tenantPerms, err := b.tenantGroupPermissions(ctx, p, cache)
	if err != nil {
		return nil, err
	}
	for _, perm := range tenantPerms {
		set.Add(perm)
	}

	cache.groupPerms = set
	cache.groupLoaded = true
	return set, nil
}

// AllPermissions returns the full effective permission set. An inactive
// principal holds nothing, unconditionally.
func (b *TenantGroupBackend) AllPermissions(ctx context.Context, p Principal, cache *Cache) (PermissionSet, error) {
	if !p.Active {
		return PermissionSet{}, nil
	}
	if cache == nil {
		cache = NewCache()
	}
	if cache.allLoaded {
		return cache.allPerms, nil
	}

	set := PermissionSet{}
	direct, err := b.store.DirectPermissions(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for _, perm := range direct {
		set.Add(perm)
	}
	groups, err := b.GroupPermissions(ctx, p, cache)
	if err != nil {
		return nil, err
	}
	set.Merge(groups)

	cache.allPerms = set
	cache.allLoaded = true
	return set, nil
}

// HasPermission reports whether the principal effectively holds perm.
func (b *TenantGroupBackend) HasPermission(ctx context.Context, p Principal, perm string, cache *Cache) (bool, error) {
	if !p.Active {
		return false, nil
	}
	all, err := b.AllPermissions(ctx, p, cache)
	if err != nil {
		return false, err
	}
	return all.Has(perm), nil
}
