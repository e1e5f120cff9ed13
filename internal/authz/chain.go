package authz

import "context"

// PermissionLister enumerates every known permission, used by the superuser
// backend to answer AllPermissions.
type PermissionLister interface {
	AllKnownPermissions(ctx context.Context) ([]string, error)
}

// SuperuserBackend grants active superusers everything and nothing to anyone
// else. Kept separate from TenantGroupBackend so the bypass stays an
// ordering decision of the chain, not a property of the union logic.
type SuperuserBackend struct {
	lister PermissionLister
}

// NewSuperuserBackend constructs the bypass backend.
func NewSuperuserBackend(lister PermissionLister) *SuperuserBackend {
	return &SuperuserBackend{lister: lister}
}

// AllPermissions returns every known permission for an active superuser.
func (b *SuperuserBackend) AllPermissions(ctx context.Context, p Principal, _ *Cache) (PermissionSet, error) {
	if !p.Active || !p.Superuser {
		return PermissionSet{}, nil
	}
	perms, err := b.lister.AllKnownPermissions(ctx)
	if err != nil {
		return nil, err
	}
	set := make(PermissionSet, len(perms))
	for _, perm := range perms {
		set.Add(perm)
	}
	return set, nil
}

// HasPermission grants any permission to an active superuser.
func (b *SuperuserBackend) HasPermission(_ context.Context, p Principal, _ string, _ *Cache) (bool, error) {
	return p.Active && p.Superuser, nil
}

// Chain evaluates backends in order and unions their answers, the way the
// host application composes its superuser and tenant-group layers.
type Chain struct {
	backends []Backend
}

// NewChain constructs a chain; order is first-checked-first.
func NewChain(backends ...Backend) *Chain {
	return &Chain{backends: backends}
}

// AllPermissions unions the answer of every backend.
func (c *Chain) AllPermissions(ctx context.Context, p Principal, cache *Cache) (PermissionSet, error) {
	if cache == nil {
		cache = NewCache()
	}
	set := PermissionSet{}
	for _, backend := range c.backends {
		perms, err := backend.AllPermissions(ctx, p, cache)
		if err != nil {
			return nil, err
		}
		set.Merge(perms)
	}
	return set, nil
}

// HasPermission returns true as soon as any backend grants perm.
func (c *Chain) HasPermission(ctx context.Context, p Principal, perm string, cache *Cache) (bool, error) {
	if cache == nil {
		cache = NewCache()
	}
	for _, backend := range c.backends {
		ok, err := backend.HasPermission(ctx, p, perm, cache)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
