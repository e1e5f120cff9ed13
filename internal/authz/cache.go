package authz

// Cache memoizes the three permission lookups for a single principal during
// one authorization operation. The caller constructs it, passes it through
// related checks, and discards it; nothing inside the package retains or
// invalidates it. Construct a fresh Cache after changing a principal's
// permissions, memberships, or active flag.
type Cache struct {
	tenantGroupPerms []string
	tenantLoaded     bool

	groupPerms  PermissionSet
	groupLoaded bool

	allPerms  PermissionSet
	allLoaded bool
}

// NewCache returns an empty per-operation cache.
func NewCache() *Cache {
	return &Cache{}
}
