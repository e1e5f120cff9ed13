// Package authz computes effective permission sets for principals from three
// sources: direct grants, standard group membership, and tenant-group
// membership. It mirrors a layered-backend arrangement: the union backend
// here never special-cases superusers; a SuperuserBackend composed in front
// of it via Chain covers that.
package authz

// Principal is the read-only snapshot of an account the backends evaluate.
type Principal struct {
	ID        int64
	Active    bool
	Superuser bool
}

// PermissionSet is a set of qualified permission strings
// ("category.codename", e.g. "documents.view_document").
type PermissionSet map[string]struct{}

// Has reports membership.
func (s PermissionSet) Has(perm string) bool {
	_, ok := s[perm]
	return ok
}

// Add inserts a permission.
func (s PermissionSet) Add(perm string) {
	s[perm] = struct{}{}
}

// Merge unions other into s.
func (s PermissionSet) Merge(other PermissionSet) {
	for perm := range other {
		s[perm] = struct{}{}
	}
}

// Slice returns the permissions in unspecified order.
func (s PermissionSet) Slice() []string {
	out := make([]string, 0, len(s))
	for perm := range s {
		out = append(out, perm)
	}
	return out
}
