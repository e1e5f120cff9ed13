// Package catalog enumerates the fixed permission catalog granted to tenant
// admins: every document-management resource crossed with the four CRUD
// actions, plus account management.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/docuvault/docuvault/internal/shared"
)

// Permission is a stored (category, codename) capability.
type Permission struct {
	ID       int64
	Category string
	Codename string
}

// Qualified returns the permission in "category.codename" form,
// e.g. "documents.view_document".
func (p Permission) Qualified() string {
	return p.Category + "." + p.Codename
}

// Target names a resource inside a category.
type Target struct {
	Category string
	Resource string
}

// Actions are the CRUD verbs crossed with every target.
var Actions = []string{"add", "change", "delete", "view"}

var targets = []Target{
	{Category: "documents", Resource: "correspondent"},
	{Category: "documents", Resource: "tag"},
	{Category: "documents", Resource: "documenttype"},
	{Category: "documents", Resource: "document"},
	{Category: "documents", Resource: "storagepath"},
	{Category: "documents", Resource: "savedview"},
	{Category: "documents", Resource: "note"},
	{Category: "documents", Resource: "sharelink"},
	{Category: "documents", Resource: "customfield"},
	{Category: "documents", Resource: "customfieldinstance"},
	{Category: "documents", Resource: "tenantgroup"},
	{Category: "documents", Resource: "workflow"},
	{Category: "documents", Resource: "workflowtrigger"},
	{Category: "documents", Resource: "workflowaction"},
	{Category: "accounts", Resource: "user"},
}

// Targets returns the fixed resource list.
func Targets() []Target {
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}

// Codename builds the conventional codename for an action on a resource.
func Codename(action, resource string) string {
	return action + "_" + resource
}

// Size is the number of catalog entries when every target resolves.
func Size() int {
	return len(targets) * len(Actions)
}

// Lookup resolves a single (category, codename) pair to a stored permission.
type Lookup interface {
	FindPermission(ctx context.Context, category, codename string) (Permission, error)
}

// Resolver maps the fixed catalog to stored permission rows.
type Resolver struct {
	lookup Lookup
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(lookup Lookup, logger *slog.Logger) *Resolver {
	return &Resolver{lookup: lookup, logger: logger}
}

// Resolve returns every resolvable catalog permission. Missing rows are
// skipped with a warning; only storage failures surface as errors.
func (r *Resolver) Resolve(ctx context.Context) ([]Permission, error) {
	perms := make([]Permission, 0, Size())
	for _, target := range targets {
		for _, action := range Actions {
			codename := Codename(action, target.Resource)
			perm, err := r.lookup.FindPermission(ctx, target.Category, codename)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					if r.logger != nil {
						r.logger.Warn("permission not found, skipping",
							slog.String("category", target.Category),
							slog.String("codename", codename))
					}
					continue
				}
				return nil, err
			}
			perms = append(perms, perm)
		}
	}
	return perms, nil
}
