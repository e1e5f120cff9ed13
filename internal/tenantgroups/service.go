package tenantgroups

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docuvault/docuvault/internal/catalog"
)

// RepositoryPort defines data access methods for tenant groups.
type RepositoryPort interface {
	GetOrCreate(ctx context.Context, tenantID uuid.UUID, name string) (Group, bool, error)
	ReplacePermissions(ctx context.Context, groupID int64, permissionIDs []int64) error
	AddMember(ctx context.Context, groupID, userID int64) error
}

// CatalogPort resolves the fixed admin permission catalog.
type CatalogPort interface {
	Resolve(ctx context.Context) ([]catalog.Permission, error)
}

// Service maintains the per-tenant admin group.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	logger  *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cat CatalogPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: cat, logger: logger}
}

// EnsureAdminGroup gets or creates the "Tenant Admin" group for the tenant and
// overwrites its permission set with the current catalog. The replace runs on
// every call so the group never drifts from the catalog between releases.
func (s *Service) EnsureAdminGroup(ctx context.Context, tenantID uuid.UUID) (Group, []catalog.Permission, error) {
	group, created, err := s.repo.GetOrCreate(ctx, tenantID, AdminGroupName)
	if err != nil {
		return Group{}, nil, err
	}
	if created && s.logger != nil {
		s.logger.Info("created tenant admin group", slog.String("tenant_id", tenantID.String()))
	}

	perms, err := s.catalog.Resolve(ctx)
	if err != nil {
		return Group{}, nil, err
	}
	ids := make([]int64, len(perms))
	for i, p := range perms {
		ids[i] = p.ID
	}
	if err := s.repo.ReplacePermissions(ctx, group.ID, ids); err != nil {
		return Group{}, nil, err
	}

	if s.logger != nil {
		s.logger.Info("assigned permissions to tenant admin group",
			slog.String("tenant_id", tenantID.String()),
			slog.Int("permissions", len(perms)))
	}
	return group, perms, nil
}

// AddMember adds a user to a group.
func (s *Service) AddMember(ctx context.Context, groupID, userID int64) error {
	return s.repo.AddMember(ctx, groupID, userID)
}
