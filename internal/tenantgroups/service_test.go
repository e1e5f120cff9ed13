package tenantgroups

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docuvault/internal/catalog"
	_ "github.com/docuvault/docuvault/testing"
)

type mockRepository struct {
	groups  map[string]Group
	perms   map[int64][]int64
	members map[int64][]int64
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		groups:  make(map[string]Group),
		perms:   make(map[int64][]int64),
		members: make(map[int64][]int64),
		nextID:  1,
	}
}

func groupKey(tenantID uuid.UUID, name string) string {
	return tenantID.String() + "/" + name
}

func (m *mockRepository) GetOrCreate(ctx context.Context, tenantID uuid.UUID, name string) (Group, bool, error) {
	key := groupKey(tenantID, name)
	if g, ok := m.groups[key]; ok {
		return g, false, nil
	}
	g := Group{ID: m.nextID, TenantID: tenantID, Name: name}
	m.nextID++
	m.groups[key] = g
	return g, true, nil
}

func (m *mockRepository) ReplacePermissions(ctx context.Context, groupID int64, permissionIDs []int64) error {
	m.perms[groupID] = append([]int64(nil), permissionIDs...)
	return nil
}

func (m *mockRepository) AddMember(ctx context.Context, groupID, userID int64) error {
	m.members[groupID] = append(m.members[groupID], userID)
	return nil
}

type staticCatalog struct {
	perms []catalog.Permission
}

func (s *staticCatalog) Resolve(ctx context.Context) ([]catalog.Permission, error) {
	return s.perms, nil
}

func threePerms() *staticCatalog {
	return &staticCatalog{perms: []catalog.Permission{
		{ID: 1, Category: "documents", Codename: "view_document"},
		{ID: 2, Category: "documents", Codename: "add_document"},
		{ID: 3, Category: "accounts", Codename: "view_user"},
	}}
}

func newTestService(repo RepositoryPort, cat CatalogPort) *Service {
	return NewService(repo, cat, slog.New(slog.DiscardHandler))
}

func TestEnsureAdminGroupCreatesAndAssigns(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, threePerms())
	tenantID := uuid.New()

	group, perms, err := svc.EnsureAdminGroup(context.Background(), tenantID)
	require.NoError(t, err)

	assert.Equal(t, AdminGroupName, group.Name)
	assert.Equal(t, tenantID, group.TenantID)
	assert.Len(t, perms, 3)
	assert.Equal(t, []int64{1, 2, 3}, repo.perms[group.ID])
}

func TestEnsureAdminGroupIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, threePerms())
	tenantID := uuid.New()

	first, _, err := svc.EnsureAdminGroup(context.Background(), tenantID)
	require.NoError(t, err)
	second, _, err := svc.EnsureAdminGroup(context.Background(), tenantID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.groups, 1)
}

func TestEnsureAdminGroupOverwritesDriftedPermissions(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, threePerms())
	tenantID := uuid.New()

	group, _, err := svc.EnsureAdminGroup(context.Background(), tenantID)
	require.NoError(t, err)

	// Simulate manual tampering between calls.
	repo.perms[group.ID] = []int64{99}

	_, _, err = svc.EnsureAdminGroup(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, repo.perms[group.ID])
}

func TestEnsureAdminGroupPerTenantIsolation(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, threePerms())

	a, _, err := svc.EnsureAdminGroup(context.Background(), uuid.New())
	require.NoError(t, err)
	b, _, err := svc.EnsureAdminGroup(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, repo.groups, 2)
}

func TestAddMember(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, threePerms())

	group, _, err := svc.EnsureAdminGroup(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(context.Background(), group.ID, 42))

	assert.Equal(t, []int64{42}, repo.members[group.ID])
}
