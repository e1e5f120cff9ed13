package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/docuvault/docuvault/internal/catalog"
	"github.com/docuvault/docuvault/internal/shared"
	"github.com/docuvault/docuvault/internal/tenants"
	_ "github.com/docuvault/docuvault/testing"
)

// ============================================================================
// MOCK STORE
// ============================================================================

type mockStore struct {
	admins map[string]AdminRecord
	grants map[int64][]int64
	nextID int64

	accounts []AdminAccount

	createError  error
	existsError  error
	replaceCalls int
}

func newMockStore() *mockStore {
	return &mockStore{
		admins: make(map[string]AdminRecord),
		grants: make(map[int64][]int64),
		nextID: 1,
	}
}

func (m *mockStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	if m.existsError != nil {
		return false, m.existsError
	}
	_, ok := m.admins[username]
	return ok, nil
}

func (m *mockStore) CreateAdmin(ctx context.Context, rec AdminRecord) (int, error) {
	if m.createError != nil {
		return 0, m.createError
	}
	if _, ok := m.admins[rec.Username]; ok {
		return 0, shared.ErrAlreadyExists
	}
	m.admins[rec.Username] = rec
	return fullCatalogSize, nil
}

func (m *mockStore) ListAdminAccounts(ctx context.Context) ([]AdminAccount, error) {
	return m.accounts, nil
}

func (m *mockStore) ReplaceAdminPermissions(ctx context.Context, userID int64, permissionIDs []int64) error {
	m.replaceCalls++
	m.grants[userID] = append([]int64(nil), permissionIDs...)
	return nil
}

// ============================================================================
// MOCK CATALOG
// ============================================================================

const fullCatalogSize = 60

type mockCatalog struct {
	perms      []catalog.Permission
	resolveErr error
}

func fullCatalog() *mockCatalog {
	perms := make([]catalog.Permission, 0, fullCatalogSize)
	for i, target := range catalog.Targets() {
		for j, action := range catalog.Actions {
			perms = append(perms, catalog.Permission{
				ID:       int64(i*len(catalog.Actions) + j + 1),
				Category: target.Category,
				Codename: catalog.Codename(action, target.Resource),
			})
		}
	}
	return &mockCatalog{perms: perms}
}

func (m *mockCatalog) Resolve(ctx context.Context) ([]catalog.Permission, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.perms, nil
}

func newTestService(store Store) *Service {
	return NewService(store, fullCatalog(), slog.New(slog.DiscardHandler), DefaultPasswordLength)
}

func demoTenant(subdomain string) tenants.Tenant {
	return tenants.Tenant{ID: uuid.New(), Name: subdomain + " Inc", Subdomain: subdomain, IsActive: true}
}

// ============================================================================
// PROVISION
// ============================================================================

func TestProvisionCreatesAdmin(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	result, err := svc.Provision(context.Background(), demoTenant("acme"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, result.Outcome)
	assert.Equal(t, "acme-admin", result.Username)
	assert.Len(t, result.Password, DefaultPasswordLength)
	assert.Equal(t, fullCatalogSize, result.Permissions)

	rec, ok := store.admins["acme-admin"]
	require.True(t, ok)
	assert.Equal(t, "acme-admin@acme.local", rec.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(result.Password)))
}

func TestProvisionSkipsExistingAdmin(t *testing.T) {
	store := newMockStore()
	store.admins["acme-admin"] = AdminRecord{Username: "acme-admin"}
	svc := newTestService(store)

	result, err := svc.Provision(context.Background(), demoTenant("acme"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Empty(t, result.Password)
}

func TestProvisionRaceLosesCleanly(t *testing.T) {
	store := newMockStore()
	store.createError = shared.ErrAlreadyExists
	svc := newTestService(store)

	result, err := svc.Provision(context.Background(), demoTenant("acme"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
}

func TestProvisionReportsStoreFailure(t *testing.T) {
	store := newMockStore()
	store.createError = errors.New("connection reset")
	svc := newTestService(store)

	result, err := svc.Provision(context.Background(), demoTenant("acme"))
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, err, result.Err)
}

func TestProvisionAllContinuesPastFailures(t *testing.T) {
	// Second tenant fails on the existence check, third still provisions.
	calls := 0
	failing := &flakyStore{inner: newMockStore(), failOn: 2, calls: &calls}
	svc := newTestService(failing)

	results := svc.ProvisionAll(context.Background(),
		[]tenants.Tenant{demoTenant("alpha"), demoTenant("beta"), demoTenant("gamma")})
	require.Len(t, results, 3)

	assert.Equal(t, OutcomeCreated, results[0].Outcome)
	assert.Equal(t, OutcomeFailed, results[1].Outcome)
	assert.Equal(t, OutcomeCreated, results[2].Outcome)
}

type flakyStore struct {
	inner  Store
	failOn int
	calls  *int
}

func (f *flakyStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	*f.calls++
	if *f.calls == f.failOn {
		return false, errors.New("timeout")
	}
	return f.inner.UsernameExists(ctx, username)
}

func (f *flakyStore) CreateAdmin(ctx context.Context, rec AdminRecord) (int, error) {
	return f.inner.CreateAdmin(ctx, rec)
}

func (f *flakyStore) ListAdminAccounts(ctx context.Context) ([]AdminAccount, error) {
	return f.inner.ListAdminAccounts(ctx)
}

func (f *flakyStore) ReplaceAdminPermissions(ctx context.Context, userID int64, permissionIDs []int64) error {
	return f.inner.ReplaceAdminPermissions(ctx, userID, permissionIDs)
}

func TestAdminExists(t *testing.T) {
	store := newMockStore()
	store.admins["acme-admin"] = AdminRecord{Username: "acme-admin"}
	svc := newTestService(store)

	exists, err := svc.AdminExists(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.AdminExists(context.Background(), "globex")
	require.NoError(t, err)
	assert.False(t, exists)
}

// ============================================================================
// REPAIR
// ============================================================================

func TestRepairAllRestoresFullCatalog(t *testing.T) {
	store := newMockStore()
	store.accounts = []AdminAccount{
		{ID: 10, Username: "acme-admin", IsStaff: true, Permissions: 12},
		{ID: 11, Username: "globex-admin", IsStaff: true, Permissions: 0},
	}
	svc := newTestService(store)

	reports, err := svc.RepairAll(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, RepairReport{Username: "acme-admin", Before: 12, After: fullCatalogSize}, reports[0])
	assert.Equal(t, RepairReport{Username: "globex-admin", Before: 0, After: fullCatalogSize}, reports[1])
	assert.Len(t, store.grants[10], fullCatalogSize)
	assert.Len(t, store.grants[11], fullCatalogSize)
}

func TestRepairAllSkipsSuperusersAndNonStaff(t *testing.T) {
	store := newMockStore()
	store.accounts = []AdminAccount{
		{ID: 1, Username: "operator", IsStaff: true, IsSuperuser: true},
		{ID: 2, Username: "stray-admin", IsStaff: false},
		{ID: 3, Username: "acme-admin", IsStaff: true},
	}
	svc := newTestService(store)

	reports, err := svc.RepairAll(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "acme-admin", reports[0].Username)
	assert.Equal(t, 1, store.replaceCalls)
}

func TestRepairAllIdempotent(t *testing.T) {
	store := newMockStore()
	store.accounts = []AdminAccount{
		{ID: 10, Username: "acme-admin", IsStaff: true, Permissions: fullCatalogSize},
	}
	svc := newTestService(store)

	first, err := svc.RepairAll(context.Background())
	require.NoError(t, err)
	afterFirst := append([]int64(nil), store.grants[10]...)

	second, err := svc.RepairAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first[0].After, second[0].After)
	assert.Equal(t, afterFirst, store.grants[10])
	assert.Len(t, store.grants[10], fullCatalogSize)
}

func TestRepairAllRefusesEmptyCatalog(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockCatalog{}, slog.New(slog.DiscardHandler), DefaultPasswordLength)

	_, err := svc.RepairAll(context.Background())
	require.Error(t, err)
	assert.Zero(t, store.replaceCalls)
}

func TestAdminStatus(t *testing.T) {
	store := newMockStore()
	store.accounts = []AdminAccount{
		{ID: 10, Username: "acme-admin", IsStaff: true, Permissions: 42},
	}
	svc := newTestService(store)

	accounts, catalogSize, err := svc.AdminStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fullCatalogSize, catalogSize)
	require.Len(t, accounts, 1)
	assert.Equal(t, 42, accounts[0].Permissions)
}
