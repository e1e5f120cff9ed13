package tenants

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docuvault/internal/shared"
	_ "github.com/docuvault/docuvault/testing"
)

type mockRepository struct {
	bySubdomain map[string]Tenant
	createError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{bySubdomain: make(map[string]Tenant)}
}

func (m *mockRepository) Create(ctx context.Context, name, subdomain string) (Tenant, error) {
	if m.createError != nil {
		return Tenant{}, m.createError
	}
	if _, ok := m.bySubdomain[subdomain]; ok {
		return Tenant{}, shared.ErrAlreadyExists
	}
	t := Tenant{ID: uuid.New(), Name: name, Subdomain: subdomain, IsActive: true}
	m.bySubdomain[subdomain] = t
	return t, nil
}

func (m *mockRepository) GetBySubdomain(ctx context.Context, subdomain string) (Tenant, error) {
	t, ok := m.bySubdomain[subdomain]
	if !ok {
		return Tenant{}, shared.ErrNotFound
	}
	return t, nil
}

func (m *mockRepository) List(ctx context.Context) ([]Tenant, error) {
	out := make([]Tenant, 0, len(m.bySubdomain))
	for _, t := range m.bySubdomain {
		out = append(out, t)
	}
	return out, nil
}

type mockEnqueuer struct {
	enqueued []Tenant
	err      error
}

func (m *mockEnqueuer) EnqueueAdminProvision(ctx context.Context, tenant Tenant) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, tenant)
	return nil
}

func newTestService(repo RepositoryPort, enqueuer ProvisionEnqueuer) *Service {
	return NewService(repo, enqueuer, slog.New(slog.DiscardHandler))
}

func TestNormalizeSubdomain(t *testing.T) {
	assert.Equal(t, "acme", NormalizeSubdomain("  ACME  "))
	assert.Equal(t, "my-tenant", NormalizeSubdomain("My-Tenant"))
}

func TestCreateTriggersProvisioning(t *testing.T) {
	repo := newMockRepository()
	enqueuer := &mockEnqueuer{}
	svc := newTestService(repo, enqueuer)

	tenant, err := svc.Create(context.Background(), "Acme Corporation", "Acme")
	require.NoError(t, err)

	assert.Equal(t, "acme", tenant.Subdomain)
	assert.True(t, tenant.IsActive)
	require.Len(t, enqueuer.enqueued, 1)
	assert.Equal(t, tenant.ID, enqueuer.enqueued[0].ID)
}

func TestCreateRejectsInvalidSubdomain(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, &mockEnqueuer{})

	for _, subdomain := range []string{"", "-acme", "acme-", "ac me", "acm_e", "über"} {
		_, err := svc.Create(context.Background(), "Acme", subdomain)
		assert.ErrorIs(t, err, ErrInvalidSubdomain, "subdomain %q", subdomain)
	}
	assert.Empty(t, repo.bySubdomain)
}

func TestCreateRequiresName(t *testing.T) {
	svc := newTestService(newMockRepository(), &mockEnqueuer{})

	_, err := svc.Create(context.Background(), "   ", "acme")
	require.Error(t, err)
}

func TestCreateDuplicateSubdomain(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, &mockEnqueuer{})

	_, err := svc.Create(context.Background(), "Acme", "acme")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "Acme Again", "acme")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCreateSurvivesEnqueueFailure(t *testing.T) {
	repo := newMockRepository()
	enqueuer := &mockEnqueuer{err: errors.New("redis down")}
	svc := newTestService(repo, enqueuer)

	tenant, err := svc.Create(context.Background(), "Acme", "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.Subdomain)

	// The tenant row survives even though the trigger was lost.
	_, err = repo.GetBySubdomain(context.Background(), "acme")
	require.NoError(t, err)
}

func TestGetBySubdomainNormalizes(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, &mockEnqueuer{})

	created, err := svc.Create(context.Background(), "Acme", "acme")
	require.NoError(t, err)

	got, err := svc.GetBySubdomain(context.Background(), " ACME ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}
