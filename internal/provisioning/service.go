package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/docuvault/docuvault/internal/catalog"
	"github.com/docuvault/docuvault/internal/shared"
	"github.com/docuvault/docuvault/internal/tenants"
)

// Store persists provisioning state. CreateAdmin must be atomic: a failure in
// any step leaves no user or profile behind.
type Store interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateAdmin(ctx context.Context, rec AdminRecord) (permissions int, err error)
	ListAdminAccounts(ctx context.Context) ([]AdminAccount, error)
	ReplaceAdminPermissions(ctx context.Context, userID int64, permissionIDs []int64) error
}

// CatalogPort resolves the fixed admin permission catalog.
type CatalogPort interface {
	Resolve(ctx context.Context) ([]catalog.Permission, error)
}

// Service provisions tenant admin accounts and repairs their permission sets.
type Service struct {
	store          Store
	catalog        CatalogPort
	logger         *slog.Logger
	passwordLength int
}

// NewService builds Service instance. passwordLength below one falls back to
// DefaultPasswordLength.
func NewService(store Store, cat CatalogPort, logger *slog.Logger, passwordLength int) *Service {
	if passwordLength < 1 {
		passwordLength = DefaultPasswordLength
	}
	return &Service{store: store, catalog: cat, logger: logger, passwordLength: passwordLength}
}

// Provision creates the admin account for one tenant. An existing account
// short-circuits to OutcomeSkipped; a concurrent duplicate creation surfaces
// from the store as shared.ErrAlreadyExists and is reported the same way.
func (s *Service) Provision(ctx context.Context, tenant tenants.Tenant) (Result, error) {
	username := AdminUsername(tenant.Subdomain)
	result := Result{Tenant: tenant, Username: username}

	exists, err := s.store.UsernameExists(ctx, username)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result, err
	}
	if exists {
		s.logger.Info("admin user already exists, skipping",
			slog.String("username", username))
		result.Outcome = OutcomeSkipped
		return result, nil
	}

	password, err := GeneratePassword(s.passwordLength)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("provisioning: hash password: %w", err)
		result.Outcome = OutcomeFailed
		result.Err = err
		return result, err
	}

	count, err := s.store.CreateAdmin(ctx, AdminRecord{
		TenantID:     tenant.ID,
		Username:     username,
		Email:        AdminEmail(tenant.Subdomain),
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost a race against a concurrent trigger for the same tenant;
			// the unique constraint turned it into a clean skip.
			result.Outcome = OutcomeSkipped
			return result, nil
		}
		result.Outcome = OutcomeFailed
		result.Err = err
		return result, err
	}

	s.logger.Info("created tenant admin",
		slog.String("username", username),
		slog.String("subdomain", tenant.Subdomain),
		slog.Int("permissions", count))

	result.Outcome = OutcomeCreated
	result.Password = password
	result.Permissions = count
	return result, nil
}

// AdminExists reports whether the conventional admin account already exists
// for the subdomain.
func (s *Service) AdminExists(ctx context.Context, subdomain string) (bool, error) {
	return s.store.UsernameExists(ctx, AdminUsername(subdomain))
}

// ProvisionAll provisions every tenant in the slice, continuing past
// per-tenant failures. The error on a failed Result is carried in Result.Err;
// the returned error is nil unless the batch itself could not run.
func (s *Service) ProvisionAll(ctx context.Context, all []tenants.Tenant) []Result {
	results := make([]Result, 0, len(all))
	for _, tenant := range all {
		result, err := s.Provision(ctx, tenant)
		if err != nil {
			s.logger.Error("failed to create admin",
				slog.String("subdomain", tenant.Subdomain),
				slog.Any("error", err))
		}
		results = append(results, result)
	}
	return results
}

// RepairReport describes one account touched by RepairAll.
type RepairReport struct {
	Username string
	Before   int
	After    int
}

// RepairAll overwrites the direct permission set of every tenant-admin
// account with the full catalog. Idempotent: a second run changes nothing.
func (s *Service) RepairAll(ctx context.Context) ([]RepairReport, error) {
	perms, err := s.catalog.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		return nil, errors.New("provisioning: no admin permissions resolvable")
	}
	ids := make([]int64, len(perms))
	for i, p := range perms {
		ids[i] = p.ID
	}

	accounts, err := s.store.ListAdminAccounts(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]RepairReport, 0, len(accounts))
	for _, account := range accounts {
		// Listing already excludes superusers; guard anyway so a widened
		// store query cannot hand the full catalog to platform operators.
		if account.IsSuperuser || !account.IsStaff {
			continue
		}
		if err := s.store.ReplaceAdminPermissions(ctx, account.ID, ids); err != nil {
			return reports, err
		}
		reports = append(reports, RepairReport{
			Username: account.Username,
			Before:   account.Permissions,
			After:    len(perms),
		})
	}
	return reports, nil
}

// AdminStatus lists tenant-admin accounts with their current permission
// counts, without changing anything.
func (s *Service) AdminStatus(ctx context.Context) ([]AdminAccount, int, error) {
	perms, err := s.catalog.Resolve(ctx)
	if err != nil {
		return nil, 0, err
	}
	accounts, err := s.store.ListAdminAccounts(ctx)
	if err != nil {
		return nil, 0, err
	}
	return accounts, len(perms), nil
}
