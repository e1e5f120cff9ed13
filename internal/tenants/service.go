package tenants

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// ErrInvalidSubdomain marks a subdomain that is not a usable DNS label.
var ErrInvalidSubdomain = errors.New("tenants: invalid subdomain")

// RepositoryPort defines data access methods for tenants.
type RepositoryPort interface {
	Create(ctx context.Context, name, subdomain string) (Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
}

// ProvisionEnqueuer schedules admin provisioning for a freshly created tenant.
type ProvisionEnqueuer interface {
	EnqueueAdminProvision(ctx context.Context, tenant Tenant) error
}

// Service handles tenant business logic. Creating a tenant is the trigger for
// admin provisioning.
type Service struct {
	repo     RepositoryPort
	enqueuer ProvisionEnqueuer
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, enqueuer ProvisionEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, enqueuer: enqueuer, logger: logger}
}

// NormalizeSubdomain case-folds and trims a subdomain slug.
func NormalizeSubdomain(subdomain string) string {
	return cases.Fold().String(strings.TrimSpace(subdomain))
}

// Create validates and persists a tenant, then schedules admin provisioning.
// A failed enqueue does not roll the tenant back; the operator CLI can
// provision retroactively.
func (s *Service) Create(ctx context.Context, name, subdomain string) (Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tenant{}, errors.New("tenants: name required")
	}
	subdomain = NormalizeSubdomain(subdomain)
	if !subdomainPattern.MatchString(subdomain) {
		return Tenant{}, fmt.Errorf("%w: %q", ErrInvalidSubdomain, subdomain)
	}

	tenant, err := s.repo.Create(ctx, name, subdomain)
	if err != nil {
		return Tenant{}, err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueAdminProvision(ctx, tenant); err != nil {
			s.logger.Warn("enqueue admin provisioning",
				slog.String("subdomain", tenant.Subdomain),
				slog.Any("error", err))
		}
	}
	return tenant, nil
}

// GetBySubdomain fetches a tenant by slug.
func (s *Service) GetBySubdomain(ctx context.Context, subdomain string) (Tenant, error) {
	return s.repo.GetBySubdomain(ctx, NormalizeSubdomain(subdomain))
}

// List returns all tenants.
func (s *Service) List(ctx context.Context) ([]Tenant, error) {
	return s.repo.List(ctx)
}
