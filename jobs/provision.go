package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/docuvault/docuvault/internal/provisioning"
	"github.com/docuvault/docuvault/internal/tenants"
)

// Provisioner creates the admin account for one tenant.
type Provisioner interface {
	Provision(ctx context.Context, tenant tenants.Tenant) (provisioning.Result, error)
}

// ProvisionMetrics counts provisioned admin accounts.
type ProvisionMetrics interface {
	AdminProvisioned()
}

// AdminProvisionJob reacts to tenant creation by provisioning the tenant's
// admin account.
type AdminProvisionJob struct {
	provisioner Provisioner
	logger      *slog.Logger
	metrics     ProvisionMetrics
}

// NewAdminProvisionJob constructs the job handler. metrics may be nil.
func NewAdminProvisionJob(provisioner Provisioner, logger *slog.Logger, metrics ProvisionMetrics) *AdminProvisionJob {
	return &AdminProvisionJob{provisioner: provisioner, logger: logger, metrics: metrics}
}

// Handle processes TaskAdminProvision tasks. Provisioning is idempotent, so a
// redelivered task lands on the skip path.
func (j *AdminProvisionJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AdminProvisionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	result, err := j.provisioner.Provision(ctx, tenants.Tenant{
		ID:        payload.TenantID,
		Name:      payload.Name,
		Subdomain: payload.Subdomain,
		IsActive:  true,
	})
	if err != nil {
		j.logger.Error("provision tenant admin",
			slog.String("subdomain", payload.Subdomain),
			slog.Any("error", err))
		return err
	}

	if result.Outcome == provisioning.OutcomeCreated {
		if j.metrics != nil {
			j.metrics.AdminProvisioned()
		}
		// The only place the plaintext ever appears; it is not stored.
		j.logger.Warn("tenant admin credentials - save securely\n" +
			CredentialBanner(result))
	}
	return nil
}

// CredentialBanner renders the one-time credential notice for a freshly
// provisioned admin.
func CredentialBanner(result provisioning.Result) string {
	line := strings.Repeat("=", 70)
	var b strings.Builder
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "TENANT ADMIN CREDENTIALS - SAVE SECURELY")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Tenant:   %s (%s)\n", result.Tenant.Name, result.Tenant.Subdomain)
	fmt.Fprintf(&b, "Username: %s\n", result.Username)
	fmt.Fprintf(&b, "Password: %s\n", result.Password)
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "This password will not be shown again!")
	fmt.Fprint(&b, line)
	return b.String()
}
