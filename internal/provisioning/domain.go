package provisioning

import (
	"github.com/google/uuid"

	"github.com/docuvault/docuvault/internal/tenants"
)

// Outcome classifies the result of provisioning one tenant.
type Outcome string

const (
	// OutcomeCreated means a fresh admin account was provisioned.
	OutcomeCreated Outcome = "created"
	// OutcomeSkipped means the admin account already existed.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means provisioning errored for this tenant.
	OutcomeFailed Outcome = "failed"
)

// Result reports the provisioning of a single tenant. Password is the
// plaintext credential, populated exactly once on OutcomeCreated; it is never
// stored in recoverable form.
type Result struct {
	Tenant      tenants.Tenant
	Username    string
	Password    string
	Permissions int
	Outcome     Outcome
	Err         error
}

// AdminUsername derives the conventional admin username for a subdomain.
func AdminUsername(subdomain string) string {
	return subdomain + "-admin"
}

// AdminEmail derives the conventional admin email for a subdomain.
func AdminEmail(subdomain string) string {
	return AdminUsername(subdomain) + "@" + subdomain + ".local"
}

// AdminRecord carries everything the store needs to create the admin
// account atomically.
type AdminRecord struct {
	TenantID     uuid.UUID
	Username     string
	Email        string
	PasswordHash string
}

// AdminAccount is a tenant-admin row as seen by the repair operations.
type AdminAccount struct {
	ID          int64
	Username    string
	IsStaff     bool
	IsSuperuser bool
	Permissions int
}
