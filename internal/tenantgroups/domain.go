package tenantgroups

import (
	"time"

	"github.com/google/uuid"
)

// AdminGroupName is the conventional name of the per-tenant admin group.
// Two tenants each own a group with this name; membership and permission
// assignment never cross tenants.
const AdminGroupName = "Tenant Admin"

// Group is a tenant-scoped bag of permissions and member users.
type Group struct {
	ID        int64
	TenantID  uuid.UUID
	Name      string
	CreatedAt time.Time
}
