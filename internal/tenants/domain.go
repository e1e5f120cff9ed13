package tenants

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated customer context owning its own admin account and
// tenant groups.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	Subdomain string
	IsActive  bool
	CreatedAt time.Time
}
