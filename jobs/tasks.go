package jobs

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAdminProvision is the task type for provisioning a tenant admin.
	TaskAdminProvision = "admin:provision"
)

// AdminProvisionPayload identifies the tenant whose admin should be created.
type AdminProvisionPayload struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	Subdomain string    `json:"subdomain"`
	Name      string    `json:"name"`
}

// NewAdminProvisionTask constructs an Asynq task.
func NewAdminProvisionTask(payload AdminProvisionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAdminProvision, data), nil
}
