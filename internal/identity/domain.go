package identity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticable account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
}

// Profile extends a user with its tenant association.
type Profile struct {
	UserID          int64
	TenantID        uuid.UUID
	IsPlatformAdmin bool
}

// NewUser carries the fields required to create an account.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool
}
