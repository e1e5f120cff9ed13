package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/docuvault/docuvault/internal/identity"
	"github.com/docuvault/docuvault/internal/shared"
)

// UserSource provides the identity lookups authentication needs.
type UserSource interface {
	FindByUsername(ctx context.Context, username string) (identity.User, error)
	FindByID(ctx context.Context, id int64) (identity.User, error)
	FindProfile(ctx context.Context, userID int64) (identity.Profile, error)
}

// Service wraps authentication business rules.
type Service struct {
	users UserSource
}

// NewService constructs a new Service.
func NewService(users UserSource) *Service {
	return &Service{users: users}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (identity.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return identity.User{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return identity.User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return identity.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// IsPlatformAdmin reports whether the user may manage tenants. Superusers
// always may; otherwise the profile flag decides. A missing profile means no.
func (s *Service) IsPlatformAdmin(ctx context.Context, user identity.User) (bool, error) {
	if user.IsSuperuser {
		return user.IsActive, nil
	}
	profile, err := s.users.FindProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsActive && profile.IsPlatformAdmin, nil
}
