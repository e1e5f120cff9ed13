package auth

import (
	"context"

	"github.com/docuvault/docuvault/internal/authz"
)

// PrincipalSource adapts identity lookups to the authz backend.
type PrincipalSource struct {
	Users UserSource
}

// FindPrincipal loads the principal snapshot for a user ID.
func (s PrincipalSource) FindPrincipal(ctx context.Context, userID int64) (authz.Principal, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return authz.Principal{}, err
	}
	return authz.Principal{
		ID:        user.ID,
		Active:    user.IsActive,
		Superuser: user.IsSuperuser,
	}, nil
}
