package auth_test

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/docuvault/docuvault/internal/auth"
	"github.com/docuvault/docuvault/internal/identity"
	"github.com/docuvault/docuvault/internal/shared"
	_ "github.com/docuvault/docuvault/testing"
)

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := auth.NewService(newStubUsers())

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	if err != shared.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	users := newStubUsers(identity.User{
		ID: 1, Username: "acme-admin", PasswordHash: string(hash), IsActive: true,
	})
	svc := auth.NewService(users)

	user, err := svc.Authenticate(context.Background(), "acme-admin", "correctpass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestIsPlatformAdmin(t *testing.T) {
	users := newStubUsers()
	users.profiles[3] = identity.Profile{UserID: 3, IsPlatformAdmin: true}
	svc := auth.NewService(users)

	cases := []struct {
		name string
		user identity.User
		want bool
	}{
		{"active superuser", identity.User{ID: 1, IsSuperuser: true, IsActive: true}, true},
		{"inactive superuser", identity.User{ID: 1, IsSuperuser: true, IsActive: false}, false},
		{"flagged profile", identity.User{ID: 3, IsActive: true}, true},
		{"missing profile", identity.User{ID: 4, IsActive: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.IsPlatformAdmin(context.Background(), tc.user)
			if err != nil {
				t.Fatalf("is platform admin: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestPrincipalSourceSnapshotsUser(t *testing.T) {
	users := newStubUsers(identity.User{ID: 7, Username: "acme-admin", IsActive: true, IsSuperuser: false})
	source := auth.PrincipalSource{Users: users}

	principal, err := source.FindPrincipal(context.Background(), 7)
	if err != nil {
		t.Fatalf("find principal: %v", err)
	}
	if principal.ID != 7 || !principal.Active || principal.Superuser {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := source.FindPrincipal(context.Background(), 99); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}
