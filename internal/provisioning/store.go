package provisioning

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuvault/docuvault/internal/catalog"
	"github.com/docuvault/docuvault/internal/identity"
	"github.com/docuvault/docuvault/internal/platform/db"
	"github.com/docuvault/docuvault/internal/tenantgroups"
)

// PostgresStore implements Store on top of pgx. CreateAdmin runs the whole
// multi-record creation inside one transaction.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

// UsernameExists reports whether an account with the username exists.
func (s *PostgresStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	return identity.NewRepository(s.pool).UsernameExists(ctx, username)
}

// CreateAdmin creates the admin user, its profile, the tenant admin group
// with the full catalog, group membership, and the direct permission grants,
// all-or-nothing.
func (s *PostgresStore) CreateAdmin(ctx context.Context, rec AdminRecord) (int, error) {
	var count int
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		users := identity.NewRepository(tx)
		userID, err := users.CreateUser(ctx, identity.NewUser{
			Username:     rec.Username,
			Email:        rec.Email,
			PasswordHash: rec.PasswordHash,
			IsStaff:      true,
			IsSuperuser:  false,
		})
		if err != nil {
			return err
		}
		if err := users.CreateProfile(ctx, identity.Profile{
			UserID:   userID,
			TenantID: rec.TenantID,
		}); err != nil {
			return err
		}

		groups := tenantgroups.NewService(
			tenantgroups.NewRepository(tx),
			catalog.NewResolver(catalog.NewRepository(tx), s.logger),
			s.logger,
		)
		group, perms, err := groups.EnsureAdminGroup(ctx, rec.TenantID)
		if err != nil {
			return err
		}
		if err := groups.AddMember(ctx, group.ID, userID); err != nil {
			return err
		}

		// Direct grants too: consumers that only inspect user permissions
		// must still see the full catalog.
		ids := make([]int64, len(perms))
		for i, p := range perms {
			ids[i] = p.ID
		}
		if err := users.ReplaceUserPermissions(ctx, userID, ids); err != nil {
			return err
		}
		count = len(perms)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListAdminAccounts returns staff accounts matching the admin naming
// convention with their direct permission counts. Superusers are excluded.
func (s *PostgresStore) ListAdminAccounts(ctx context.Context) ([]AdminAccount, error) {
	users := identity.NewRepository(s.pool)
	rows, err := users.ListAdminAccounts(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]AdminAccount, 0, len(rows))
	for _, u := range rows {
		count, err := users.CountUserPermissions(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, AdminAccount{
			ID:          u.ID,
			Username:    u.Username,
			IsStaff:     u.IsStaff,
			IsSuperuser: u.IsSuperuser,
			Permissions: count,
		})
	}
	return accounts, nil
}

// ReplaceAdminPermissions overwrites the direct permission set of one account.
func (s *PostgresStore) ReplaceAdminPermissions(ctx context.Context, userID int64, permissionIDs []int64) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return identity.NewRepository(tx).ReplaceUserPermissions(ctx, userID, permissionIDs)
	})
}
