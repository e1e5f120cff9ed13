package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/docuvault/docuvault/internal/platform/db"
	"github.com/docuvault/docuvault/internal/shared"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for users and profiles.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository over a pool or transaction.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// FindByID fetches a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.findUser(ctx, `WHERE id = $1`, id)
}

// FindByUsername fetches a user by its unique username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.findUser(ctx, `WHERE username = $1`, username)
}

func (r *Repository) findUser(ctx context.Context, where string, arg any) (User, error) {
	var u User
	err := r.q.QueryRow(ctx,
		`SELECT id, username, email, password_hash, is_staff, is_superuser, is_active, created_at
FROM users `+where, arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// UsernameExists reports whether a user with the given username exists.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CreateUser inserts a new active user and returns its ID. A username
// collision surfaces as shared.ErrAlreadyExists.
func (r *Repository) CreateUser(ctx context.Context, nu NewUser) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, is_staff, is_superuser, is_active)
VALUES ($1, $2, $3, $4, $5, TRUE)
RETURNING id`,
		nu.Username, nu.Email, nu.PasswordHash, nu.IsStaff, nu.IsSuperuser,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, shared.ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

// CreateProfile links a user to its tenant.
func (r *Repository) CreateProfile(ctx context.Context, p Profile) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO user_profiles (user_id, tenant_id, is_platform_admin)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.TenantID, p.IsPlatformAdmin)
	return err
}

// FindProfile fetches the profile for a user.
func (r *Repository) FindProfile(ctx context.Context, userID int64) (Profile, error) {
	var p Profile
	err := r.q.QueryRow(ctx,
		`SELECT user_id, tenant_id, is_platform_admin FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.TenantID, &p.IsPlatformAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, shared.ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// ReplaceUserPermissions overwrites the direct permission set of a user.
func (r *Repository) ReplaceUserPermissions(ctx context.Context, userID int64, permissionIDs []int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, permID := range permissionIDs {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO user_permissions (user_id, permission_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`,
			userID, permID); err != nil {
			return err
		}
	}
	return nil
}

// CountUserPermissions returns the number of directly assigned permissions.
func (r *Repository) CountUserPermissions(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_permissions WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListAdminAccounts returns staff accounts following the tenant-admin naming
// convention. Superusers are excluded: they are platform operators, not
// tenant-scoped admins.
func (r *Repository) ListAdminAccounts(ctx context.Context) ([]User, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, username, email, password_hash, is_staff, is_superuser, is_active, created_at
FROM users
WHERE username LIKE '%-admin' AND is_staff AND NOT is_superuser
ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
