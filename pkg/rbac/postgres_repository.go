package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL RBAC repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

const roleColumns = `id, name, display_name, description, color, is_system, created_at, updated_at`

// FindRoles returns all roles, system roles first
func (r *PostgresRepository) FindRoles(ctx context.Context) ([]Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY is_system DESC, name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find roles: %w", err)
	}
	defer rows.Close()

	var result []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		result = append(result, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}
	return result, nil
}

// GetRoleByID retrieves a role by id, (nil, nil) when absent
func (r *PostgresRepository) GetRoleByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`

	role, err := scanRole(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// GetRoleByName retrieves a role by name, (nil, nil) when absent
func (r *PostgresRepository) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE name = $1`

	role, err := scanRole(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role by name: %w", err)
	}
	return role, nil
}

// CreateRole inserts a new non-system role
func (r *PostgresRepository) CreateRole(ctx context.Context, params CreateRoleParams) (*Role, error) {
	query := `
		INSERT INTO roles (name, display_name, description, color, is_system)
		VALUES ($1, $2, $3, $4, false)
		RETURNING ` + roleColumns

	color := params.Color
	if color == "" {
		color = "gray"
	}

	role, err := scanRole(r.pool.QueryRow(ctx, query,
		params.Name, params.DisplayName, params.Description, color))
	if err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

// UpdateRole updates display metadata of a role. The name column is never
// touched.
func (r *PostgresRepository) UpdateRole(ctx context.Context, id uuid.UUID, params UpdateRoleParams) (*Role, error) {
	query := `
		UPDATE roles SET
			display_name = COALESCE($2, display_name),
			description = COALESCE($3, description),
			color = COALESCE($4, color),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + roleColumns

	role, err := scanRole(r.pool.QueryRow(ctx, query,
		id, params.DisplayName, params.Description, params.Color))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return role, nil
}

// DeleteRole removes a role. Grants are removed by the role_permissions
// ON DELETE CASCADE constraint.
func (r *PostgresRepository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

// FindPermissions returns the full permission catalogue
func (r *PostgresRepository) FindPermissions(ctx context.Context) ([]Permission, error) {
	query := `SELECT id, resource, action, description FROM permissions ORDER BY resource, action`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find permissions: %w", err)
	}
	defer rows.Close()

	return collectPermissions(rows)
}

// GetPermissionsByRoleID returns the permissions granted to a role
func (r *PostgresRepository) GetPermissionsByRoleID(ctx context.Context, roleID uuid.UUID) ([]Permission, error) {
	query := `
		SELECT p.id, p.resource, p.action, p.description
		FROM permissions p
		JOIN role_permissions rp ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.resource, p.action
	`

	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}
	defer rows.Close()

	return collectPermissions(rows)
}

// ReplaceRolePermissions replaces the entire grant set of a role inside one
// transaction. A concurrent reader sees either the old set or the new set,
// never a mix.
func (r *PostgresRepository) ReplaceRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID)
	if err != nil {
		return fmt.Errorf("failed to clear role permissions: %w", err)
	}

	for _, permissionID := range permissionIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
			roleID, permissionID)
		if err != nil {
			return fmt.Errorf("failed to insert role permission: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit role permissions: %w", err)
	}
	return nil
}

// HasPermission reports whether the named role is granted (resource, action)
func (r *PostgresRepository) HasPermission(ctx context.Context, roleName, resource, action string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM role_permissions rp
			JOIN roles r ON r.id = rp.role_id
			JOIN permissions p ON p.id = rp.permission_id
			WHERE r.name = $1 AND p.resource = $2 AND p.action = $3
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, roleName, resource, action).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	return exists, nil
}

// UpsertRole inserts a role if its name is not already taken
func (r *PostgresRepository) UpsertRole(ctx context.Context, role Role) error {
	query := `
		INSERT INTO roles (name, display_name, description, color, is_system)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		role.Name, role.DisplayName, role.Description, role.Color, role.IsSystem)
	if err != nil {
		return fmt.Errorf("failed to upsert role %q: %w", role.Name, err)
	}
	return nil
}

// UpsertPermission inserts a permission if (resource, action) is not already
// present
func (r *PostgresRepository) UpsertPermission(ctx context.Context, permission Permission) error {
	query := `
		INSERT INTO permissions (resource, action, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (resource, action) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		permission.Resource, permission.Action, permission.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert permission %s:%s: %w",
			permission.Resource, permission.Action, err)
	}
	return nil
}

// GrantPermission grants (resource, action) to the named role, tolerating
// repeats
func (r *PostgresRepository) GrantPermission(ctx context.Context, roleName, resource, action string) error {
	query := `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT r.id, p.id
		FROM roles r, permissions p
		WHERE r.name = $1 AND p.resource = $2 AND p.action = $3
		ON CONFLICT DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, roleName, resource, action)
	if err != nil {
		return fmt.Errorf("failed to grant %s:%s to role %q: %w", resource, action, roleName, err)
	}
	return nil
}

// scanRole maps a roles row onto the domain model
func scanRole(row pgx.Row) (*Role, error) {
	role := &Role{}
	err := row.Scan(
		&role.ID,
		&role.Name,
		&role.DisplayName,
		&role.Description,
		&role.Color,
		&role.IsSystem,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func collectPermissions(rows pgx.Rows) ([]Permission, error) {
	var result []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Resource, &p.Action, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate permissions: %w", err)
	}
	return result, nil
}
