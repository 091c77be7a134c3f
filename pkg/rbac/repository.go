package rbac

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for role and permission data access.
// GetRoleByID/GetRoleByName return (nil, nil) when no role matches.
type Repository interface {
	// Role operations
	FindRoles(ctx context.Context) ([]Role, error)
	GetRoleByID(ctx context.Context, id uuid.UUID) (*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, params CreateRoleParams) (*Role, error)
	UpdateRole(ctx context.Context, id uuid.UUID, params UpdateRoleParams) (*Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error

	// Permission operations
	FindPermissions(ctx context.Context) ([]Permission, error)
	GetPermissionsByRoleID(ctx context.Context, roleID uuid.UUID) ([]Permission, error)

	// ReplaceRolePermissions atomically replaces the entire permission set
	// of a role: delete all existing grants, then insert the given ids,
	// inside one transaction. An empty list clears all grants.
	ReplaceRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error

	// HasPermission reports whether the named role is granted
	// (resource, action). Absent role or absent grant yield false.
	HasPermission(ctx context.Context, roleName, resource, action string) (bool, error)

	// Conflict-tolerant upserts used by seeding; repeated calls never
	// duplicate or error
	UpsertRole(ctx context.Context, role Role) error
	UpsertPermission(ctx context.Context, permission Permission) error
	GrantPermission(ctx context.Context, roleName, resource, action string) error
}
