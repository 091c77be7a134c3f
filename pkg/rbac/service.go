package rbac

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tendant/orgidm/pkg/errors"
)

// RoleService provides role and permission management with the business
// rules enforced on top of a Repository
type RoleService struct {
	repository Repository
}

// NewRoleService creates a new role service
func NewRoleService(repository Repository) *RoleService {
	return &RoleService{
		repository: repository,
	}
}

// FindRoles returns all roles
func (s *RoleService) FindRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.repository.FindRoles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to find roles")
	}
	return roles, nil
}

// GetRole retrieves a role with its permission set
func (s *RoleService) GetRole(ctx context.Context, id uuid.UUID) (*RoleWithPermissions, error) {
	role, err := s.repository.GetRoleByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get role")
	}
	if role == nil {
		return nil, errors.New(errors.ErrCodeRoleNotFound, "role not found")
	}

	permissions, err := s.repository.GetPermissionsByRoleID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get role permissions")
	}

	return &RoleWithPermissions{Role: *role, Permissions: permissions}, nil
}

// CreateRole adds a new non-system role. Duplicate names are rejected.
func (s *RoleService) CreateRole(ctx context.Context, params CreateRoleParams) (*Role, error) {
	if params.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "role name cannot be empty")
	}

	existing, err := s.repository.GetRoleByName(ctx, params.Name)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to check role name")
	}
	if existing != nil {
		return nil, errors.Newf(errors.ErrCodeConflict, "role %q already exists", params.Name)
	}

	role, err := s.repository.CreateRole(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create role")
	}

	slog.Info("Role created", "role", role.Name, "id", role.ID)
	return role, nil
}

// UpdateRole modifies display metadata of any role, including system roles.
// Role names are identity anchors referenced by the guards and are never
// mutable here.
func (s *RoleService) UpdateRole(ctx context.Context, id uuid.UUID, params UpdateRoleParams) (*Role, error) {
	role, err := s.repository.UpdateRole(ctx, id, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to update role")
	}
	if role == nil {
		return nil, errors.New(errors.ErrCodeRoleNotFound, "role not found")
	}
	return role, nil
}

// DeleteRole removes a non-system role. System roles are undeletable.
func (s *RoleService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	role, err := s.repository.GetRoleByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to get role")
	}
	if role == nil {
		return errors.New(errors.ErrCodeRoleNotFound, "role not found")
	}
	if role.IsSystem {
		return errors.New(errors.ErrCodeForbidden, "cannot delete system role")
	}

	if err := s.repository.DeleteRole(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete role")
	}

	slog.Info("Role deleted", "role", role.Name, "id", role.ID)
	return nil
}

// FindPermissions returns the full permission catalogue
func (s *RoleService) FindPermissions(ctx context.Context) ([]Permission, error) {
	permissions, err := s.repository.FindPermissions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to find permissions")
	}
	return permissions, nil
}

// FindPermissionsGrouped returns the catalogue grouped by resource
func (s *RoleService) FindPermissionsGrouped(ctx context.Context) (map[string][]Permission, error) {
	permissions, err := s.FindPermissions(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]Permission)
	for _, p := range permissions {
		grouped[p.Resource] = append(grouped[p.Resource], p)
	}
	return grouped, nil
}

// GetPermissions returns the permissions granted to a role
func (s *RoleService) GetPermissions(ctx context.Context, roleID uuid.UUID) ([]Permission, error) {
	role, err := s.repository.GetRoleByID(ctx, roleID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get role")
	}
	if role == nil {
		return nil, errors.New(errors.ErrCodeRoleNotFound, "role not found")
	}

	permissions, err := s.repository.GetPermissionsByRoleID(ctx, roleID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get role permissions")
	}
	return permissions, nil
}

// AssignPermissions replaces the entire permission set of a role. The empty
// list is legal and clears all grants.
func (s *RoleService) AssignPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	role, err := s.repository.GetRoleByID(ctx, roleID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to get role")
	}
	if role == nil {
		return errors.New(errors.ErrCodeRoleNotFound, "role not found")
	}

	if err := s.repository.ReplaceRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to assign permissions")
	}

	slog.Info("Role permissions replaced", "role", role.Name, "count", len(permissionIDs))
	return nil
}

// GetRolePermissionsByName returns the effective permission set for a role
// name. An unknown role yields an empty set, not an error.
func (s *RoleService) GetRolePermissionsByName(ctx context.Context, roleName string) ([]Permission, error) {
	role, err := s.repository.GetRoleByName(ctx, roleName)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get role by name")
	}
	if role == nil {
		return []Permission{}, nil
	}

	permissions, err := s.repository.GetPermissionsByRoleID(ctx, role.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get role permissions")
	}
	return permissions, nil
}

// HasPermission reports whether the named role is granted (resource, action).
// Fails closed: an absent role or absent grant yields false, never an error.
func (s *RoleService) HasPermission(ctx context.Context, roleName, resource, action string) (bool, error) {
	granted, err := s.repository.HasPermission(ctx, roleName, resource, action)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternal, "failed to check permission")
	}
	return granted, nil
}
