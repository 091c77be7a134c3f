package rbac

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu          sync.RWMutex
	roles       map[uuid.UUID]Role
	permissions map[uuid.UUID]Permission
	grants      map[uuid.UUID]map[uuid.UUID]struct{} // roleID -> set of permissionID
}

// NewInMemoryRepository creates a new in-memory RBAC repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		roles:       make(map[uuid.UUID]Role),
		permissions: make(map[uuid.UUID]Permission),
		grants:      make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// FindRoles returns all roles, system roles first
func (r *InMemoryRepository) FindRoles(ctx context.Context) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		if roles[i].IsSystem != roles[j].IsSystem {
			return roles[i].IsSystem
		}
		return roles[i].Name < roles[j].Name
	})
	return roles, nil
}

// GetRoleByID retrieves a role by id, (nil, nil) when absent
func (r *InMemoryRepository) GetRoleByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[id]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

// GetRoleByName retrieves a role by name, (nil, nil) when absent
func (r *InMemoryRepository) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role := r.findByName(name)
	if role == nil {
		return nil, nil
	}
	copied := *role
	return &copied, nil
}

// CreateRole inserts a new non-system role
func (r *InMemoryRepository) CreateRole(ctx context.Context, params CreateRoleParams) (*Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	color := params.Color
	if color == "" {
		color = "gray"
	}
	role := Role{
		ID:          uuid.New(),
		Name:        params.Name,
		DisplayName: params.DisplayName,
		Description: params.Description,
		Color:       color,
		IsSystem:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.roles[role.ID] = role
	r.grants[role.ID] = make(map[uuid.UUID]struct{})
	return &role, nil
}

// UpdateRole updates display metadata of a role, (nil, nil) when absent
func (r *InMemoryRepository) UpdateRole(ctx context.Context, id uuid.UUID, params UpdateRoleParams) (*Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.roles[id]
	if !ok {
		return nil, nil
	}
	if params.DisplayName != nil {
		role.DisplayName = *params.DisplayName
	}
	if params.Description != nil {
		role.Description = *params.Description
	}
	if params.Color != nil {
		role.Color = *params.Color
	}
	role.UpdatedAt = time.Now()
	r.roles[id] = role
	return &role, nil
}

// DeleteRole removes a role and its grants
func (r *InMemoryRepository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.roles, id)
	delete(r.grants, id)
	return nil
}

// FindPermissions returns the full permission catalogue
func (r *InMemoryRepository) FindPermissions(ctx context.Context) ([]Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	permissions := make([]Permission, 0, len(r.permissions))
	for _, p := range r.permissions {
		permissions = append(permissions, p)
	}
	sort.Slice(permissions, func(i, j int) bool {
		if permissions[i].Resource != permissions[j].Resource {
			return permissions[i].Resource < permissions[j].Resource
		}
		return permissions[i].Action < permissions[j].Action
	})
	return permissions, nil
}

// GetPermissionsByRoleID returns the permissions granted to a role
func (r *InMemoryRepository) GetPermissionsByRoleID(ctx context.Context, roleID uuid.UUID) ([]Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Permission
	for permissionID := range r.grants[roleID] {
		if p, ok := r.permissions[permissionID]; ok {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Resource != result[j].Resource {
			return result[i].Resource < result[j].Resource
		}
		return result[i].Action < result[j].Action
	})
	return result, nil
}

// ReplaceRolePermissions replaces the entire grant set of a role under one
// lock acquisition, so readers never see a partial set
func (r *InMemoryRepository) ReplaceRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	grants := make(map[uuid.UUID]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		grants[id] = struct{}{}
	}
	r.grants[roleID] = grants
	return nil
}

// HasPermission reports whether the named role is granted (resource, action)
func (r *InMemoryRepository) HasPermission(ctx context.Context, roleName, resource, action string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role := r.findByName(roleName)
	if role == nil {
		return false, nil
	}
	for permissionID := range r.grants[role.ID] {
		p, ok := r.permissions[permissionID]
		if ok && p.Resource == resource && p.Action == action {
			return true, nil
		}
	}
	return false, nil
}

// UpsertRole inserts a role if its name is not already taken
func (r *InMemoryRepository) UpsertRole(ctx context.Context, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByName(role.Name) != nil {
		return nil
	}
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	now := time.Now()
	role.CreatedAt = now
	role.UpdatedAt = now
	r.roles[role.ID] = role
	if _, ok := r.grants[role.ID]; !ok {
		r.grants[role.ID] = make(map[uuid.UUID]struct{})
	}
	return nil
}

// UpsertPermission inserts a permission if (resource, action) is absent
func (r *InMemoryRepository) UpsertPermission(ctx context.Context, permission Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.permissions {
		if p.Resource == permission.Resource && p.Action == permission.Action {
			return nil
		}
	}
	if permission.ID == uuid.Nil {
		permission.ID = uuid.New()
	}
	r.permissions[permission.ID] = permission
	return nil
}

// GrantPermission grants (resource, action) to the named role, tolerating
// repeats. Unknown roles or permissions are a no-op, matching the
// conflict-tolerant seeding semantics.
func (r *InMemoryRepository) GrantPermission(ctx context.Context, roleName, resource, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := r.findByName(roleName)
	if role == nil {
		return nil
	}
	for id, p := range r.permissions {
		if p.Resource == resource && p.Action == action {
			if _, ok := r.grants[role.ID]; !ok {
				r.grants[role.ID] = make(map[uuid.UUID]struct{})
			}
			r.grants[role.ID][id] = struct{}{}
			return nil
		}
	}
	return nil
}

// findByName must be called with the lock held
func (r *InMemoryRepository) findByName(name string) *Role {
	for id, role := range r.roles {
		if role.Name == name {
			copied := r.roles[id]
			return &copied
		}
	}
	return nil
}
