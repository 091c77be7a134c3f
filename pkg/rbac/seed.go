package rbac

import (
	"context"
	"log/slog"
)

// permissionCatalogue is the fixed set of (resource, action) pairs seeded at
// startup
var permissionCatalogue = []Permission{
	// User permissions
	{Resource: "user", Action: "create", Description: "Create new users"},
	{Resource: "user", Action: "read", Description: "View user details"},
	{Resource: "user", Action: "update", Description: "Update user information"},
	{Resource: "user", Action: "delete", Description: "Delete users"},
	{Resource: "user", Action: "ban", Description: "Ban/unban users"},
	{Resource: "user", Action: "impersonate", Description: "Impersonate users"},
	{Resource: "user", Action: "set-role", Description: "Change user roles"},
	{Resource: "user", Action: "set-password", Description: "Reset user passwords"},
	// Session permissions
	{Resource: "session", Action: "read", Description: "View sessions"},
	{Resource: "session", Action: "revoke", Description: "Revoke sessions"},
	{Resource: "session", Action: "delete", Description: "Delete sessions"},
	// Organization permissions
	{Resource: "organization", Action: "create", Description: "Create organizations"},
	{Resource: "organization", Action: "read", Description: "View organizations"},
	{Resource: "organization", Action: "update", Description: "Update organizations"},
	{Resource: "organization", Action: "delete", Description: "Delete organizations"},
	{Resource: "organization", Action: "invite", Description: "Invite members"},
	// Role permissions
	{Resource: "role", Action: "create", Description: "Create roles"},
	{Resource: "role", Action: "read", Description: "View roles"},
	{Resource: "role", Action: "update", Description: "Update roles"},
	{Resource: "role", Action: "delete", Description: "Delete roles"},
	{Resource: "role", Action: "assign", Description: "Assign permissions to roles"},
}

// systemRoles are seeded once and are immutable by name and undeletable
var systemRoles = []Role{
	{
		Name:        RoleAdmin,
		DisplayName: "Admin",
		Description: "Global platform administrator with full access to all organizations and settings",
		Color:       "red",
		IsSystem:    true,
	},
	{
		Name:        RoleManager,
		DisplayName: "Manager",
		Description: "Organization manager with full access within their assigned organization",
		Color:       "blue",
		IsSystem:    true,
	},
	{
		Name:        RoleMember,
		DisplayName: "Member",
		Description: "Organization member with basic access within their assigned organization",
		Color:       "gray",
		IsSystem:    true,
	},
}

// managerGrants is the curated org-scoped management subset for the manager
// role
var managerGrants = [][2]string{
	{"user", "read"},
	{"user", "update"},
	{"user", "ban"},
	{"session", "read"},
	{"session", "revoke"},
	{"organization", "read"},
	{"organization", "update"},
	{"organization", "invite"},
	{"role", "read"},
}

// memberGrants is the minimal read-only subset for the member role
var memberGrants = [][2]string{
	{"user", "read"},
	{"organization", "read"},
	{"role", "read"},
}

// Seed upserts the permission catalogue and system roles, then grants the
// admin role every permission, the manager role the curated subset, and the
// member role the read-only subset. Every insert is conflict-tolerant, so
// repeated startup never duplicates or errors.
func Seed(ctx context.Context, repository Repository) error {
	for _, permission := range permissionCatalogue {
		if err := repository.UpsertPermission(ctx, permission); err != nil {
			return err
		}
	}

	for _, role := range systemRoles {
		if err := repository.UpsertRole(ctx, role); err != nil {
			return err
		}
	}

	for _, permission := range permissionCatalogue {
		if err := repository.GrantPermission(ctx, RoleAdmin, permission.Resource, permission.Action); err != nil {
			return err
		}
	}

	for _, grant := range managerGrants {
		if err := repository.GrantPermission(ctx, RoleManager, grant[0], grant[1]); err != nil {
			return err
		}
	}

	for _, grant := range memberGrants {
		if err := repository.GrantPermission(ctx, RoleMember, grant[0], grant[1]); err != nil {
			return err
		}
	}

	slog.Info("RBAC default roles and permissions seeded")
	return nil
}
