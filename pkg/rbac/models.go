package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Canonical system role names. These are seeded once, immutable by name,
// and referenced directly by the authorization guards.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// SystemRoleNames returns the closed set of seeded role names
func SystemRoleNames() []string {
	return []string{RoleAdmin, RoleManager, RoleMember}
}

// Role represents a named role with display metadata. System roles cannot
// be deleted and their names cannot change.
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission represents a (resource, action) pair, unique together
type Permission struct {
	ID          uuid.UUID `json:"id"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	Description string    `json:"description,omitempty"`
}

// RoleWithPermissions represents a role with its effective permission set
type RoleWithPermissions struct {
	Role
	Permissions []Permission `json:"permissions"`
}

// CreateRoleParams contains parameters for creating a new role
type CreateRoleParams struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// UpdateRoleParams contains parameters for updating a role. The role name
// is deliberately absent: names are identity anchors and never change.
type UpdateRoleParams struct {
	DisplayName *string `json:"display_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}
