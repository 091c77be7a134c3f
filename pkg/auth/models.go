package auth

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated identity attached to a request: the owning
// user of the presented session and that user's global platform role. For a
// delegated session the principal is the impersonated target user.
type Principal struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name,omitempty"`
	Role        string     `json:"role"`
	DelegatedBy *uuid.UUID `json:"delegated_by,omitempty"`
	Token       string     `json:"-"`
}

// User is the read-only view of a user owned by the external identity
// provider
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
	Role  string    `json:"role"`
}

type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey contextKey = "orgidm.principal"
	// OrgRoleKey is the context key for the caller's org-scoped role
	OrgRoleKey contextKey = "orgidm.orgRole"
	// OrgIDKey is the context key for the resolved organization id
	OrgIDKey contextKey = "orgidm.orgID"
)

// WithPrincipal attaches the authenticated principal to the context
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// request is unauthenticated
func PrincipalFromContext(ctx context.Context) *Principal {
	principal, ok := ctx.Value(PrincipalKey).(*Principal)
	if !ok {
		return nil
	}
	return principal
}

// WithOrgRole attaches the caller's org-scoped role to the context
func WithOrgRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, OrgRoleKey, role)
}

// OrgRoleFromContext returns the caller's org-scoped role, or "" when the
// caller is not a member of the request's organization
func OrgRoleFromContext(ctx context.Context) string {
	role, ok := ctx.Value(OrgRoleKey).(string)
	if !ok {
		return ""
	}
	return role
}

// WithOrgID attaches the resolved organization id to the context
func WithOrgID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, OrgIDKey, id)
}

// OrgIDFromContext returns the resolved organization id, or uuid.Nil
func OrgIDFromContext(ctx context.Context) uuid.UUID {
	id, ok := ctx.Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
