package guard

import (
	"strings"

	"github.com/tendant/orgidm/pkg/auth"
	"github.com/tendant/orgidm/pkg/errors"
)

// CheckPlatformRoles evaluates the platform guard: the principal's global
// role must be in the required set. An empty required set always allows,
// regardless of principal state. Stateless and side-effect free.
func CheckPlatformRoles(requiredRoles []string, principal *auth.Principal) error {
	if len(requiredRoles) == 0 {
		return nil
	}

	if principal == nil {
		return errors.New(errors.ErrCodeForbidden, "Authentication required")
	}

	for _, role := range requiredRoles {
		if principal.Role == role {
			return nil
		}
	}

	return errors.Newf(errors.ErrCodeForbidden,
		"Access denied. Required role: %s", strings.Join(requiredRoles, " or "))
}

// CheckOrgRoles evaluates the organization guard: the caller's org-scoped
// membership role must be in the required set. The role is expected to have
// been resolved upstream; an empty role on a guarded operation means the
// caller holds no membership in the organization. An empty required set
// always allows.
func CheckOrgRoles(requiredRoles []string, orgRole string) error {
	if len(requiredRoles) == 0 {
		return nil
	}

	if orgRole == "" {
		return errors.New(errors.ErrCodeForbidden, "Organization membership required")
	}

	for _, role := range requiredRoles {
		if orgRole == role {
			return nil
		}
	}

	return errors.Newf(errors.ErrCodeForbidden,
		"Access denied. Required org role: %s", strings.Join(requiredRoles, " or "))
}
