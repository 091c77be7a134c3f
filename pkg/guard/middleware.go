package guard

import (
	"log/slog"
	"net/http"

	"github.com/tendant/orgidm/pkg/auth"
	"github.com/tendant/orgidm/pkg/errors"
)

// RequireRoles declares the platform roles required by the routes it wraps.
// The required set is plain data attached at route registration; the guard
// reads the principal from the request context at dispatch time. An
// operation that needs both a platform role and an org role composes this
// with RequireOrgRoles.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if err := CheckPlatformRoles(roles, principal); err != nil {
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOrgRoles declares the org-scoped roles required by the routes it
// wraps. The caller's membership role must have been attached to the
// context upstream (auth.Middleware.OrgContext).
func RequireOrgRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgRole := auth.OrgRoleFromContext(r.Context())
			if err := CheckOrgRoles(roles, orgRole); err != nil {
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn("Request denied by guard", "path", r.URL.Path, "err", err)

	message := "Forbidden"
	if e, ok := err.(*errors.Error); ok {
		message = e.Message
	}

	http.Error(w, message, errors.HTTPStatus(err))
}
