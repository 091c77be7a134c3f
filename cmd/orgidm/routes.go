package main

import (
	"github.com/go-chi/chi/v5"

	"github.com/tendant/orgidm/pkg/auth"
	"github.com/tendant/orgidm/pkg/guard"
	impersonateapi "github.com/tendant/orgidm/pkg/impersonate/api"
	organizationapi "github.com/tendant/orgidm/pkg/organization/api"
	"github.com/tendant/orgidm/pkg/rbac"
	rbacapi "github.com/tendant/orgidm/pkg/rbac/api"
	sessionsapi "github.com/tendant/orgidm/pkg/sessions/api"
)

type routeHandles struct {
	auth         *auth.Middleware
	impersonate  impersonateapi.Handle
	organization organizationapi.Handle
	rbac         rbacapi.Handle
	sessions     sessionsapi.Handle
}

// registerAPIRoutes mounts the authenticated API surface. Everything under
// /organizations/{organizationId} lives in a single param subtree: chi merges
// sibling param nodes by the first name it sees, so a second subtree under a
// different param name would shadow the first one's routes.
func registerAPIRoutes(r chi.Router, h routeHandles) {
	r.Route("/api", func(r chi.Router) {
		r.Use(h.auth.Authenticate)

		r.Route("/organizations", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(guard.RequireRoles(rbac.RoleAdmin))
				h.organization.RegisterRoutes(r)
			})

			r.Route("/{organizationId}", func(r chi.Router) {
				r.Use(h.auth.OrgContext)

				r.Group(func(r chi.Router) {
					r.Use(guard.RequireRoles(rbac.RoleAdmin))
					h.organization.RegisterDetailRoutes(r)
				})

				h.impersonate.RegisterOrgRoutes(r)
			})
		})

		h.impersonate.RegisterRoutes(r)
		h.sessions.RegisterRoutes(r)

		r.Route("/rbac", func(r chi.Router) {
			h.rbac.RegisterRoutes(r)
		})
	})
}
