package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/orgidm/pkg/errors"
	"github.com/tendant/orgidm/pkg/guard"
	"github.com/tendant/orgidm/pkg/rbac"
)

// Handle exposes role and permission management over HTTP
type Handle struct {
	roleService *rbac.RoleService
}

// NewHandle creates a new RBAC handler
func NewHandle(roleService *rbac.RoleService) Handle {
	return Handle{
		roleService: roleService,
	}
}

// RegisterRoutes mounts the RBAC routes. Reads are open to any
// authenticated principal; mutations require the platform admin role,
// declared here as plain data on each route.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Get("/roles", h.ListRoles)
	r.Get("/roles/{id}", h.GetRole)
	r.With(guard.RequireRoles(rbac.RoleAdmin)).Post("/roles", h.CreateRole)
	r.With(guard.RequireRoles(rbac.RoleAdmin)).Put("/roles/{id}", h.UpdateRole)
	r.With(guard.RequireRoles(rbac.RoleAdmin)).Delete("/roles/{id}", h.DeleteRole)
	r.With(guard.RequireRoles(rbac.RoleAdmin)).Put("/roles/{id}/permissions", h.AssignPermissions)

	r.Get("/permissions", h.ListPermissions)
	r.Get("/permissions/grouped", h.ListPermissionsGrouped)
	r.Get("/users/{roleName}/permissions", h.GetRolePermissionsByName)
	r.Get("/check/{roleName}/{resource}/{action}", h.CheckPermission)
}

// CreateRoleRequest is the body of POST /rbac/roles
type CreateRoleRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// UpdateRoleRequest is the body of PUT /rbac/roles/{id}. The role name is
// deliberately not accepted.
type UpdateRoleRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// AssignPermissionsRequest is the body of PUT /rbac/roles/{id}/permissions
type AssignPermissionsRequest struct {
	PermissionIDs []string `json:"permissionIds"`
}

// CheckPermissionResponse is the result of a permission check
type CheckPermissionResponse struct {
	RoleName  string `json:"roleName"`
	Resource  string `json:"resource"`
	Action    string `json:"action"`
	HasAccess bool   `json:"hasAccess"`
}

// ListRoles handles GET /rbac/roles
func (h Handle) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.FindRoles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, roles)
}

// GetRole handles GET /rbac/roles/{id}
func (h Handle) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid role ID", http.StatusBadRequest)
		return
	}

	role, err := h.roleService.GetRole(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, role)
}

// CreateRole handles POST /rbac/roles
func (h Handle) CreateRole(w http.ResponseWriter, r *http.Request) {
	var data CreateRoleRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		http.Error(w, "Unable to parse request body", http.StatusBadRequest)
		return
	}

	var params rbac.CreateRoleParams
	copier.Copy(&params, data)

	role, err := h.roleService.CreateRole(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, role)
}

// UpdateRole handles PUT /rbac/roles/{id}
func (h Handle) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid role ID", http.StatusBadRequest)
		return
	}

	var data UpdateRoleRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		http.Error(w, "Unable to parse request body", http.StatusBadRequest)
		return
	}

	var params rbac.UpdateRoleParams
	copier.Copy(&params, data)

	role, err := h.roleService.UpdateRole(r.Context(), id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, role)
}

// DeleteRole handles DELETE /rbac/roles/{id}
func (h Handle) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid role ID", http.StatusBadRequest)
		return
	}

	if err := h.roleService.DeleteRole(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}

// AssignPermissions handles PUT /rbac/roles/{id}/permissions
func (h Handle) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid role ID", http.StatusBadRequest)
		return
	}

	var data AssignPermissionsRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		http.Error(w, "Unable to parse request body", http.StatusBadRequest)
		return
	}

	permissionIDs := make([]uuid.UUID, 0, len(data.PermissionIDs))
	for _, raw := range data.PermissionIDs {
		permissionID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid permission ID", http.StatusBadRequest)
			return
		}
		permissionIDs = append(permissionIDs, permissionID)
	}

	if err := h.roleService.AssignPermissions(r.Context(), id, permissionIDs); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}

// ListPermissions handles GET /rbac/permissions
func (h Handle) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.roleService.FindPermissions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, permissions)
}

// ListPermissionsGrouped handles GET /rbac/permissions/grouped
func (h Handle) ListPermissionsGrouped(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.roleService.FindPermissionsGrouped(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, grouped)
}

// GetRolePermissionsByName handles GET /rbac/users/{roleName}/permissions
func (h Handle) GetRolePermissionsByName(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.roleService.GetRolePermissionsByName(r.Context(), chi.URLParam(r, "roleName"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, permissions)
}

// CheckPermission handles GET /rbac/check/{roleName}/{resource}/{action}
func (h Handle) CheckPermission(w http.ResponseWriter, r *http.Request) {
	roleName := chi.URLParam(r, "roleName")
	resource := chi.URLParam(r, "resource")
	action := chi.URLParam(r, "action")

	hasAccess, err := h.roleService.HasPermission(r.Context(), roleName, resource, action)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, CheckPermissionResponse{
		RoleName:  roleName,
		Resource:  resource,
		Action:    action,
		HasAccess: hasAccess,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("RBAC request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "Internal server error", status)
		return
	}

	message := "Request failed"
	if e, ok := err.(*errors.Error); ok {
		message = e.Message
	}
	http.Error(w, message, status)
}
