package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/orgidm/pkg/errors"
	"github.com/tendant/orgidm/pkg/organization"
)

// Handle exposes platform-admin organization management over HTTP
type Handle struct {
	organizationService *organization.OrganizationService
}

// NewHandle creates a new organization handler
func NewHandle(organizationService *organization.OrganizationService) Handle {
	return Handle{
		organizationService: organizationService,
	}
}

// RegisterRoutes mounts the collection-level organization admin routes.
// Mount under a router group guarded by the platform admin role.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

// RegisterDetailRoutes mounts the per-organization admin routes. Mount
// inside the {organizationId} route group so the detail endpoints share one
// param subtree with the org-scoped routes; a sibling subtree under a
// second param name would shadow these.
func (h Handle) RegisterDetailRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	r.Delete("/", h.Delete)
}

// CreateOrganizationRequest is the body of POST /organizations
type CreateOrganizationRequest struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Logo     string         `json:"logo,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UpdateOrganizationRequest is the body of PUT /organizations/{organizationId}
type UpdateOrganizationRequest struct {
	Name     *string        `json:"name,omitempty"`
	Slug     *string        `json:"slug,omitempty"`
	Logo     *string        `json:"logo,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// List handles GET /organizations
func (h Handle) List(w http.ResponseWriter, r *http.Request) {
	params := organization.ListParams{
		Search: r.URL.Query().Get("search"),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		params.Limit = limit
	}

	result, err := h.organizationService.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Get handles GET /organizations/{organizationId}
func (h Handle) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "organizationId"))
	if err != nil {
		http.Error(w, "Invalid organization ID", http.StatusBadRequest)
		return
	}

	org, err := h.organizationService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, org)
}

// Create handles POST /organizations
func (h Handle) Create(w http.ResponseWriter, r *http.Request) {
	var data CreateOrganizationRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		http.Error(w, "Unable to parse request body", http.StatusBadRequest)
		return
	}

	var params organization.CreateOrganizationParams
	copier.Copy(&params, data)

	org, err := h.organizationService.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, org)
}

// Update handles PUT /organizations/{organizationId}
func (h Handle) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "organizationId"))
	if err != nil {
		http.Error(w, "Invalid organization ID", http.StatusBadRequest)
		return
	}

	var data UpdateOrganizationRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		http.Error(w, "Unable to parse request body", http.StatusBadRequest)
		return
	}

	var params organization.UpdateOrganizationParams
	copier.Copy(&params, data)

	org, err := h.organizationService.Update(r.Context(), id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, org)
}

// Delete handles DELETE /organizations/{organizationId}
func (h Handle) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "organizationId"))
	if err != nil {
		http.Error(w, "Invalid organization ID", http.StatusBadRequest)
		return
	}

	if err := h.organizationService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Organization request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "Internal server error", status)
		return
	}

	message := "Request failed"
	if e, ok := err.(*errors.Error); ok {
		message = e.Message
	}
	http.Error(w, message, status)
}
