package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/orgidm/pkg/auth"
	"github.com/tendant/orgidm/pkg/errors"
	"github.com/tendant/orgidm/pkg/guard"
	"github.com/tendant/orgidm/pkg/impersonate"
	"github.com/tendant/orgidm/pkg/member"
)

// Handle exposes the impersonation operations over HTTP
type Handle struct {
	impersonateService *impersonate.Service
	memberService      *member.MemberService
}

// NewHandle creates a new impersonation handler
func NewHandle(impersonateService *impersonate.Service, memberService *member.MemberService) Handle {
	return Handle{
		impersonateService: impersonateService,
		memberService:      memberService,
	}
}

// RegisterOrgRoutes mounts the org-scoped impersonation routes. Mount under
// a router group that already resolves the organization context. The
// impersonate route carries no route guard: the service performs its own
// membership and capability checks so callers get the precise denial.
func (h Handle) RegisterOrgRoutes(r chi.Router) {
	r.Post("/impersonate", h.Impersonate)
	r.With(guard.RequireOrgRoles(impersonate.ManagerRoles()...)).Get("/members", h.ListMembers)
}

// RegisterRoutes mounts the non-org-scoped routes
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Post("/stop-impersonating", h.StopImpersonating)
}

// ImpersonateRequest is the body of POST .../impersonate
type ImpersonateRequest struct {
	TargetUserID string `json:"targetUserId"`
}

// ImpersonateResponse carries the minted delegated-session token
type ImpersonateResponse struct {
	SessionToken string `json:"sessionToken"`
}

// StopImpersonatingResponse acknowledges session teardown
type StopImpersonatingResponse struct {
	Success bool `json:"success"`
}

// Impersonate handles POST /organizations/{organizationId}/impersonate
func (h Handle) Impersonate(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	organizationID := auth.OrgIDFromContext(r.Context())
	if organizationID == uuid.Nil {
		http.Error(w, "Invalid organization ID", http.StatusBadRequest)
		return
	}

	var data ImpersonateRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		http.Error(w, "Unable to parse request body", http.StatusBadRequest)
		return
	}

	targetUserID, err := uuid.Parse(data.TargetUserID)
	if err != nil {
		http.Error(w, "Invalid target user ID", http.StatusBadRequest)
		return
	}

	token, err := h.impersonateService.Impersonate(r.Context(), principal.ID, targetUserID, organizationID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ImpersonateResponse{SessionToken: token})
}

// StopImpersonating handles POST /stop-impersonating. The delegated session
// to tear down is the bearer token of the request itself.
func (h Handle) StopImpersonating(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if token == "" {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.impersonateService.StopImpersonation(r.Context(), token); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, StopImpersonatingResponse{Success: true})
}

// ListMembers handles GET /organizations/{organizationId}/members, used to
// pick an impersonation target
func (h Handle) ListMembers(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrgIDFromContext(r.Context())
	if organizationID == uuid.Nil {
		http.Error(w, "Invalid organization ID", http.StatusBadRequest)
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), organizationID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, members)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Impersonation request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "Internal server error", status)
		return
	}

	message := "Request failed"
	if e, ok := err.(*errors.Error); ok {
		message = e.Message
	}
	http.Error(w, message, status)
}
