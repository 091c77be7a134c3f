package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/orgidm/pkg/auth"
	"github.com/tendant/orgidm/pkg/errors"
	"github.com/tendant/orgidm/pkg/sessions"
)

// Handle exposes session introspection over HTTP
type Handle struct {
	sessionService *sessions.Service
}

// NewHandle creates a new sessions handler
func NewHandle(sessionService *sessions.Service) Handle {
	return Handle{
		sessionService: sessionService,
	}
}

// RegisterRoutes mounts the session routes. Mount under an authenticated
// router group.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.ListSessions)
}

// SessionResponse is one session in a listing. Tokens are never echoed back.
type SessionResponse struct {
	ID                   string `json:"id"`
	ExpiresAt            string `json:"expiresAt"`
	DelegatedBy          string `json:"delegatedBy,omitempty"`
	ActiveOrganizationID string `json:"activeOrganizationId,omitempty"`
	CreatedAt            string `json:"createdAt"`
	Current              bool   `json:"current"`
}

// ListSessions handles GET /sessions: the caller's own sessions, the
// presented one flagged
func (h Handle) ListSessions(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	list, err := h.sessionService.ListUserSessions(r.Context(), principal.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result := make([]SessionResponse, 0, len(list))
	for _, session := range list {
		item := SessionResponse{
			ID:        session.ID.String(),
			ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
			CreatedAt: session.CreatedAt.UTC().Format(time.RFC3339),
			Current:   session.Token == principal.Token,
		}
		if session.DelegatedBy != nil {
			item.DelegatedBy = session.DelegatedBy.String()
		}
		if session.ActiveOrganizationID != nil {
			item.ActiveOrganizationID = session.ActiveOrganizationID.String()
		}
		result = append(result, item)
	}

	render.JSON(w, r, result)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Session request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "Internal server error", status)
		return
	}

	message := "Request failed"
	if e, ok := err.(*errors.Error); ok {
		message = e.Message
	}
	http.Error(w, message, status)
}
