package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tendant/orgidm/pkg/member"
	"github.com/tendant/orgidm/pkg/sessions"
)

// Middleware resolves bearer session tokens to principals and enriches
// org-scoped requests with the caller's membership role. All collaborators
// are supplied at construction.
type Middleware struct {
	sessionService *sessions.Service
	userRepository UserRepository
	memberService  *member.MemberService
}

// NewMiddleware creates the auth middleware with its collaborators
func NewMiddleware(sessionService *sessions.Service, userRepository UserRepository, memberService *member.MemberService) *Middleware {
	return &Middleware{
		sessionService: sessionService,
		userRepository: userRepository,
		memberService:  memberService,
	}
}

// Authenticate resolves the Authorization bearer token to a session and its
// owning user, and attaches the Principal to the request context. Requests
// without a valid token are rejected with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		session, err := m.sessionService.ValidateToken(r.Context(), token)
		if err != nil {
			http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		user, err := m.userRepository.GetUser(r.Context(), session.UserID)
		if err != nil {
			slog.Error("Failed to load session user", "user_id", session.UserID, "err", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if user == nil {
			// Session points at a user the identity provider no longer has
			http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		principal := &Principal{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			Role:        user.Role,
			DelegatedBy: session.DelegatedBy,
			Token:       token,
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// OrgContext parses the organizationId URL param and, when the principal is
// a member of that organization, attaches the membership role to the
// context. Non-members proceed without an org role; the org guard decides
// whether that is fatal for the operation.
func (m *Middleware) OrgContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID, err := uuid.Parse(chi.URLParam(r, "organizationId"))
		if err != nil {
			http.Error(w, "Invalid organization ID", http.StatusBadRequest)
			return
		}

		ctx := WithOrgID(r.Context(), orgID)

		if principal := PrincipalFromContext(ctx); principal != nil {
			membership, err := m.memberService.GetMembership(ctx, principal.ID, orgID)
			if err != nil {
				slog.Error("Failed to resolve org membership",
					"user_id", principal.ID, "organization_id", orgID, "err", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if membership != nil {
				ctx = WithOrgRole(ctx, membership.Role)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the bearer token from the Authorization header,
// returning "" when absent or malformed
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
