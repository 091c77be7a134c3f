package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/orgidm/pkg/member"
	"github.com/tendant/orgidm/pkg/sessions"
)

func newTestMiddleware(t *testing.T) (*Middleware, *sessions.InMemoryRepository, *InMemoryUserRepository, *member.InMemoryRepository) {
	t.Helper()
	sessionRepo := sessions.NewInMemoryRepository()
	userRepo := NewInMemoryUserRepository()
	memberRepo := member.NewInMemoryRepository()

	m := NewMiddleware(
		sessions.NewService(sessionRepo),
		userRepo,
		member.NewMemberService(memberRepo),
	)
	return m, sessionRepo, userRepo, memberRepo
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	m, sessionRepo, userRepo, _ := newTestMiddleware(t)

	userID := uuid.New()
	userRepo.AddUser(User{ID: userID, Email: "alice@example.com", Name: "Alice", Role: "admin"})
	_, err := sessionRepo.Create(ctx, sessions.CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "alice-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	var captured *Principal
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer alice-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, userID, captured.ID)
	assert.Equal(t, "admin", captured.Role)
	assert.Nil(t, captured.DelegatedBy)
}

func TestAuthenticateRejections(t *testing.T) {
	ctx := context.Background()
	m, sessionRepo, _, _ := newTestMiddleware(t)

	_, err := sessionRepo.Create(ctx, sessions.CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    uuid.New(), // no matching user row
		Token:     "orphan-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = sessionRepo.Create(ctx, sessions.CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"unknown token", "Bearer nope"},
		{"expired token", "Bearer expired-token"},
		{"orphaned session", "Bearer orphan-token"},
		{"malformed header", "alice-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthenticateDelegatedSession(t *testing.T) {
	ctx := context.Background()
	m, sessionRepo, userRepo, _ := newTestMiddleware(t)

	targetID := uuid.New()
	impersonatorID := uuid.New()
	userRepo.AddUser(User{ID: targetID, Email: "target@example.com", Role: "member"})
	_, err := sessionRepo.Create(ctx, sessions.CreateSessionRequest{
		ID:          uuid.New(),
		UserID:      targetID,
		Token:       "delegated-token",
		ExpiresAt:   time.Now().Add(time.Hour),
		DelegatedBy: &impersonatorID,
	})
	require.NoError(t, err)

	var captured *Principal
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer delegated-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The request acts as the target, with the impersonator recorded
	require.NotNil(t, captured)
	assert.Equal(t, targetID, captured.ID)
	require.NotNil(t, captured.DelegatedBy)
	assert.Equal(t, impersonatorID, *captured.DelegatedBy)
}

func TestOrgContext(t *testing.T) {
	m, _, _, memberRepo := newTestMiddleware(t)

	userID := uuid.New()
	orgID := uuid.New()
	memberRepo.AddMembership(userID, orgID, "manager")

	var gotOrgID uuid.UUID
	var gotRole string
	r := chi.NewRouter()
	r.Route("/organizations/{organizationId}", func(r chi.Router) {
		r.Use(m.OrgContext)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			gotOrgID = OrgIDFromContext(req.Context())
			gotRole = OrgRoleFromContext(req.Context())
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/organizations/"+orgID.String()+"/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{ID: userID, Role: "member"}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orgID, gotOrgID)
	assert.Equal(t, "manager", gotRole)
}

func TestOrgContextNonMember(t *testing.T) {
	m, _, _, _ := newTestMiddleware(t)

	var gotRole string
	r := chi.NewRouter()
	r.Route("/organizations/{organizationId}", func(r chi.Router) {
		r.Use(m.OrgContext)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			gotRole = OrgRoleFromContext(req.Context())
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/organizations/"+uuid.NewString()+"/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{ID: uuid.New()}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// Non-members pass through with no org role; guards decide downstream
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gotRole)
}

func TestOrgContextInvalidID(t *testing.T) {
	m, _, _, _ := newTestMiddleware(t)

	r := chi.NewRouter()
	r.Route("/organizations/{organizationId}", func(r chi.Router) {
		r.Use(m.OrgContext)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			t.Fatal("handler should not run")
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/organizations/not-a-uuid/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
