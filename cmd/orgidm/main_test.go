package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/orgidm/pkg/auth"
	"github.com/tendant/orgidm/pkg/impersonate"
	impersonateapi "github.com/tendant/orgidm/pkg/impersonate/api"
	"github.com/tendant/orgidm/pkg/member"
	"github.com/tendant/orgidm/pkg/organization"
	organizationapi "github.com/tendant/orgidm/pkg/organization/api"
	"github.com/tendant/orgidm/pkg/rbac"
	rbacapi "github.com/tendant/orgidm/pkg/rbac/api"
	"github.com/tendant/orgidm/pkg/sessions"
	sessionsapi "github.com/tendant/orgidm/pkg/sessions/api"
)

type routerFixture struct {
	router      chi.Router
	sessionRepo *sessions.InMemoryRepository
	userRepo    *auth.InMemoryUserRepository
	memberRepo  *member.InMemoryRepository
	orgRepo     *organization.InMemoryRepository
}

// newRouterFixture wires the full API route tree over in-memory repositories,
// the same registration main performs against Postgres-backed services.
func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	sessionRepo := sessions.NewInMemoryRepository()
	userRepo := auth.NewInMemoryUserRepository()
	memberRepo := member.NewInMemoryRepository()
	orgRepo := organization.NewInMemoryRepository()
	rbacRepo := rbac.NewInMemoryRepository()
	require.NoError(t, rbac.Seed(context.Background(), rbacRepo))

	sessionService := sessions.NewService(sessionRepo)
	memberService := member.NewMemberService(memberRepo)
	organizationService := organization.NewOrganizationService(orgRepo)
	roleService := rbac.NewRoleService(rbacRepo)
	impersonateService := impersonate.NewService(memberService, sessionRepo, userRepo, nil)

	authMiddleware := auth.NewMiddleware(sessionService, userRepo, memberService)

	r := chi.NewRouter()
	registerAPIRoutes(r, routeHandles{
		auth:         authMiddleware,
		impersonate:  impersonateapi.NewHandle(impersonateService, memberService),
		organization: organizationapi.NewHandle(organizationService),
		rbac:         rbacapi.NewHandle(roleService),
		sessions:     sessionsapi.NewHandle(sessionService),
	})

	return &routerFixture{
		router:      r,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		memberRepo:  memberRepo,
		orgRepo:     orgRepo,
	}
}

// seedUser creates a user with the given platform role plus a live session,
// returning the user id and bearer token
func (f *routerFixture) seedUser(t *testing.T, role string) (uuid.UUID, string) {
	t.Helper()

	userID := uuid.New()
	f.userRepo.AddUser(auth.User{
		ID:    userID,
		Email: userID.String() + "@example.com",
		Name:  "Test User",
		Role:  role,
	})

	token := uuid.NewString()
	_, err := f.sessionRepo.Create(context.Background(), sessions.CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	return userID, token
}

func (f *routerFixture) seedOrganization(t *testing.T, name, slug string) uuid.UUID {
	t.Helper()

	org, err := f.orgRepo.Create(context.Background(), organization.CreateOrganizationParams{
		Name: name,
		Slug: slug,
	})
	require.NoError(t, err)
	return org.ID
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestOrganizationDetailRoutes(t *testing.T) {
	f := newRouterFixture(t)
	_, adminToken := f.seedUser(t, rbac.RoleAdmin)
	orgID := f.seedOrganization(t, "Acme", "acme")
	path := fmt.Sprintf("/api/organizations/%s", orgID)

	t.Run("get", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, path, adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got organization.OrganizationWithMemberCount
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, orgID, got.ID)
		assert.Equal(t, "Acme", got.Name)
	})

	t.Run("update", func(t *testing.T) {
		rec := f.do(t, http.MethodPut, path, adminToken, map[string]string{"name": "Acme Corp"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got organization.Organization
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Acme Corp", got.Name)
	})

	t.Run("delete", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, path, adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = f.do(t, http.MethodGet, path, adminToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOrganizationDetailRoutesRequireAdmin(t *testing.T) {
	f := newRouterFixture(t)
	userID, token := f.seedUser(t, rbac.RoleMember)
	orgID := f.seedOrganization(t, "Acme", "acme")
	// Org membership does not substitute for the platform admin role
	f.memberRepo.AddMembership(userID, orgID, "admin")

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := f.do(t, method, fmt.Sprintf("/api/organizations/%s", orgID), token, map[string]string{})
		assert.Equal(t, http.StatusForbidden, rec.Code, method)
	}
}

func TestOrganizationCollectionRoutes(t *testing.T) {
	f := newRouterFixture(t)
	_, adminToken := f.seedUser(t, rbac.RoleAdmin)
	f.seedOrganization(t, "Acme", "acme")

	rec := f.do(t, http.MethodGet, "/api/organizations", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/organizations", adminToken,
		map[string]string{"name": "Beta", "slug": "beta"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestImpersonateRoutes(t *testing.T) {
	f := newRouterFixture(t)
	managerID, managerToken := f.seedUser(t, rbac.RoleMember)
	targetID, _ := f.seedUser(t, rbac.RoleMember)
	orgID := f.seedOrganization(t, "Acme", "acme")

	f.memberRepo.AddMembership(managerID, orgID, "manager")
	f.memberRepo.AddMembership(targetID, orgID, "member")
	f.memberRepo.AddUser(targetID, "Target", "target@example.com")

	rec := f.do(t, http.MethodPost,
		fmt.Sprintf("/api/organizations/%s/impersonate", orgID), managerToken,
		map[string]string{"targetUserId": targetID.String()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var minted impersonateapi.ImpersonateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &minted))
	require.NotEmpty(t, minted.SessionToken)

	rec = f.do(t, http.MethodGet,
		fmt.Sprintf("/api/organizations/%s/members", orgID), managerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/stop-impersonating", minted.SessionToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestListOwnSessions(t *testing.T) {
	f := newRouterFixture(t)
	userID, token := f.seedUser(t, rbac.RoleMember)

	_, err := f.sessionRepo.Create(context.Background(), sessions.CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/sessions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list []sessionsapi.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)

	current := 0
	for _, s := range list {
		if s.Current {
			current++
		}
	}
	assert.Equal(t, 1, current)
	assert.NotContains(t, rec.Body.String(), token)
}

func TestAPIRequiresAuthentication(t *testing.T) {
	f := newRouterFixture(t)
	orgID := f.seedOrganization(t, "Acme", "acme")

	paths := []string{
		"/api/organizations",
		fmt.Sprintf("/api/organizations/%s", orgID),
		"/api/sessions",
	}
	for _, path := range paths {
		rec := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
