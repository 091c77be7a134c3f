package organization

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu            sync.RWMutex
	organizations map[uuid.UUID]Organization
	members       map[uuid.UUID][]uuid.UUID // orgID -> member row ids
	invitations   map[uuid.UUID][]uuid.UUID // orgID -> invitation ids
}

// NewInMemoryRepository creates a new in-memory organization repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		organizations: make(map[uuid.UUID]Organization),
		members:       make(map[uuid.UUID][]uuid.UUID),
		invitations:   make(map[uuid.UUID][]uuid.UUID),
	}
}

// AddMember seeds a member row id for member counting
func (r *InMemoryRepository) AddMember(orgID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[orgID] = append(r.members[orgID], uuid.New())
}

// AddInvitation seeds an invitation id
func (r *InMemoryRepository) AddInvitation(orgID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invitations[orgID] = append(r.invitations[orgID], uuid.New())
}

// MemberCount reports the seeded member rows for an organization
func (r *InMemoryRepository) MemberCount(orgID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[orgID])
}

// InvitationCount reports the seeded invitations for an organization
func (r *InMemoryRepository) InvitationCount(orgID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.invitations[orgID])
}

// List returns a page of organizations with member counts, newest first
func (r *InMemoryRepository) List(ctx context.Context, params ListParams) ([]OrganizationWithMemberCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.matching(params.Search)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start := params.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}

	result := make([]OrganizationWithMemberCount, 0, end-start)
	for _, org := range matched[start:end] {
		result = append(result, OrganizationWithMemberCount{
			Organization: org,
			MemberCount:  len(r.members[org.ID]),
		})
	}
	return result, nil
}

// Count counts organizations matching the search filter
func (r *InMemoryRepository) Count(ctx context.Context, search string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matching(search)), nil
}

// GetByID retrieves an organization with member count, (nil, nil) when
// absent
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*OrganizationWithMemberCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, ok := r.organizations[id]
	if !ok {
		return nil, nil
	}
	return &OrganizationWithMemberCount{
		Organization: org,
		MemberCount:  len(r.members[id]),
	}, nil
}

// GetBySlug retrieves an organization by slug, (nil, nil) when absent
func (r *InMemoryRepository) GetBySlug(ctx context.Context, slug string) (*Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, org := range r.organizations {
		if org.Slug == slug {
			copied := org
			return &copied, nil
		}
	}
	return nil, nil
}

// Create inserts a new organization
func (r *InMemoryRepository) Create(ctx context.Context, params CreateOrganizationParams) (*Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	org := Organization{
		ID:        uuid.New(),
		Name:      params.Name,
		Slug:      params.Slug,
		Logo:      params.Logo,
		Metadata:  params.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.organizations[org.ID] = org
	return &org, nil
}

// Update modifies an organization, (nil, nil) when absent
func (r *InMemoryRepository) Update(ctx context.Context, id uuid.UUID, params UpdateOrganizationParams) (*Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, ok := r.organizations[id]
	if !ok {
		return nil, nil
	}
	if params.Name != nil {
		org.Name = *params.Name
	}
	if params.Slug != nil {
		org.Slug = *params.Slug
	}
	if params.Logo != nil {
		org.Logo = *params.Logo
	}
	if params.Metadata != nil {
		org.Metadata = params.Metadata
	}
	org.UpdatedAt = time.Now()
	r.organizations[id] = org
	return &org, nil
}

// Delete removes the organization, its memberships, and its invitations
// under one lock acquisition
func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.invitations, id)
	delete(r.members, id)
	delete(r.organizations, id)
	return nil
}

// matching must be called with the lock held
func (r *InMemoryRepository) matching(search string) []Organization {
	var result []Organization
	needle := strings.ToLower(search)
	for _, org := range r.organizations {
		if needle == "" ||
			strings.Contains(strings.ToLower(org.Name), needle) ||
			strings.Contains(strings.ToLower(org.Slug), needle) {
			result = append(result, org)
		}
	}
	return result
}
