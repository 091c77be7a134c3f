package member

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage. The
// (user, organization) uniqueness invariant is enforced by the composite
// map key.
type InMemoryRepository struct {
	mu          sync.RWMutex
	memberships map[membershipKey]Membership
	users       map[uuid.UUID]userInfo
}

type membershipKey struct {
	userID         uuid.UUID
	organizationID uuid.UUID
}

type userInfo struct {
	name  string
	email string
}

// NewInMemoryRepository creates a new in-memory membership repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		memberships: make(map[membershipKey]Membership),
		users:       make(map[uuid.UUID]userInfo),
	}
}

// AddMembership seeds a membership row, replacing any existing row for the
// same (user, organization) pair
func (r *InMemoryRepository) AddMembership(userID, organizationID uuid.UUID, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.memberships[membershipKey{userID, organizationID}] = Membership{
		ID:             uuid.New(),
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           role,
		CreatedAt:      time.Now(),
	}
}

// AddUser seeds user identity for member listings
func (r *InMemoryRepository) AddUser(userID uuid.UUID, name, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[userID] = userInfo{name: name, email: email}
}

// GetMembership looks up a membership, (nil, nil) when absent
func (r *InMemoryRepository) GetMembership(ctx context.Context, userID, organizationID uuid.UUID) (*Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	membership, ok := r.memberships[membershipKey{userID, organizationID}]
	if !ok {
		return nil, nil
	}
	return &membership, nil
}

// ListByOrganizationID lists an organization's members
func (r *InMemoryRepository) ListByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]MemberWithUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []MemberWithUser
	for key, membership := range r.memberships {
		if key.organizationID != organizationID {
			continue
		}
		user := r.users[key.userID]
		result = append(result, MemberWithUser{
			Membership: membership,
			UserName:   user.name,
			UserEmail:  user.email,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
