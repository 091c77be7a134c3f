package member

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMembership(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	service := NewMemberService(repo)

	userID := uuid.New()
	orgID := uuid.New()
	repo.AddMembership(userID, orgID, "manager")

	membership, err := service.GetMembership(ctx, userID, orgID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, "manager", membership.Role)
	assert.Equal(t, orgID, membership.OrganizationID)
}

func TestGetMembershipAbsent(t *testing.T) {
	ctx := context.Background()
	service := NewMemberService(NewInMemoryRepository())

	// Absence is not an error; callers check for nil
	membership, err := service.GetMembership(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, membership)
}

func TestGetMembershipScopedToOrganization(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	service := NewMemberService(repo)

	userID := uuid.New()
	orgA := uuid.New()
	orgB := uuid.New()
	repo.AddMembership(userID, orgA, "admin")

	membership, err := service.GetMembership(ctx, userID, orgB)
	require.NoError(t, err)
	assert.Nil(t, membership)
}

func TestListMembers(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	service := NewMemberService(repo)

	orgID := uuid.New()
	alice := uuid.New()
	bob := uuid.New()
	repo.AddUser(alice, "Alice", "alice@example.com")
	repo.AddUser(bob, "Bob", "bob@example.com")
	repo.AddMembership(alice, orgID, "admin")
	repo.AddMembership(bob, orgID, "member")
	repo.AddMembership(uuid.New(), uuid.New(), "member") // other org

	members, err := service.ListMembers(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	emails := []string{members[0].UserEmail, members[1].UserEmail}
	assert.Contains(t, emails, "alice@example.com")
	assert.Contains(t, emails, "bob@example.com")
}
