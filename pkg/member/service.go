package member

import (
	"context"

	"github.com/google/uuid"
	"github.com/tendant/orgidm/pkg/errors"
)

// MemberService resolves organization memberships. Pure reads, no side
// effects.
type MemberService struct {
	repository Repository
}

// NewMemberService creates a new member service
func NewMemberService(repository Repository) *MemberService {
	return &MemberService{
		repository: repository,
	}
}

// GetMembership returns the user's membership in an organization, or
// (nil, nil) when the user is not a member. Callers must check for nil
// explicitly; absence is not an error.
func (s *MemberService) GetMembership(ctx context.Context, userID, organizationID uuid.UUID) (*Membership, error) {
	membership, err := s.repository.GetMembership(ctx, userID, organizationID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get membership")
	}
	return membership, nil
}

// ListMembers lists an organization's members with user identity
func (s *MemberService) ListMembers(ctx context.Context, organizationID uuid.UUID) ([]MemberWithUser, error) {
	members, err := s.repository.ListByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list members")
	}
	return members, nil
}
