package member

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for membership data access.
// GetMembership returns (nil, nil) when the user has no membership in the
// organization; absence is a valid result, not an error.
type Repository interface {
	GetMembership(ctx context.Context, userID, organizationID uuid.UUID) (*Membership, error)
	ListByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]MemberWithUser, error)
}
