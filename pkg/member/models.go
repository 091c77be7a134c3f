package member

import (
	"time"

	"github.com/google/uuid"
)

// Membership binds a user to an organization with exactly one role. The
// (user, organization) pair is unique.
type Membership struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// MemberWithUser is a membership joined with basic user identity, used by
// member listings
type MemberWithUser struct {
	Membership
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
