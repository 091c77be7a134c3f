package sessions

import (
	"time"

	"github.com/google/uuid"
)

// Session represents an active authentication session keyed by an opaque
// token. A session with DelegatedBy set was minted on behalf of its owning
// user by another principal (an impersonation session); a nil DelegatedBy
// means a normal session.
type Session struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	Token                string     `json:"token"`
	ExpiresAt            time.Time  `json:"expires_at"`
	DelegatedBy          *uuid.UUID `json:"delegated_by,omitempty"`
	ActiveOrganizationID *uuid.UUID `json:"active_organization_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// IsDelegated reports whether this session was minted by an impersonator
func (s *Session) IsDelegated() bool {
	return s.DelegatedBy != nil
}

// IsExpired reports whether the session has passed its expiry
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// CreateSessionRequest represents the request to create a new session
type CreateSessionRequest struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	Token                string     `json:"token"`
	ExpiresAt            time.Time  `json:"expires_at"`
	DelegatedBy          *uuid.UUID `json:"delegated_by,omitempty"`
	ActiveOrganizationID *uuid.UUID `json:"active_organization_id,omitempty"`
}
