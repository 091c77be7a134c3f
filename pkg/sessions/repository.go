package sessions

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for session data access.
// GetByToken returns (nil, nil) when no session matches the token; callers
// must treat absence as a normal result, not an error.
type Repository interface {
	// Create a new session
	Create(ctx context.Context, req CreateSessionRequest) (*Session, error)

	// Get a session by its opaque token
	GetByToken(ctx context.Context, token string) (*Session, error)

	// Delete a session by its opaque token
	DeleteByToken(ctx context.Context, token string) error

	// List sessions owned by a user
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Session, error)

	// Cleanup expired sessions (for maintenance)
	DeleteExpired(ctx context.Context) (int64, error)
}
