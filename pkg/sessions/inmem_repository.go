package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]Session // token -> Session
}

// NewInMemoryRepository creates a new in-memory session repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[string]Session),
	}
}

// Create creates a new session
func (r *InMemoryRepository) Create(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	session := Session{
		ID:                   req.ID,
		UserID:               req.UserID,
		Token:                req.Token,
		ExpiresAt:            req.ExpiresAt,
		DelegatedBy:          req.DelegatedBy,
		ActiveOrganizationID: req.ActiveOrganizationID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	r.sessions[req.Token] = session
	return &session, nil
}

// GetByToken retrieves a session by token, (nil, nil) when absent
func (r *InMemoryRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// DeleteByToken deletes a session by token
func (r *InMemoryRepository) DeleteByToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
	return nil
}

// ListByUserID lists all sessions owned by a user
func (r *InMemoryRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Session
	for _, session := range r.sessions {
		if session.UserID == userID {
			result = append(result, session)
		}
	}
	return result, nil
}

// DeleteExpired removes all sessions past their expiry
func (r *InMemoryRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var removed int64
	for token, session := range r.sessions {
		if session.IsExpired(now) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed, nil
}
