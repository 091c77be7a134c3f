package sessions

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/orgidm/pkg/errors"
)

// Service provides session validation and maintenance on top of a Repository
type Service struct {
	repository Repository
}

// NewService creates a new session service
func NewService(repository Repository) *Service {
	return &Service{
		repository: repository,
	}
}

// ValidateToken resolves an opaque token to its session, rejecting unknown
// and expired tokens
func (s *Service) ValidateToken(ctx context.Context, token string) (*Session, error) {
	session, err := s.repository.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to look up session")
	}
	if session == nil {
		return nil, errors.New(errors.ErrCodeUnauthorized, "invalid session token")
	}
	if session.IsExpired(time.Now()) {
		return nil, errors.New(errors.ErrCodeSessionExpired, "session expired")
	}
	return session, nil
}

// ListUserSessions returns all sessions owned by a user, delegated ones
// included
func (s *Service) ListUserSessions(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	list, err := s.repository.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list sessions")
	}
	if list == nil {
		list = []Session{}
	}
	return list, nil
}

// SweepExpired deletes expired sessions and logs the count removed.
// Intended to run on a periodic ticker from the service binary.
func (s *Service) SweepExpired(ctx context.Context) {
	removed, err := s.repository.DeleteExpired(ctx)
	if err != nil {
		slog.Error("Failed to sweep expired sessions", "err", err)
		return
	}
	if removed > 0 {
		slog.Info("Swept expired sessions", "count", removed)
	}
}
