package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/orgidm/pkg/errors"
)

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	service := NewService(repo)

	userID := uuid.New()
	_, err := repo.Create(ctx, CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "live-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	session, err := service.ValidateToken(ctx, "live-token")
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID)
	assert.False(t, session.IsDelegated())
}

func TestValidateTokenUnknown(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryRepository())

	_, err := service.ValidateToken(ctx, "no-such-token")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))
}

func TestValidateTokenExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	service := NewService(repo)

	_, err := repo.Create(ctx, CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	_, err = service.ValidateToken(ctx, "stale-token")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionExpired))
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	service := NewService(repo)

	userID := uuid.New()
	_, err := repo.Create(ctx, CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "live-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	service.SweepExpired(ctx)

	stale, err := repo.GetByToken(ctx, "stale-token")
	require.NoError(t, err)
	assert.Nil(t, stale)

	live, err := repo.GetByToken(ctx, "live-token")
	require.NoError(t, err)
	assert.NotNil(t, live)
}

func TestListUserSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	service := NewService(repo)

	userID := uuid.New()
	otherID := uuid.New()
	for _, token := range []string{"first-token", "second-token"} {
		_, err := repo.Create(ctx, CreateSessionRequest{
			ID:        uuid.New(),
			UserID:    userID,
			Token:     token,
			ExpiresAt: time.Now().Add(time.Hour),
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, CreateSessionRequest{
		ID:        uuid.New(),
		UserID:    otherID,
		Token:     "other-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	list, err := service.ListUserSessions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, session := range list {
		assert.Equal(t, userID, session.UserID)
	}
}

func TestListUserSessionsEmpty(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryRepository())

	list, err := service.ListUserSessions(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestIsDelegated(t *testing.T) {
	delegator := uuid.New()

	normal := Session{}
	assert.False(t, normal.IsDelegated())

	delegated := Session{DelegatedBy: &delegator}
	assert.True(t, delegated.IsDelegated())
}
