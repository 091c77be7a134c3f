package rbac

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "orgidm_db"
	dbUser := "orgidm"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "orgidm_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestPostgresSeedAndCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := NewPostgresRepository(pool)
	require.NoError(t, Seed(ctx, repo))

	// Running the seed again must not duplicate anything
	require.NoError(t, Seed(ctx, repo))

	roles, err := repo.FindRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	for _, role := range roles {
		assert.True(t, role.IsSystem)
	}

	permissions, err := repo.FindPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, permissions, len(permissionCatalogue))

	granted, err := repo.HasPermission(ctx, RoleAdmin, "user", "impersonate")
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = repo.HasPermission(ctx, RoleMember, "user", "delete")
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestPostgresRoleLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := NewPostgresRepository(pool)
	require.NoError(t, Seed(ctx, repo))
	service := NewRoleService(repo)

	role, err := service.CreateRole(ctx, CreateRoleParams{
		Name:        "auditor",
		DisplayName: "Auditor",
		Description: "Read-only compliance access",
	})
	require.NoError(t, err)
	assert.Equal(t, "gray", role.Color)

	catalogue, err := service.FindPermissions(ctx)
	require.NoError(t, err)
	require.NoError(t, service.AssignPermissions(ctx, role.ID, []uuid.UUID{catalogue[0].ID, catalogue[1].ID}))

	granted, err := service.GetPermissions(ctx, role.ID)
	require.NoError(t, err)
	assert.Len(t, granted, 2)

	// Replacement is atomic: a fresh read sees only the new set
	require.NoError(t, service.AssignPermissions(ctx, role.ID, nil))
	granted, err = service.GetPermissions(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, granted)

	require.NoError(t, service.DeleteRole(ctx, role.ID))
	fetched, err := repo.GetRoleByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched)
}
