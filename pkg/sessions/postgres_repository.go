package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL session repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Create creates a new session
func (r *PostgresRepository) Create(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	query := `
		INSERT INTO session (
			id, user_id, token, expires_at, delegated_by, active_organization_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		) RETURNING
			id, user_id, token, expires_at, delegated_by, active_organization_id,
			created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query,
		req.ID,
		req.UserID,
		req.Token,
		req.ExpiresAt,
		req.DelegatedBy,
		req.ActiveOrganizationID,
	)

	session, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetByToken retrieves a session by its opaque token.
// Returns (nil, nil) when no session matches.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	query := `
		SELECT
			id, user_id, token, expires_at, delegated_by, active_organization_id,
			created_at, updated_at
		FROM session
		WHERE token = $1
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by token: %w", err)
	}
	return session, nil
}

// DeleteByToken deletes a session by its opaque token
func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM session WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListByUserID lists all sessions owned by a user
func (r *PostgresRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	query := `
		SELECT
			id, user_id, token, expires_at, delegated_by, active_organization_id,
			created_at, updated_at
		FROM session
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var result []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		result = append(result, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return result, nil
}

// DeleteExpired removes all sessions past their expiry
func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM session WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanSession maps a session row onto the domain model. Nullable uuid
// columns scan through uuid.NullUUID.
func scanSession(row pgx.Row) (*Session, error) {
	session := &Session{}
	var delegatedBy, activeOrgID uuid.NullUUID

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.ExpiresAt,
		&delegatedBy,
		&activeOrgID,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if delegatedBy.Valid {
		session.DelegatedBy = &delegatedBy.UUID
	}
	if activeOrgID.Valid {
		session.ActiveOrganizationID = &activeOrgID.UUID
	}
	return session, nil
}
