package member

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

// NewPostgresRepository creates a new PostgreSQL membership repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// GetMembership looks up the user's membership in an organization.
// Returns (nil, nil) when the user is not a member.
func (r *PostgresRepository) GetMembership(ctx context.Context, userID, organizationID uuid.UUID) (*Membership, error) {
	query := `
		SELECT id, user_id, organization_id, role, created_at
		FROM member
		WHERE user_id = $1 AND organization_id = $2
	`

	membership := &Membership{}
	err := r.pool.QueryRow(ctx, query, userID, organizationID).Scan(
		&membership.ID,
		&membership.UserID,
		&membership.OrganizationID,
		&membership.Role,
		&membership.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return membership, nil
}

// ListByOrganizationID lists an organization's members with user identity
func (r *PostgresRepository) ListByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]MemberWithUser, error) {
	query := `
		SELECT m.id, m.user_id, m.organization_id, m.role, m.created_at,
		       u.name, u.email
		FROM member m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var result []MemberWithUser
	for rows.Next() {
		var m MemberWithUser
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.OrganizationID,
			&m.Role,
			&m.CreatedAt,
			&m.UserName,
			&m.UserEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return result, nil
}
