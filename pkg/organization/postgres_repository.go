package organization

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

// NewPostgresRepository creates a new PostgreSQL organization repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// List returns a page of organizations with member counts, newest first
func (r *PostgresRepository) List(ctx context.Context, params ListParams) ([]OrganizationWithMemberCount, error) {
	query := `
		SELECT o.id, o.name, o.slug, o.logo, o.metadata, o.created_at, o.updated_at,
		       COUNT(m.id) AS member_count
		FROM organization o
		LEFT JOIN member m ON m.organization_id = o.id
		WHERE ($1 = '' OR o.name ILIKE '%' || $1 || '%' OR o.slug ILIKE '%' || $1 || '%')
		GROUP BY o.id
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, params.Search, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var result []OrganizationWithMemberCount
	for rows.Next() {
		org, err := scanOrganizationWithCount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		result = append(result, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return result, nil
}

// Count counts organizations matching the search filter
func (r *PostgresRepository) Count(ctx context.Context, search string) (int, error) {
	query := `
		SELECT COUNT(*) FROM organization o
		WHERE ($1 = '' OR o.name ILIKE '%' || $1 || '%' OR o.slug ILIKE '%' || $1 || '%')
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, search).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count organizations: %w", err)
	}
	return count, nil
}

// GetByID retrieves an organization with member count, (nil, nil) when
// absent
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*OrganizationWithMemberCount, error) {
	query := `
		SELECT o.id, o.name, o.slug, o.logo, o.metadata, o.created_at, o.updated_at,
		       COUNT(m.id) AS member_count
		FROM organization o
		LEFT JOIN member m ON m.organization_id = o.id
		WHERE o.id = $1
		GROUP BY o.id
	`

	org, err := scanOrganizationWithCount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// GetBySlug retrieves an organization by slug, (nil, nil) when absent
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Organization, error) {
	query := `
		SELECT id, name, slug, logo, metadata, created_at, updated_at
		FROM organization
		WHERE slug = $1
	`

	org := &Organization{}
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&org.ID, &org.Name, &org.Slug, &org.Logo, &org.Metadata,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization by slug: %w", err)
	}
	return org, nil
}

// Create inserts a new organization
func (r *PostgresRepository) Create(ctx context.Context, params CreateOrganizationParams) (*Organization, error) {
	query := `
		INSERT INTO organization (name, slug, logo, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, slug, logo, metadata, created_at, updated_at
	`

	org := &Organization{}
	err := r.pool.QueryRow(ctx, query,
		params.Name, params.Slug, params.Logo, params.Metadata,
	).Scan(
		&org.ID, &org.Name, &org.Slug, &org.Logo, &org.Metadata,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

// Update modifies an organization, (nil, nil) when absent
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, params UpdateOrganizationParams) (*Organization, error) {
	query := `
		UPDATE organization SET
			name = COALESCE($2, name),
			slug = COALESCE($3, slug),
			logo = COALESCE($4, logo),
			metadata = COALESCE($5, metadata),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, slug, logo, metadata, created_at, updated_at
	`

	var metadata any
	if params.Metadata != nil {
		metadata = params.Metadata
	}

	org := &Organization{}
	err := r.pool.QueryRow(ctx, query,
		id, params.Name, params.Slug, params.Logo, metadata,
	).Scan(
		&org.ID, &org.Name, &org.Slug, &org.Logo, &org.Metadata,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

// Delete removes the organization and its scoped rows in a fixed order
// inside one transaction
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM invitation WHERE organization_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete invitations: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM member WHERE organization_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete members: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM organization WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit organization delete: %w", err)
	}
	return nil
}

func scanOrganizationWithCount(row pgx.Row) (*OrganizationWithMemberCount, error) {
	org := &OrganizationWithMemberCount{}
	err := row.Scan(
		&org.ID, &org.Name, &org.Slug, &org.Logo, &org.Metadata,
		&org.CreatedAt, &org.UpdatedAt, &org.MemberCount,
	)
	if err != nil {
		return nil, err
	}
	return org, nil
}
