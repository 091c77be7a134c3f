package organization

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for organization data access.
// GetByID/GetBySlug return (nil, nil) when no organization matches.
type Repository interface {
	List(ctx context.Context, params ListParams) ([]OrganizationWithMemberCount, error)
	Count(ctx context.Context, search string) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrganizationWithMemberCount, error)
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	Create(ctx context.Context, params CreateOrganizationParams) (*Organization, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateOrganizationParams) (*Organization, error)

	// Delete removes the organization and everything scoped to it inside
	// one transaction: invitations first, then memberships, then the
	// organization row. A concurrent reader sees either all rows or none.
	Delete(ctx context.Context, id uuid.UUID) error
}
