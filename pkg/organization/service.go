package organization

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tendant/orgidm/pkg/errors"
)

// OrganizationService provides platform-level organization management.
// Callers are expected to be platform admins; the guard enforces that at
// the route layer.
type OrganizationService struct {
	repository Repository
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(repository Repository) *OrganizationService {
	return &OrganizationService{
		repository: repository,
	}
}

// List returns a page of organizations with member counts
func (s *OrganizationService) List(ctx context.Context, params ListParams) (*PaginatedOrganizations, error) {
	params.Normalize()

	total, err := s.repository.Count(ctx, params.Search)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to count organizations")
	}

	data, err := s.repository.List(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list organizations")
	}
	if data == nil {
		data = []OrganizationWithMemberCount{}
	}

	totalPages := total / params.Limit
	if total%params.Limit > 0 {
		totalPages++
	}

	return &PaginatedOrganizations{
		Data:       data,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

// Get retrieves an organization by id
func (s *OrganizationService) Get(ctx context.Context, id uuid.UUID) (*OrganizationWithMemberCount, error) {
	org, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get organization")
	}
	if org == nil {
		return nil, errors.New(errors.ErrCodeOrganizationNotFound, "organization not found")
	}
	return org, nil
}

// Create adds a new organization. Slugs are unique; duplicates are rejected.
func (s *OrganizationService) Create(ctx context.Context, params CreateOrganizationParams) (*Organization, error) {
	if params.Name == "" || params.Slug == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "organization name and slug are required")
	}

	existing, err := s.repository.GetBySlug(ctx, params.Slug)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to check organization slug")
	}
	if existing != nil {
		return nil, errors.Newf(errors.ErrCodeConflict, "organization slug %q already exists", params.Slug)
	}

	org, err := s.repository.Create(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create organization")
	}

	slog.Info("Organization created", "organization_id", org.ID, "slug", org.Slug)
	return org, nil
}

// Update modifies an organization
func (s *OrganizationService) Update(ctx context.Context, id uuid.UUID, params UpdateOrganizationParams) (*Organization, error) {
	if params.Slug != nil {
		existing, err := s.repository.GetBySlug(ctx, *params.Slug)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to check organization slug")
		}
		if existing != nil && existing.ID != id {
			return nil, errors.Newf(errors.ErrCodeConflict, "organization slug %q already exists", *params.Slug)
		}
	}

	org, err := s.repository.Update(ctx, id, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to update organization")
	}
	if org == nil {
		return nil, errors.New(errors.ErrCodeOrganizationNotFound, "organization not found")
	}
	return org, nil
}

// Delete removes an organization and cascades to its invitations and
// memberships
func (s *OrganizationService) Delete(ctx context.Context, id uuid.UUID) error {
	org, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to get organization")
	}
	if org == nil {
		return errors.New(errors.ErrCodeOrganizationNotFound, "organization not found")
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete organization")
	}

	slog.Info("Organization deleted", "organization_id", id, "slug", org.Slug)
	return nil
}
