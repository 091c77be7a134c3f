package organization

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant organization
type Organization struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Logo      string         `json:"logo,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// OrganizationWithMemberCount is the listing view of an organization
type OrganizationWithMemberCount struct {
	Organization
	MemberCount int `json:"member_count"`
}

// CreateOrganizationParams contains parameters for creating an organization
type CreateOrganizationParams struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Logo     string         `json:"logo,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UpdateOrganizationParams contains parameters for updating an organization
type UpdateOrganizationParams struct {
	Name     *string        `json:"name,omitempty"`
	Slug     *string        `json:"slug,omitempty"`
	Logo     *string        `json:"logo,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ListParams controls pagination and search for organization listings
type ListParams struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search,omitempty"`
}

// Normalize clamps pagination to sane bounds
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the row offset for the current page
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PaginatedOrganizations is a page of organizations with totals
type PaginatedOrganizations struct {
	Data       []OrganizationWithMemberCount `json:"data"`
	Total      int                           `json:"total"`
	Page       int                           `json:"page"`
	Limit      int                           `json:"limit"`
	TotalPages int                           `json:"total_pages"`
}
