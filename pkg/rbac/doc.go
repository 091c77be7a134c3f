// Package rbac implements the role and permission registry: role CRUD with
// system-role protection, a (resource, action) permission catalogue,
// transactional full-replace permission assignment, and fail-closed
// permission checks.
package rbac
