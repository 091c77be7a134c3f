// Package guard provides the two authorization checks used by protected
// operations: a platform-level global-role check and an organization-scoped
// membership-role check. Both are pure decision functions over
// (required-role-set, resolved request context); the middleware wrappers
// only read the context and translate denials to HTTP. The two checks are
// independent and compose by stacking, never by merging their logic.
package guard
