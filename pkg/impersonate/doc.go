// Package impersonate implements org-scoped session delegation: an
// organization admin or manager can mint a session on behalf of another
// member of the same organization, act as that member, and later tear the
// delegated session down. The delegating principal's qualifying role is
// validated at mint time only; the delegated session itself carries the
// delegating principal's id for the lifetime of the session.
package impersonate
