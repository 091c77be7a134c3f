package impersonate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/orgidm/pkg/auth"
	"github.com/tendant/orgidm/pkg/errors"
	"github.com/tendant/orgidm/pkg/member"
	"github.com/tendant/orgidm/pkg/notification"
	"github.com/tendant/orgidm/pkg/sessions"
)

// SessionTTL is the fixed lifetime of a delegated session
const SessionTTL = 24 * time.Hour

// managerRoles is the org-scoped capability set for delegation. Only
// members holding one of these roles within the organization may
// impersonate.
var managerRoles = []string{"admin", "manager"}

// ManagerRoles returns a copy of the delegation-capable role set, for route
// guards that gate the target-picker endpoints on the same capability
func ManagerRoles() []string {
	out := make([]string, len(managerRoles))
	copy(out, managerRoles)
	return out
}

// CanImpersonate reports whether an org-scoped membership role is in the
// delegation-capable set
func CanImpersonate(role string) bool {
	for _, r := range managerRoles {
		if role == r {
			return true
		}
	}
	return false
}

// Service orchestrates delegated-session issuance and teardown. All
// collaborators are supplied at construction; there is no late binding.
type Service struct {
	memberService     *member.MemberService
	sessionRepository sessions.Repository
	userRepository    auth.UserRepository
	notifier          notification.Notifier
}

// NewService creates a new impersonation service. The notifier may be nil,
// in which case no notice is sent on issuance.
func NewService(memberService *member.MemberService, sessionRepository sessions.Repository, userRepository auth.UserRepository, notifier notification.Notifier) *Service {
	return &Service{
		memberService:     memberService,
		sessionRepository: sessionRepository,
		userRepository:    userRepository,
		notifier:          notifier,
	}
}

// Impersonate mints a delegated session for the target user within an
// organization and returns its opaque token.
//
// The checks run in a fixed order that callers rely on: impersonator
// membership, impersonator capability, target membership, then
// self-impersonation. A non-member impersonating themselves is told "not a
// member", not "cannot impersonate yourself".
//
// The impersonator's own session is left untouched; the insert is additive
// so the impersonator can return to their original identity later.
func (s *Service) Impersonate(ctx context.Context, impersonatorID, targetUserID, organizationID uuid.UUID) (string, error) {
	impersonatorMembership, err := s.memberService.GetMembership(ctx, impersonatorID, organizationID)
	if err != nil {
		return "", err
	}
	if impersonatorMembership == nil {
		return "", errors.New(errors.ErrCodeForbidden, "You are not a member of this organization")
	}

	if !CanImpersonate(impersonatorMembership.Role) {
		return "", errors.New(errors.ErrCodeForbidden, "You do not have permission to impersonate users")
	}

	targetMembership, err := s.memberService.GetMembership(ctx, targetUserID, organizationID)
	if err != nil {
		return "", err
	}
	if targetMembership == nil {
		return "", errors.New(errors.ErrCodeNotFound, "Target user is not a member of this organization")
	}

	if targetUserID == impersonatorID {
		return "", errors.New(errors.ErrCodeForbidden, "You cannot impersonate yourself")
	}

	token := uuid.NewString()
	delegatedBy := impersonatorID
	orgID := organizationID

	_, err = s.sessionRepository.Create(ctx, sessions.CreateSessionRequest{
		ID:                   uuid.New(),
		UserID:               targetUserID,
		Token:                token,
		ExpiresAt:            time.Now().Add(SessionTTL),
		DelegatedBy:          &delegatedBy,
		ActiveOrganizationID: &orgID,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to create delegated session")
	}

	slog.Info("Delegated session created",
		"impersonator_id", impersonatorID,
		"target_user_id", targetUserID,
		"organization_id", organizationID)

	s.notifyTarget(ctx, impersonatorID, targetUserID)

	return token, nil
}

// StopImpersonation tears down a delegated session by token. Unknown tokens
// yield NotFound; tokens of normal sessions yield Forbidden. A second call
// on the same token finds nothing and yields NotFound.
func (s *Service) StopImpersonation(ctx context.Context, token string) error {
	session, err := s.sessionRepository.GetByToken(ctx, token)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to look up session")
	}
	if session == nil {
		return errors.New(errors.ErrCodeNotFound, "Session not found")
	}

	if !session.IsDelegated() {
		return errors.New(errors.ErrCodeForbidden, "This session is not an impersonation session")
	}

	if err := s.sessionRepository.DeleteByToken(ctx, token); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete session")
	}

	slog.Info("Delegated session ended",
		"user_id", session.UserID,
		"delegated_by", session.DelegatedBy)
	return nil
}

// notifyTarget sends a best-effort notice to the impersonated user.
// Delivery failure never fails the operation.
func (s *Service) notifyTarget(ctx context.Context, impersonatorID, targetUserID uuid.UUID) {
	if s.notifier == nil {
		return
	}

	target, err := s.userRepository.GetUser(ctx, targetUserID)
	if err != nil || target == nil {
		slog.Warn("Could not load target user for impersonation notice",
			"target_user_id", targetUserID, "err", err)
		return
	}

	impersonator, err := s.userRepository.GetUser(ctx, impersonatorID)
	impersonatorName := impersonatorID.String()
	if err == nil && impersonator != nil {
		impersonatorName = impersonator.Email
	}

	err = s.notifier.Send(notification.ImpersonationNotice, notification.NotificationData{
		To:      target.Email,
		Subject: "Your account is being accessed by an organization manager",
		Body: fmt.Sprintf(
			"An organization manager (%s) started a support session on your account. "+
				"The session expires automatically after %s.",
			impersonatorName, SessionTTL),
	})
	if err != nil {
		slog.Warn("Failed to send impersonation notice", "to", target.Email, "err", err)
	}
}
