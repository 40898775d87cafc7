// internal/app/system/invites/service.go

// Package invites implements the invite-code lifecycle: generation,
// validation, redemption, and deactivation.
//
// Redemption is the only concurrency-sensitive operation: two users racing
// on the same code must produce exactly one new membership. The invite store
// expresses the claim as a single conditional update (guarded by
// is_active=true and an unexpired expiry), so the race is settled by the
// database, not by in-process locks.
package invites

import (
	"context"
	"time"

	invitestore "github.com/dalemusser/leadscout/internal/app/store/invites"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultValidity is how long a freshly generated invite stays redeemable.
const DefaultValidity = 7 * 24 * time.Hour

type Service struct {
	invites *invitestore.Store
	users   *userstore.Store
	log     *zap.Logger
}

func NewService(invites *invitestore.Store, users *userstore.Store, logger *zap.Logger) *Service {
	return &Service{invites: invites, users: users, log: logger}
}

// Generate creates a role-carrying invite for an organization. Codes are
// 8 characters from an unambiguous alphabet and globally unique; on a
// duplicate the generation retries a bounded number of times, then falls
// back to a longer code rather than looping forever.
func (s *Service) Generate(ctx context.Context, orgID primitive.ObjectID, role string, validity time.Duration) (models.OrganizationInvite, error) {
	if validity <= 0 {
		validity = DefaultValidity
	}
	now := time.Now().UTC()

	length := CodeLength
	for attempt := 0; ; attempt++ {
		if attempt == maxCollisionRetries {
			length = LongCodeLength
		}
		code, err := newCode(length)
		if err != nil {
			return models.OrganizationInvite{}, err
		}
		inv, err := s.invites.Insert(ctx, models.OrganizationInvite{
			Code:           code,
			OrganizationID: orgID,
			Role:           role,
			IsActive:       true,
			CreatedAt:      now,
			ExpiresAt:      now.Add(validity),
		})
		if err == invitestore.ErrDuplicateCode {
			s.log.Warn("invite code collision, retrying",
				zap.Int("attempt", attempt+1),
				zap.Int("length", length))
			continue
		}
		if err != nil {
			return models.OrganizationInvite{}, err
		}
		return inv, nil
	}
}

// Validate reports whether code would currently grant membership: the invite
// exists, is active, and has not expired. Store failures surface as errors;
// a plain "no" is a value.
func (s *Service) Validate(ctx context.Context, code string) (bool, error) {
	inv, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		if invitestore.IsNoDocuments(err) {
			return false, nil
		}
		return false, err
	}
	return inv.Usable(time.Now().UTC()), nil
}

// Join redeems code for userID: it atomically claims the invite, then adds
// the user to the invite's organization with the invite's role.
//
// false is an expected outcome, not an error: it covers invalid, expired,
// already-used, and missing codes alike (callers must not let the response
// distinguish these, to prevent code enumeration), as well as a user who
// already belongs to an organization.
func (s *Service) Join(ctx context.Context, userID primitive.ObjectID, code string) (bool, error) {
	inv, claimed, err := s.invites.ConsumeActive(ctx, code, time.Now())
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	joined, err := s.users.SetOrganization(ctx, userID, inv.OrganizationID, inv.Role)
	if err != nil || !joined {
		// The claim cannot be honored (user missing, already in an
		// organization, or a store failure). Put the invite back so the
		// code is not burned.
		if rerr := s.invites.Reactivate(ctx, code); rerr != nil {
			s.log.Error("failed to reactivate invite after join failure",
				zap.String("code", code), zap.Error(rerr))
		}
		return false, err
	}

	s.log.Info("user joined organization via invite",
		zap.String("user_id", userID.Hex()),
		zap.String("organization_id", inv.OrganizationID.Hex()),
		zap.String("role", inv.Role))
	return true, nil
}

// ActiveInvites lists the organization's redeemable invites as of now.
func (s *Service) ActiveInvites(ctx context.Context, orgID primitive.ObjectID) ([]models.OrganizationInvite, error) {
	return s.invites.ActiveByOrganization(ctx, orgID, time.Now())
}

// Deactivate revokes an invite. Returns false only when no invite with the
// code exists; revoking an already-inactive invite reports true.
func (s *Service) Deactivate(ctx context.Context, code string) (bool, error) {
	return s.invites.Deactivate(ctx, code)
}

// DeactivateForOrganization revokes an invite only if it belongs to orgID.
// Codes from other organizations report false, same as missing codes, so the
// response never confirms a foreign code exists.
func (s *Service) DeactivateForOrganization(ctx context.Context, orgID primitive.ObjectID, code string) (bool, error) {
	inv, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		if invitestore.IsNoDocuments(err) {
			return false, nil
		}
		return false, err
	}
	if inv.OrganizationID != orgID {
		return false, nil
	}
	return s.invites.Deactivate(ctx, code)
}
