// internal/app/system/quota/tracker.go

// Package quota tracks daily consumed search-result counts per organization
// against a plan-derived limit. Counts live in the search-usage ledger (one
// row per organization per UTC day); every mutation is a single conditional
// update, so concurrent requests cannot push an organization past its limit.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	usagestore "github.com/dalemusser/leadscout/internal/app/store/usage"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	// ErrQuotaExceeded is the user-visible "daily limit reached" condition.
	// It must propagate to the handler so the UI can explain the refusal
	// instead of silently truncating results.
	ErrQuotaExceeded = errors.New("daily search limit exceeded")

	// ErrUnknownOrganization means the caller passed an id with no backing
	// organization — a programmer error, never silently treated as zero usage.
	ErrUnknownOrganization = errors.New("unknown organization")
)

// Status describes an organization's quota position for the current UTC day.
type Status struct {
	Plan       models.Plan
	DailyLimit int // Unbounded for the unlimited tier
	UsedToday  int
	Remaining  int // clamped at zero; Unbounded when the plan is unlimited
	NextReset  time.Time
}

// Unlimited reports whether the organization has no daily cap.
func (s Status) Unlimited() bool {
	return s.DailyLimit == Unbounded
}

// Tracker enforces the daily quota. It holds no cross-request state: the
// store is the single source of truth.
type Tracker struct {
	orgs  *organizationstore.Store
	usage *usagestore.Store
	log   *zap.Logger
}

func NewTracker(orgs *organizationstore.Store, usage *usagestore.Store, logger *zap.Logger) *Tracker {
	return &Tracker{orgs: orgs, usage: usage, log: logger}
}

// Status returns the organization's limit, consumption, and next reset for
// the current UTC day. Unknown organization ids are a hard error.
func (t *Tracker) Status(ctx context.Context, orgID primitive.ObjectID) (Status, error) {
	org, err := t.orgs.GetByID(ctx, orgID)
	if err == organizationstore.ErrNotFound {
		return Status{}, fmt.Errorf("%w: %s", ErrUnknownOrganization, orgID.Hex())
	}
	if err != nil {
		return Status{}, err
	}

	limit, err := DailyLimit(org.Plan)
	if err != nil {
		return Status{}, err
	}

	usage, err := t.usage.Get(ctx, orgID, models.UsageDay(time.Now()))
	if err != nil {
		return Status{}, err
	}

	st := Status{
		Plan:       org.Plan,
		DailyLimit: limit,
		UsedToday:  usage.ResultCount,
		NextReset:  org.NextSearchReset,
	}
	if limit == Unbounded {
		st.Remaining = Unbounded
	} else {
		st.Remaining = limit - usage.ResultCount
		if st.Remaining < 0 {
			st.Remaining = 0
		}
	}
	return st, nil
}

// CanSearch reports whether the organization has capacity for a search
// expected to return up to requestedResults rows.
func (t *Tracker) CanSearch(ctx context.Context, orgID primitive.ObjectID, requestedResults int) (bool, error) {
	if requestedResults < 0 {
		return false, fmt.Errorf("quota: negative requested results %d", requestedResults)
	}
	st, err := t.Status(ctx, orgID)
	if err != nil {
		return false, err
	}
	if st.Unlimited() {
		return true, nil
	}
	return st.Remaining >= requestedResults, nil
}

// Record charges actualResults against today's quota. The capacity check is
// re-applied at write time as part of the update's filter, so a caller that
// skipped CanSearch (or raced another request) gets ErrQuotaExceeded rather
// than pushing the ledger past the limit.
func (t *Tracker) Record(ctx context.Context, orgID primitive.ObjectID, actualResults int) error {
	if actualResults < 0 {
		return fmt.Errorf("quota: negative result count %d", actualResults)
	}

	org, err := t.orgs.GetByID(ctx, orgID)
	if err == organizationstore.ErrNotFound {
		return fmt.Errorf("%w: %s", ErrUnknownOrganization, orgID.Hex())
	}
	if err != nil {
		return err
	}
	limit, err := DailyLimit(org.Plan)
	if err != nil {
		return err
	}

	ok, err := t.usage.IncrementWithin(ctx, orgID, models.UsageDay(time.Now()), actualResults, limit)
	if err != nil {
		return err
	}
	if !ok {
		return ErrQuotaExceeded
	}
	return nil
}

// ResetDaily rolls the quota over for every organization whose reset time
// has passed: the reset timestamp advances to the next UTC midnight and a
// zeroed usage row is seeded for the new day. Idempotent — the advance is
// guarded by the previous timestamp, so overlapping runs do the work once.
func (t *Tracker) ResetDaily(ctx context.Context) error {
	now := time.Now().UTC()
	due, err := t.orgs.DueForReset(ctx, now)
	if err != nil {
		return err
	}

	for _, org := range due {
		next := organizationstore.NextUTCMidnight(now)
		advanced, err := t.orgs.AdvanceReset(ctx, org.ID, org.NextSearchReset, next)
		if err != nil {
			return err
		}
		if !advanced {
			// Another run already rolled this organization over.
			continue
		}
		if err := t.usage.EnsureRow(ctx, org.ID, models.UsageDay(now)); err != nil {
			return err
		}
		t.log.Info("daily search quota reset",
			zap.String("organization_id", org.ID.Hex()),
			zap.Time("next_reset", next))
	}
	return nil
}
