// internal/app/system/quota/limits.go
package quota

import (
	"fmt"

	"github.com/dalemusser/leadscout/internal/domain/models"
)

// Unbounded marks a plan with no daily result limit.
const Unbounded = -1

// DailyLimit maps a subscription tier to its daily search-result limit.
// The mapping is total over the known tiers; an unrecognized tier is a
// programmer error and fails loudly instead of defaulting.
func DailyLimit(plan models.Plan) (int, error) {
	switch plan {
	case models.PlanBronze:
		return 100, nil
	case models.PlanSilver:
		return 300, nil
	case models.PlanGold:
		return 500, nil
	case models.PlanUnlimited:
		return Unbounded, nil
	}
	return 0, fmt.Errorf("quota: unknown plan tier %q", plan)
}
