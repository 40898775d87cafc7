// internal/domain/models/plan.go
package models

import "strings"

// Plan is a subscription tier. The tier determines the organization's daily
// search-result quota (see system/quota for the limit mapping).
type Plan string

const (
	PlanBronze    Plan = "bronze"
	PlanSilver    Plan = "silver"
	PlanGold      Plan = "gold"
	PlanUnlimited Plan = "unlimited"
)

// ParsePlan normalizes and validates a plan string.
func ParsePlan(s string) (Plan, bool) {
	switch Plan(strings.ToLower(strings.TrimSpace(s))) {
	case PlanBronze:
		return PlanBronze, true
	case PlanSilver:
		return PlanSilver, true
	case PlanGold:
		return PlanGold, true
	case PlanUnlimited:
		return PlanUnlimited, true
	}
	return "", false
}

// Valid reports whether p is one of the known tiers.
func (p Plan) Valid() bool {
	_, ok := ParsePlan(string(p))
	return ok
}
