package model

// Plan is the closed set of purchasable membership tiers.
type Plan string

const (
	PlanAnnual   Plan = "annual"
	PlanLifetime Plan = "lifetime"
	// PlanAgent is priced as its own tier but grants lifetime entitlement;
	// the revenue-share mechanics it advertises live outside this service.
	PlanAgent Plan = "agent"
)

// ValidPlan reports whether s names a purchasable plan.
func ValidPlan(s string) bool {
	switch Plan(s) {
	case PlanAnnual, PlanLifetime, PlanAgent:
		return true
	}
	return false
}

// Membership returns the membership tier a completed purchase of the plan
// grants. Agent purchases grant lifetime membership.
func (p Plan) Membership() MembershipType {
	if p == PlanAnnual {
		return MembershipAnnual
	}
	return MembershipLifetime
}
