package model

import (
	"time"

	"nexus-ai-portal/internal/domain"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type MembershipType string

const (
	MembershipFree     MembershipType = "free"
	MembershipAnnual   MembershipType = "annual"
	MembershipLifetime MembershipType = "lifetime"
)

// Profile is the durable record of a user's role and membership entitlement.
// UserID is 1:1 with the identity provider's user record; the role column is
// the sole authority for admin access.
type Profile struct {
	UserID              string
	Email               string
	Username            string
	Role                Role
	MembershipType      MembershipType
	MembershipExpiresAt *time.Time // nil means "no expiry"; mandatory for annual
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func NewProfile(userID, email, username string) (*Profile, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Profile{
		UserID:         userID,
		Email:          email,
		Username:       username,
		Role:           RoleUser,
		MembershipType: MembershipFree,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (p *Profile) IsZero() bool  { return p == nil || p.UserID == "" }
func (p *Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// HasAccessAt answers "does this user currently have paid access" at the
// given instant. Admins bypass every check; lifetime never expires; annual
// requires a present, strictly-future expiry.
func (p *Profile) HasAccessAt(now time.Time) bool {
	if p.IsZero() {
		return false
	}
	if p.Role == RoleAdmin {
		return true
	}
	switch p.MembershipType {
	case MembershipLifetime:
		return true
	case MembershipAnnual:
		return p.MembershipExpiresAt != nil && p.MembershipExpiresAt.After(now)
	}
	return false
}

// HasAccess evaluates HasAccessAt against the wall clock.
func (p *Profile) HasAccess() bool { return p.HasAccessAt(time.Now()) }

// HasPermission answers whether the user may use the named feature. All paid
// features are bundled under a single entitlement, so the feature name does
// not influence the result; the parameter is kept so call sites stay stable
// if per-feature tiers ever appear.
func (p *Profile) HasPermission(feature string) bool {
	_ = feature
	return p.HasAccess()
}

// ApplyPlan mutates the membership pair for a completed purchase of plan,
// effective at the given instant. An annual renewal resets the clock to
// now+365 days rather than extending the current expiry.
func (p *Profile) ApplyPlan(plan Plan, now time.Time) {
	switch plan.Membership() {
	case MembershipAnnual:
		exp := now.Add(365 * 24 * time.Hour)
		p.MembershipType = MembershipAnnual
		p.MembershipExpiresAt = &exp
	case MembershipLifetime:
		p.MembershipType = MembershipLifetime
		p.MembershipExpiresAt = nil
	}
	p.UpdatedAt = now
}
