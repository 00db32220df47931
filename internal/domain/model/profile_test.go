//go:build !integration

// File: internal/domain/model/profile_test.go
package model

import (
	"testing"
	"time"
)

func TestHasAccessAt(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name       string
		role       Role
		membership MembershipType
		expiresAt  *time.Time
		want       bool
	}{
		{"free user has no access", RoleUser, MembershipFree, nil, false},
		{"lifetime member always has access", RoleUser, MembershipLifetime, nil, true},
		{"annual member with future expiry has access", RoleUser, MembershipAnnual, &future, true},
		{"annual member with past expiry has no access", RoleUser, MembershipAnnual, &past, false},
		{"annual member with expiry exactly now has no access", RoleUser, MembershipAnnual, &now, false},
		{"annual member with missing expiry has no access", RoleUser, MembershipAnnual, nil, false},
		{"admin bypasses membership entirely", RoleAdmin, MembershipFree, nil, true},
		{"admin with expired annual still has access", RoleAdmin, MembershipAnnual, &past, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Profile{
				UserID:              "u1",
				Role:                tc.role,
				MembershipType:      tc.membership,
				MembershipExpiresAt: tc.expiresAt,
			}
			if got := p.HasAccessAt(now); got != tc.want {
				t.Fatalf("HasAccessAt = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("nil and zero profiles have no access", func(t *testing.T) {
		var p *Profile
		if p.HasAccessAt(now) {
			t.Fatal("nil profile must not have access")
		}
		if (&Profile{}).HasAccessAt(now) {
			t.Fatal("zero profile must not have access")
		}
	})
}

func TestHasPermission(t *testing.T) {
	// Every paid feature rides on the same entitlement.
	p := &Profile{UserID: "u1", MembershipType: MembershipLifetime}
	for _, feature := range []string{"text_generation", "image_generation", "anything"} {
		if !p.HasPermission(feature) {
			t.Fatalf("HasPermission(%q) = false for lifetime member", feature)
		}
	}

	free := &Profile{UserID: "u1", MembershipType: MembershipFree}
	if free.HasPermission("text_generation") {
		t.Fatal("free member must not have feature permission")
	}
}

func TestApplyPlan(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("annual sets expiry to now+365d", func(t *testing.T) {
		p := &Profile{UserID: "u1", MembershipType: MembershipFree}
		p.ApplyPlan(PlanAnnual, now)
		if p.MembershipType != MembershipAnnual {
			t.Fatalf("membership = %s, want annual", p.MembershipType)
		}
		want := now.Add(365 * 24 * time.Hour)
		if p.MembershipExpiresAt == nil || !p.MembershipExpiresAt.Equal(want) {
			t.Fatalf("expiry = %v, want %v", p.MembershipExpiresAt, want)
		}
	})

	t.Run("annual renewal resets rather than extends", func(t *testing.T) {
		old := now.Add(200 * 24 * time.Hour)
		p := &Profile{UserID: "u1", MembershipType: MembershipAnnual, MembershipExpiresAt: &old}
		p.ApplyPlan(PlanAnnual, now)
		want := now.Add(365 * 24 * time.Hour)
		if !p.MembershipExpiresAt.Equal(want) {
			t.Fatalf("expiry = %v, want reset to %v", p.MembershipExpiresAt, want)
		}
	})

	t.Run("lifetime clears the expiry", func(t *testing.T) {
		exp := now.Add(time.Hour)
		p := &Profile{UserID: "u1", MembershipType: MembershipAnnual, MembershipExpiresAt: &exp}
		p.ApplyPlan(PlanLifetime, now)
		if p.MembershipType != MembershipLifetime || p.MembershipExpiresAt != nil {
			t.Fatalf("got %s/%v, want lifetime with no expiry", p.MembershipType, p.MembershipExpiresAt)
		}
	})

	t.Run("agent plan grants lifetime", func(t *testing.T) {
		p := &Profile{UserID: "u1", MembershipType: MembershipFree}
		p.ApplyPlan(PlanAgent, now)
		if p.MembershipType != MembershipLifetime || p.MembershipExpiresAt != nil {
			t.Fatalf("got %s/%v, want lifetime with no expiry", p.MembershipType, p.MembershipExpiresAt)
		}
	})
}
