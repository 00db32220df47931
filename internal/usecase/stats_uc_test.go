//go:build !integration

// File: internal/usecase/stats_uc_test.go
package usecase

import (
	"context"
	"testing"

	"nexus-ai-portal/internal/domain/model"
)

func TestStatsSnapshot(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	orders := newMemOrderRepo()
	profiles := newMemProfileRepo()
	seedProfile(t, profiles, "u1")
	seedProfile(t, profiles, "u2")

	completed := seedPendingOrder(t, orders, "u1", model.PlanAnnual)
	seedPendingOrder(t, orders, "u2", model.PlanLifetime)
	ouc := NewOrderUseCase(orders, profiles, &mockGateway{}, testPrices, &testLogger)
	if res := ouc.HandleGatewayCallback(ctx, successParams(completed.OrderID)); res != CallbackSuccess {
		t.Fatal("setup completion failed")
	}

	// --- Act ---
	s, err := NewStatsUseCase(orders, profiles).Snapshot(ctx)

	// --- Assert ---
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if s.Profiles != 2 {
		t.Fatalf("profiles = %d, want 2", s.Profiles)
	}
	if s.OrdersCompleted != 1 || s.OrdersPending != 1 || s.OrdersFailed != 0 {
		t.Fatalf("order counts = %d/%d/%d, want 1 completed, 1 pending, 0 failed",
			s.OrdersCompleted, s.OrdersPending, s.OrdersFailed)
	}
	if s.RevenueFenTotal != 9900 {
		t.Fatalf("revenue = %d, want 9900", s.RevenueFenTotal)
	}
}
