// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"
	"time"

	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// Stats is the admin dashboard snapshot.
type Stats struct {
	Profiles        int
	OrdersPending   int
	OrdersCompleted int
	OrdersFailed    int
	RevenueFenDay   int64
	RevenueFenMonth int64
	RevenueFenTotal int64
}

type StatsUseCase interface {
	Snapshot(ctx context.Context) (*Stats, error)
}

type statsUC struct {
	orders   repository.OrderRepository
	profiles repository.ProfileRepository
}

func NewStatsUseCase(orders repository.OrderRepository, profiles repository.ProfileRepository) *statsUC {
	return &statsUC{orders: orders, profiles: profiles}
}

func (u *statsUC) Snapshot(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	var err error

	if s.Profiles, err = u.profiles.Count(ctx, nil); err != nil {
		return nil, err
	}
	counts, err := u.orders.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.OrdersPending = counts[string(model.OrderStatusPending)]
	s.OrdersCompleted = counts[string(model.OrderStatusCompleted)]
	s.OrdersFailed = counts[string(model.OrderStatusFailed)]

	now := time.Now()
	if s.RevenueFenDay, err = u.orders.Revenue(ctx, nil, now.Add(-24*time.Hour)); err != nil {
		return nil, err
	}
	if s.RevenueFenMonth, err = u.orders.Revenue(ctx, nil, now.AddDate(0, -1, 0)); err != nil {
		return nil, err
	}
	if s.RevenueFenTotal, err = u.orders.Revenue(ctx, nil, time.Time{}); err != nil {
		return nil, err
	}
	return s, nil
}
