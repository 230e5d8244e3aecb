// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	// Totals returns order counts per status.
	Totals(ctx context.Context) (map[model.OrderStatus]int, error)
	// Revenue returns paid-order revenue (minor units) for week/month/year.
	Revenue(ctx context.Context) (week, month, year int64, err error)
}

type statsUC struct {
	orders repository.OrderRepository
}

func NewStatsUseCase(orders repository.OrderRepository) *statsUC {
	return &statsUC{orders: orders}
}

func (u *statsUC) Totals(ctx context.Context) (map[model.OrderStatus]int, error) {
	return u.orders.CountByStatus(ctx, repository.NoTX)
}

func (u *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	week, err := u.orders.SumRevenueByPeriod(ctx, repository.NoTX, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := u.orders.SumRevenueByPeriod(ctx, repository.NoTX, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	year, err := u.orders.SumRevenueByPeriod(ctx, repository.NoTX, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return week, month, year, nil
}
