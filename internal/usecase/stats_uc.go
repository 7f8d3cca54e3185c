// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// LedgerStats is the admin reporting aggregate.
type LedgerStats struct {
	RevenueDay   int64
	RevenueWeek  int64
	RevenueMonth int64
	ByStatus     map[model.PaymentStatus]int
}

type StatsUseCase interface {
	Summary(ctx context.Context) (*LedgerStats, error)
}

type statsUC struct {
	ledger repository.LedgerRepository
	log    *zerolog.Logger
}

func NewStatsUseCase(ledger repository.LedgerRepository, logger *zerolog.Logger) *statsUC {
	l := logger.With().Str("component", "StatsUC").Logger()
	return &statsUC{ledger: ledger, log: &l}
}

func (u *statsUC) Summary(ctx context.Context) (*LedgerStats, error) {
	day, err := u.ledger.SumCompletedByPeriod(ctx, nil, "day")
	if err != nil {
		return nil, err
	}
	week, err := u.ledger.SumCompletedByPeriod(ctx, nil, "week")
	if err != nil {
		return nil, err
	}
	month, err := u.ledger.SumCompletedByPeriod(ctx, nil, "month")
	if err != nil {
		return nil, err
	}
	byStatus, err := u.ledger.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &LedgerStats{
		RevenueDay:   day,
		RevenueWeek:  week,
		RevenueMonth: month,
		ByStatus:     byStatus,
	}, nil
}
