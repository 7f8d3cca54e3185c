package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"content-paywall/internal/infra/metrics"
	"content-paywall/internal/usecase"
)

// PendingSweeper periodically cancels pending payments whose gateway callback
// never arrived. Cancellation goes through the use case, so it carries the
// same per-row guard as a user-initiated cancel and cannot race a late
// confirm into a double transition.
type PendingSweeper struct {
	uc         usecase.PaymentUseCase
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to cancel
	log        *zerolog.Logger
}

func NewPendingSweeper(uc usecase.PaymentUseCase, interval, staleAfter time.Duration, logger *zerolog.Logger) *PendingSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	l := logger.With().Str("component", "PendingSweeper").Logger()
	return &PendingSweeper{uc: uc, interval: interval, staleAfter: staleAfter, log: &l}
}

func (w *PendingSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("stale_after", w.staleAfter).Msg("starting pending sweeper")
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping pending sweeper")
			return ctx.Err()
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PendingSweeper) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	n, err := w.uc.CancelStale(ctx, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("sweep failed")
		return
	}
	if n > 0 {
		metrics.AddPaymentsSwept(n)
		w.log.Info().Int("count", n).Msg("stale pending payments cancelled")
	}
}
