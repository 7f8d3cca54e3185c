// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/adapter"
	"content-paywall/internal/domain/ports/repository"
	"content-paywall/internal/infra/metrics"
	red "content-paywall/internal/infra/redis"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase is the only writer of Payment rows. Each operation is one
// read-check-write unit per transaction ID.
type PaymentUseCase interface {
	// Create opens a pending payment for paid content the user does not
	// already own, snapshotting the current catalog price.
	Create(ctx context.Context, userID, contentID, method, provider string) (*model.Payment, error)
	// Confirm finalizes a pending payment after the gateway has responded.
	// A repeat call for an already-completed row returns the row together
	// with domain.ErrAlreadyProcessed; callers treat that as satisfied.
	Confirm(ctx context.Context, transactionID, providerTransactionID, callerUserID string) (*model.Payment, error)
	// Cancel aborts a pending payment the caller owns.
	Cancel(ctx context.Context, transactionID, callerUserID string) (*model.Payment, error)
	// Refund revokes a completed payment. Admin only.
	Refund(ctx context.Context, transactionID, reason string, callerIsAdmin bool) (*model.Payment, error)
	// CancelStale sweeps pending payments older than olderThan into
	// cancelled, with the same per-row guard as Cancel. Returns the count.
	CancelStale(ctx context.Context, olderThan time.Time, limit int) (int, error)

	ListByUser(ctx context.Context, userID string, f repository.ListFilter) ([]*model.Payment, error)
	ListAll(ctx context.Context, f repository.ListFilter) ([]*model.Payment, error)
}

type paymentUC struct {
	ledger  repository.LedgerRepository
	owned   repository.OwnedContentRepository
	catalog adapter.CatalogLookup
	locker  red.Locker
	tm      repository.TransactionManager
	period  time.Duration // zero means perpetual access
	log     *zerolog.Logger
}

func NewPaymentUseCase(
	ledger repository.LedgerRepository,
	owned repository.OwnedContentRepository,
	catalog adapter.CatalogLookup,
	locker red.Locker,
	tm repository.TransactionManager,
	entitlementPeriod time.Duration,
	logger *zerolog.Logger,
) *paymentUC {
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		ledger:  ledger,
		owned:   owned,
		catalog: catalog,
		locker:  locker,
		tm:      tm,
		period:  entitlementPeriod,
		log:     &l,
	}
}

// newTransactionID builds the external idempotency key: a ULID carries the
// creation timestamp plus 80 bits of entropy, so IDs sort by creation time
// and cannot be derived from user or content IDs.
func newTransactionID(t time.Time) string {
	return fmt.Sprintf("txn_%s", ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()))
}

func purchaseLockKey(userID, contentID string) string {
	return fmt.Sprintf("buy:%s:%s", userID, contentID)
}

func (u *paymentUC) Create(ctx context.Context, userID, contentID, method, provider string) (*model.Payment, error) {
	if userID == "" || contentID == "" || method == "" || provider == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Serialize concurrent purchases of the same pair; the partial unique
	// index on completed rows is the backstop if the lock is lost.
	key := purchaseLockKey(userID, contentID)
	token, err := u.locker.TryLock(ctx, key, 10*time.Second)
	if err != nil {
		return nil, err
	}
	defer func() { _ = u.locker.Unlock(ctx, key, token) }()

	ref, err := u.catalog.FindContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if ref.IsFree {
		return nil, domain.ErrContentIsFree
	}

	if _, err := u.ledger.FindCompletedUnexpired(ctx, nil, userID, contentID, time.Now()); err == nil {
		return nil, domain.ErrAlreadyOwned
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	p := &model.Payment{
		TransactionID: newTransactionID(now),
		UserID:        userID,
		ContentID:     contentID,
		Amount:        ref.Price,
		Currency:      ref.Currency,
		Method:        method,
		Provider:      provider,
		Status:        model.PaymentStatusPending,
		AccessGranted: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.ledger.Create(ctx, nil, p); err != nil {
		return nil, err
	}

	metrics.IncPayment(string(model.PaymentStatusPending))
	u.log.Info().Str("transaction_id", p.TransactionID).Str("content_id", contentID).
		Int64("amount", p.Amount).Msg("payment created")
	return p, nil
}

func (u *paymentUC) Confirm(ctx context.Context, transactionID, providerTransactionID, callerUserID string) (*model.Payment, error) {
	if transactionID == "" || providerTransactionID == "" || callerUserID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var out *model.Payment
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.ledger.FindByTransactionID(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if p.UserID != callerUserID {
			return domain.ErrForbidden
		}
		switch p.Status {
		case model.PaymentStatusPending:
		case model.PaymentStatusCompleted:
			out = p
			return domain.ErrAlreadyProcessed
		default:
			return domain.ErrInvalidState
		}

		now := time.Now()
		// Another pending payment for the same pair may have been confirmed
		// first; re-check inside the transaction so at most one row ever
		// carries a live entitlement. The partial unique index is the
		// storage-level backstop for the same invariant.
		if prior, err := u.ledger.FindCompletedUnexpired(ctx, tx, p.UserID, p.ContentID, now); err == nil && prior.TransactionID != p.TransactionID {
			return domain.ErrAlreadyOwned
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		p.Status = model.PaymentStatusCompleted
		p.AccessGranted = true
		p.ProviderTransactionID = &providerTransactionID
		if u.period > 0 {
			exp := now.Add(u.period)
			p.AccessExpiresAt = &exp
		}
		p.UpdatedAt = now

		ok, err := u.ledger.UpdateStatusIf(ctx, tx, p, model.PaymentStatusPending)
		if err != nil {
			return err
		}
		if !ok {
			// Row moved between the locked read and the update; only another
			// writer inside this tx could do that, so treat as a bug signal.
			return domain.ErrInvalidState
		}

		if err := u.owned.Add(ctx, tx, &model.OwnedContent{
			UserID:        p.UserID,
			ContentID:     p.ContentID,
			TransactionID: p.TransactionID,
		}); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			// Success-equivalent for retried callbacks; out carries the row.
			return out, err
		}
		return nil, err
	}

	metrics.IncPayment(string(model.PaymentStatusCompleted))
	metrics.AddPaymentRevenue(out.Currency, out.Amount)
	u.log.Info().Str("transaction_id", out.TransactionID).Str("provider_ref", providerTransactionID).
		Msg("payment confirmed")
	return out, nil
}

func (u *paymentUC) Cancel(ctx context.Context, transactionID, callerUserID string) (*model.Payment, error) {
	if transactionID == "" || callerUserID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var out *model.Payment
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.ledger.FindByTransactionID(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if p.UserID != callerUserID {
			return domain.ErrForbidden
		}
		if p.Status != model.PaymentStatusPending {
			return domain.ErrInvalidState
		}

		p.Status = model.PaymentStatusCancelled
		p.UpdatedAt = time.Now()
		ok, err := u.ledger.UpdateStatusIf(ctx, tx, p, model.PaymentStatusPending)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidState
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPayment(string(model.PaymentStatusCancelled))
	u.log.Info().Str("transaction_id", out.TransactionID).Msg("payment cancelled")
	return out, nil
}

func (u *paymentUC) Refund(ctx context.Context, transactionID, reason string, callerIsAdmin bool) (*model.Payment, error) {
	// Admin gate comes first so an unauthorized caller learns nothing about
	// the row, not even whether it exists.
	if !callerIsAdmin {
		return nil, domain.ErrForbidden
	}
	if transactionID == "" || reason == "" {
		return nil, domain.ErrInvalidArgument
	}

	var out *model.Payment
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.ledger.FindByTransactionID(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if p.Status != model.PaymentStatusCompleted {
			return domain.ErrInvalidState
		}

		now := time.Now()
		p.Status = model.PaymentStatusRefunded
		p.AccessGranted = false
		p.RefundReason = &reason
		p.RefundedAt = &now
		p.UpdatedAt = now
		ok, err := u.ledger.UpdateStatusIf(ctx, tx, p, model.PaymentStatusCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidState
		}

		if err := u.owned.Remove(ctx, tx, p.UserID, p.ContentID); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPayment(string(model.PaymentStatusRefunded))
	u.log.Info().Str("transaction_id", out.TransactionID).Str("reason", reason).Msg("payment refunded")
	return out, nil
}

func (u *paymentUC) CancelStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	pending, err := u.ledger.ListPendingOlderThan(ctx, nil, olderThan, limit)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, stale := range pending {
		p := stale
		err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			cur, err := u.ledger.FindByTransactionID(ctx, tx, p.TransactionID)
			if err != nil {
				return err
			}
			if cur.Status != model.PaymentStatusPending {
				// A late confirm won the race; leave it alone.
				return domain.ErrInvalidState
			}
			cur.Status = model.PaymentStatusCancelled
			cur.UpdatedAt = time.Now()
			ok, err := u.ledger.UpdateStatusIf(ctx, tx, cur, model.PaymentStatusPending)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrInvalidState
			}
			return nil
		})
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidState) {
				u.log.Error().Err(err).Str("transaction_id", p.TransactionID).Msg("stale cancel failed")
			}
			continue
		}
		cancelled++
		metrics.IncPayment(string(model.PaymentStatusCancelled))
	}
	return cancelled, nil
}

func (u *paymentUC) ListByUser(ctx context.Context, userID string, f repository.ListFilter) ([]*model.Payment, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.ledger.ListByUser(ctx, nil, userID, f)
}

func (u *paymentUC) ListAll(ctx context.Context, f repository.ListFilter) ([]*model.Payment, error) {
	return u.ledger.ListAll(ctx, nil, f)
}
