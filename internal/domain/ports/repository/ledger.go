package repository

import (
	"context"
	"time"

	"content-paywall/internal/domain/model"
)

// ListFilter narrows reporting queries. Zero values mean "no constraint".
type ListFilter struct {
	Status    model.PaymentStatus
	UserID    string
	ContentID string
	Limit     int
	Offset    int
}

// LedgerRepository is durable storage for Payment rows. It owns uniqueness of
// transaction IDs; all writes besides Create go through the lifecycle
// manager's guarded updates.
type LedgerRepository interface {
	// Create inserts a new row; returns domain.ErrDuplicateTransactionID on
	// an ID collision.
	Create(ctx context.Context, tx Tx, p *model.Payment) error
	// FindByTransactionID locks the row (FOR UPDATE) when called with a live
	// transaction handle.
	FindByTransactionID(ctx context.Context, tx Tx, transactionID string) (*model.Payment, error)
	// FindCompletedUnexpired returns the single live entitlement row for
	// (user, content), or domain.ErrNotFound. Backs every access decision.
	FindCompletedUnexpired(ctx context.Context, tx Tx, userID, contentID string, now time.Time) (*model.Payment, error)
	// UpdateStatusIf transitions the row only when its current status matches
	// expect, in one statement. Returns false when the guard did not match.
	UpdateStatusIf(ctx context.Context, tx Tx, p *model.Payment, expect model.PaymentStatus) (bool, error)
	ListByUser(ctx context.Context, tx Tx, userID string, f ListFilter) ([]*model.Payment, error)
	ListAll(ctx context.Context, tx Tx, f ListFilter) ([]*model.Payment, error)
	// ListPendingOlderThan feeds the stale-pending sweeper.
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
	// SumCompletedByPeriod totals completed revenue since the start of the
	// given period ("day" | "week" | "month").
	SumCompletedByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.PaymentStatus]int, error)
}

// OwnedContentRepository maintains the denormalized owned-content set. Add and
// Remove are only ever called with the same Tx handle as the payment status
// change they accompany.
type OwnedContentRepository interface {
	Add(ctx context.Context, tx Tx, oc *model.OwnedContent) error
	Remove(ctx context.Context, tx Tx, userID, contentID string) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.OwnedContent, error)
}
