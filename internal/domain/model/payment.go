package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // created; awaiting gateway confirm/fail callback
	PaymentStatusCompleted PaymentStatus = "completed" // confirmed; access granted (may later be refunded)
	PaymentStatusFailed    PaymentStatus = "failed"    // gateway reported failure
	PaymentStatusCancelled PaymentStatus = "cancelled" // user cancel or stale-pending sweep
	PaymentStatusRefunded  PaymentStatus = "refunded"  // admin refund; access revoked
)

// transitions is the closed state machine: pending -> completed|failed|cancelled,
// completed -> refunded. Everything else is rejected.
var transitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s PaymentStatus) Terminal() bool { return len(transitions[s]) == 0 }

// Valid reports whether s is one of the five known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// Payment is the ledger row for one purchase attempt. It is created once,
// transitions at most twice, and is never deleted.
type Payment struct {
	TransactionID string // external identifier and idempotency key; never a surrogate
	UserID        string
	ContentID     string
	Amount        int64  // minor units, snapshotted from the catalog at creation
	Currency      string // ISO-ish code, snapshotted with Amount
	Method        string // e.g. "card"
	Provider      string // e.g. "liqpay"

	ProviderTransactionID *string // gateway's own reference, set on confirm
	Status                PaymentStatus
	AccessGranted         bool       // true only while Status == completed
	AccessExpiresAt       *time.Time // nil means perpetual access
	RefundReason          *string
	RefundedAt            *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GrantsAccessAt reports whether this row carries a live entitlement at t.
func (p *Payment) GrantsAccessAt(t time.Time) bool {
	if p.Status != PaymentStatusCompleted || !p.AccessGranted {
		return false
	}
	return p.AccessExpiresAt == nil || p.AccessExpiresAt.After(t)
}
