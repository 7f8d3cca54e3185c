package model

import "time"

type AccessReason string

const (
	AccessReasonFree         AccessReason = "free"
	AccessReasonPurchased    AccessReason = "purchased"
	AccessReasonNotPurchased AccessReason = "not_purchased"
)

// Entitlement is the derived access decision for (user, content). It is
// computed on demand from the catalog and the ledger and never persisted.
type Entitlement struct {
	HasAccess bool
	Reason    AccessReason
	ExpiresAt *time.Time // set when access is time-bounded (Reason == purchased)
	Price     int64      // set when access is denied, so callers can quote it
	Currency  string
}
