package model

// Identity is the trusted triple supplied by the external identity service.
// This subsystem never mutates it.
type Identity struct {
	UserID   string
	IsActive bool
	IsAdmin  bool
}

// ContentRef is a read-only snapshot of a catalog item, taken at the moment
// it is looked up. Price is in minor units; later catalog edits do not
// retroactively change payments created from an earlier snapshot.
type ContentRef struct {
	ContentID string
	Price     int64
	Currency  string
	IsFree    bool
}

// OwnedContent is one entry of the denormalized owned-content set kept per
// user. It is a read model maintained by the payment lifecycle inside the
// same transaction as the status change; access decisions never read it.
type OwnedContent struct {
	UserID        string
	ContentID     string
	TransactionID string
}
