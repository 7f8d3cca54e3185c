package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Entitlement / catalog
	ErrContentNotFound = errors.New("content not found")
	ErrContentIsFree   = errors.New("content is free; no payment required")
	ErrUnauthenticated = errors.New("caller is not an authenticated active identity")

	// Payment state machine
	ErrAlreadyOwned           = errors.New("user already owns this content")
	ErrAlreadyProcessed       = errors.New("payment was already processed")
	ErrInvalidState           = errors.New("payment state does not allow this transition")
	ErrForbidden              = errors.New("caller has no rights over this payment")
	ErrDuplicateTransactionID = errors.New("transaction id already exists")

	// Collaborator / infra failures
	ErrDependencyUnavailable = errors.New("external dependency unavailable")
	ErrOperationFailed       = errors.New("storage operation failed")
	ErrReadDatabaseRow       = errors.New("failed to read database row")
	ErrInvalidExecContext    = errors.New("invalid execution context for query")
	ErrLockNotAcquired       = errors.New("could not acquire purchase lock")
)
