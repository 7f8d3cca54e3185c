package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via the repositories' `tx` argument.
//
// Keeping the handle opaque (Tx == any) keeps use-case interfaces free of
// storage types while letting repository implementations detect a live
// transaction and switch to SELECT ... FOR UPDATE / tx-bound Exec as needed.
// Repositories must gracefully accept a nil handle (non-transactional path).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
