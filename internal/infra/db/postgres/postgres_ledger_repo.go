package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/repository"
)

var _ repository.LedgerRepository = (*ledgerRepo)(nil)

const paymentCols = `transaction_id, user_id, content_id, amount, currency, method, provider, provider_transaction_id, status, access_granted, access_expires_at, refund_reason, refunded_at, created_at, updated_at`

type ledgerRepo struct{ pool *pgxpool.Pool }

func NewLedgerRepo(pool *pgxpool.Pool) *ledgerRepo {
	return &ledgerRepo{pool: pool}
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	if err := row.Scan(&p.TransactionID, &p.UserID, &p.ContentID, &p.Amount, &p.Currency, &p.Method, &p.Provider,
		&p.ProviderTransactionID, &p.Status, &p.AccessGranted, &p.AccessExpiresAt, &p.RefundReason, &p.RefundedAt,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *ledgerRepo) Create(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (` + paymentCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
);`
	_, err := execSQL(ctx, r.pool, tx, q, p.TransactionID, p.UserID, p.ContentID, p.Amount, p.Currency, p.Method, p.Provider,
		p.ProviderTransactionID, p.Status, p.AccessGranted, p.AccessExpiresAt, p.RefundReason, p.RefundedAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateTransactionID
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ledgerRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE transaction_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, transactionID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *ledgerRepo) FindCompletedUnexpired(ctx context.Context, tx repository.Tx, userID, contentID string, now time.Time) (*model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments
 WHERE user_id=$1 AND content_id=$2 AND status='completed' AND access_granted
   AND (access_expires_at IS NULL OR access_expires_at > $3)
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, contentID, now)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

// UpdateStatusIf is the single compare-and-swap primitive behind every
// transition: the UPDATE only lands when the row still carries the expected
// status, which is what makes confirm/cancel/refund safe under retries.
func (r *ledgerRepo) UpdateStatusIf(ctx context.Context, tx repository.Tx, p *model.Payment, expect model.PaymentStatus) (bool, error) {
	const q = `
UPDATE payments
   SET status=$2,
       access_granted=$3,
       access_expires_at=$4,
       provider_transaction_id=COALESCE($5, provider_transaction_id),
       refund_reason=COALESCE($6, refund_reason),
       refunded_at=COALESCE($7, refunded_at),
       updated_at=NOW()
 WHERE transaction_id=$1 AND status=$8;`
	cmd, err := execSQL(ctx, r.pool, tx, q, p.TransactionID, p.Status, p.AccessGranted, p.AccessExpiresAt,
		p.ProviderTransactionID, p.RefundReason, p.RefundedAt, expect)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *ledgerRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, f repository.ListFilter) ([]*model.Payment, error) {
	f.UserID = userID
	return r.ListAll(ctx, tx, f)
}

func (r *ledgerRepo) ListAll(ctx context.Context, tx repository.Tx, f repository.ListFilter) ([]*model.Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE 1=1`
	args := []interface{}{}
	if f.Status != "" {
		args = append(args, f.Status)
		q += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		q += fmt.Sprintf(" AND user_id=$%d", len(args))
	}
	if f.ContentID != "" {
		args = append(args, f.ContentID)
		q += fmt.Sprintf(" AND content_id=$%d", len(args))
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	q += ";"

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ledgerRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ledgerRepo) SumCompletedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	switch period {
	case "day", "week", "month":
	default:
		return 0, domain.ErrInvalidArgument
	}
	const q = `SELECT COALESCE(SUM(amount),0) FROM payments WHERE status='completed' AND created_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *ledgerRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.PaymentStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM payments GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	out := make(map[model.PaymentStatus]int)
	for rows.Next() {
		var st model.PaymentStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[st] = n
	}
	return out, nil
}
