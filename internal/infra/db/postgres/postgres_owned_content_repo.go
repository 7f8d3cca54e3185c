package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/repository"
)

var _ repository.OwnedContentRepository = (*ownedContentRepo)(nil)

// ownedContentRepo stores the denormalized owned-content set. Callers only
// write to it with the same tx handle as the payment transition it mirrors.
type ownedContentRepo struct{ pool *pgxpool.Pool }

func NewOwnedContentRepo(pool *pgxpool.Pool) *ownedContentRepo {
	return &ownedContentRepo{pool: pool}
}

func (r *ownedContentRepo) Add(ctx context.Context, tx repository.Tx, oc *model.OwnedContent) error {
	const q = `
INSERT INTO owned_content (user_id, content_id, transaction_id)
VALUES ($1,$2,$3)
ON CONFLICT (user_id, content_id) DO UPDATE SET transaction_id=$3;`
	_, err := execSQL(ctx, r.pool, tx, q, oc.UserID, oc.ContentID, oc.TransactionID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ownedContentRepo) Remove(ctx context.Context, tx repository.Tx, userID, contentID string) error {
	const q = `DELETE FROM owned_content WHERE user_id=$1 AND content_id=$2;`
	_, err := execSQL(ctx, r.pool, tx, q, userID, contentID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ownedContentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.OwnedContent, error) {
	const q = `SELECT user_id, content_id, transaction_id FROM owned_content WHERE user_id=$1 ORDER BY content_id;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.OwnedContent
	for rows.Next() {
		oc := &model.OwnedContent{}
		if err := rows.Scan(&oc.UserID, &oc.ContentID, &oc.TransactionID); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, oc)
	}
	return out, nil
}
