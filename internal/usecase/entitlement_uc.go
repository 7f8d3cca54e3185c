// File: internal/usecase/entitlement_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/adapter"
	"content-paywall/internal/domain/ports/repository"
	"content-paywall/internal/infra/metrics"
)

var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase is the only access-control primitive in the system.
// Evaluate never mutates state and is safe at arbitrary read concurrency;
// it always reads the ledger, never the owned-content cache.
type EntitlementUseCase interface {
	Evaluate(ctx context.Context, userID, contentID string) (*model.Entitlement, error)
}

type entitlementUC struct {
	catalog adapter.CatalogLookup
	ledger  repository.LedgerRepository
	log     *zerolog.Logger
}

func NewEntitlementUseCase(catalog adapter.CatalogLookup, ledger repository.LedgerRepository, logger *zerolog.Logger) *entitlementUC {
	l := logger.With().Str("component", "EntitlementUC").Logger()
	return &entitlementUC{catalog: catalog, ledger: ledger, log: &l}
}

func (u *entitlementUC) Evaluate(ctx context.Context, userID, contentID string) (*model.Entitlement, error) {
	if userID == "" || contentID == "" {
		return nil, domain.ErrInvalidArgument
	}

	ref, err := u.catalog.FindContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	// Free content never touches the ledger.
	if ref.IsFree {
		metrics.IncEntitlementCheck(string(model.AccessReasonFree))
		return &model.Entitlement{HasAccess: true, Reason: model.AccessReasonFree}, nil
	}

	p, err := u.ledger.FindCompletedUnexpired(ctx, nil, userID, contentID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncEntitlementCheck(string(model.AccessReasonNotPurchased))
			return &model.Entitlement{
				HasAccess: false,
				Reason:    model.AccessReasonNotPurchased,
				Price:     ref.Price,
				Currency:  ref.Currency,
			}, nil
		}
		return nil, err
	}

	metrics.IncEntitlementCheck(string(model.AccessReasonPurchased))
	return &model.Entitlement{
		HasAccess: true,
		Reason:    model.AccessReasonPurchased,
		ExpiresAt: p.AccessExpiresAt,
	}, nil
}
