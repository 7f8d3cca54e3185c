//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/usecase"
)

func TestEntitlementUseCase_Evaluate(t *testing.T) {
	ctx := context.Background()

	newDeps := func() (*mockCatalog, *memLedgerRepo, usecase.EntitlementUseCase) {
		catalog := newMockCatalog()
		ledger := newMemLedgerRepo()
		return catalog, ledger, usecase.NewEntitlementUseCase(catalog, ledger, newTestLogger())
	}

	t.Run("free content is accessible without any purchase record", func(t *testing.T) {
		catalog, _, uc := newDeps()
		catalog.put(&model.ContentRef{ContentID: "free1", IsFree: true})

		e, err := uc.Evaluate(ctx, "u1", "free1")
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !e.HasAccess || e.Reason != model.AccessReasonFree {
			t.Errorf("expected free access, got %+v", e)
		}
	})

	t.Run("live purchase grants access and reports the expiry", func(t *testing.T) {
		catalog, ledger, uc := newDeps()
		catalog.put(&model.ContentRef{ContentID: "c1", Price: 100, Currency: "UAH"})
		exp := time.Now().Add(time.Hour)
		ledger.seed(&model.Payment{
			TransactionID: "txn_1", UserID: "u1", ContentID: "c1",
			Status: model.PaymentStatusCompleted, AccessGranted: true, AccessExpiresAt: &exp,
		})

		e, err := uc.Evaluate(ctx, "u1", "c1")
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !e.HasAccess || e.Reason != model.AccessReasonPurchased {
			t.Errorf("expected purchased access, got %+v", e)
		}
		if e.ExpiresAt == nil || !e.ExpiresAt.Equal(exp) {
			t.Errorf("expiry not propagated: %v", e.ExpiresAt)
		}
	})

	t.Run("no purchase yields a denial carrying the price", func(t *testing.T) {
		catalog, _, uc := newDeps()
		catalog.put(&model.ContentRef{ContentID: "c1", Price: 250, Currency: "UAH"})

		e, err := uc.Evaluate(ctx, "u1", "c1")
		if err != nil {
			t.Fatalf("denial is a result, not an error: %v", err)
		}
		if e.HasAccess || e.Reason != model.AccessReasonNotPurchased {
			t.Errorf("expected not_purchased, got %+v", e)
		}
		if e.Price != 250 || e.Currency != "UAH" {
			t.Errorf("denial must carry the current price, got %d %s", e.Price, e.Currency)
		}
	})

	t.Run("expired purchase no longer grants access", func(t *testing.T) {
		catalog, ledger, uc := newDeps()
		catalog.put(&model.ContentRef{ContentID: "c1", Price: 100, Currency: "UAH"})
		past := time.Now().Add(-time.Minute)
		ledger.seed(&model.Payment{
			TransactionID: "txn_old", UserID: "u1", ContentID: "c1",
			Status: model.PaymentStatusCompleted, AccessGranted: true, AccessExpiresAt: &past,
		})

		e, err := uc.Evaluate(ctx, "u1", "c1")
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if e.HasAccess {
			t.Error("expired entitlement must not grant access")
		}
	})

	t.Run("refunded purchase no longer grants access", func(t *testing.T) {
		catalog, ledger, uc := newDeps()
		catalog.put(&model.ContentRef{ContentID: "c1", Price: 100, Currency: "UAH"})
		ledger.seed(&model.Payment{
			TransactionID: "txn_r", UserID: "u1", ContentID: "c1",
			Status: model.PaymentStatusRefunded, AccessGranted: false,
		})

		e, err := uc.Evaluate(ctx, "u1", "c1")
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if e.HasAccess {
			t.Error("refunded entitlement must not grant access")
		}
	})

	t.Run("unknown content propagates not found", func(t *testing.T) {
		_, _, uc := newDeps()

		if _, err := uc.Evaluate(ctx, "u1", "nope"); !errors.Is(err, domain.ErrContentNotFound) {
			t.Errorf("expected ErrContentNotFound, got %v", err)
		}
	})

	t.Run("empty inputs are rejected", func(t *testing.T) {
		_, _, uc := newDeps()

		if _, err := uc.Evaluate(ctx, "", "c1"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
