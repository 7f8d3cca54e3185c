//go:build !integration

package model_test

import (
	"testing"
	"time"

	"content-paywall/internal/domain/model"
)

func TestPaymentStatusTransitions(t *testing.T) {
	all := []model.PaymentStatus{
		model.PaymentStatusPending,
		model.PaymentStatusCompleted,
		model.PaymentStatusFailed,
		model.PaymentStatusCancelled,
		model.PaymentStatusRefunded,
	}

	allowed := map[model.PaymentStatus]map[model.PaymentStatus]bool{
		model.PaymentStatusPending: {
			model.PaymentStatusCompleted: true,
			model.PaymentStatusFailed:    true,
			model.PaymentStatusCancelled: true,
		},
		model.PaymentStatusCompleted: {
			model.PaymentStatusRefunded: true,
		},
	}

	for _, from := range all {
		for _, to := range all {
			got := from.CanTransition(to)
			want := allowed[from][to]
			if got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestPaymentStatusTerminal(t *testing.T) {
	cases := map[model.PaymentStatus]bool{
		model.PaymentStatusPending:   false,
		model.PaymentStatusCompleted: false,
		model.PaymentStatusFailed:    true,
		model.PaymentStatusCancelled: true,
		model.PaymentStatusRefunded:  true,
	}
	for s, want := range cases {
		if got := s.Terminal(); got != want {
			t.Errorf("%s terminal: got %v, want %v", s, got, want)
		}
	}
}

func TestPaymentStatusValid(t *testing.T) {
	if !model.PaymentStatusRefunded.Valid() {
		t.Error("refunded must be valid")
	}
	if model.PaymentStatus("paid").Valid() {
		t.Error("unknown status must be invalid")
	}
	if model.PaymentStatus("").Valid() {
		t.Error("empty status must be invalid")
	}
}

func TestPaymentGrantsAccessAt(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	t.Run("completed with future expiry", func(t *testing.T) {
		p := &model.Payment{Status: model.PaymentStatusCompleted, AccessGranted: true, AccessExpiresAt: &future}
		if !p.GrantsAccessAt(now) {
			t.Error("expected live entitlement")
		}
	})

	t.Run("completed perpetual", func(t *testing.T) {
		p := &model.Payment{Status: model.PaymentStatusCompleted, AccessGranted: true}
		if !p.GrantsAccessAt(now) {
			t.Error("nil expiry means perpetual")
		}
	})

	t.Run("completed but expired", func(t *testing.T) {
		p := &model.Payment{Status: model.PaymentStatusCompleted, AccessGranted: true, AccessExpiresAt: &past}
		if p.GrantsAccessAt(now) {
			t.Error("expired entitlement must not grant access")
		}
	})

	t.Run("pending never grants", func(t *testing.T) {
		p := &model.Payment{Status: model.PaymentStatusPending}
		if p.GrantsAccessAt(now) {
			t.Error("pending payment must not grant access")
		}
	})

	t.Run("refunded never grants", func(t *testing.T) {
		p := &model.Payment{Status: model.PaymentStatusRefunded, AccessGranted: false}
		if p.GrantsAccessAt(now) {
			t.Error("refunded payment must not grant access")
		}
	})
}
