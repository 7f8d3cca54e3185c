package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/repository"
)

// ===== DTOs =====

type PaymentDTO struct {
	TransactionID         string     `json:"transaction_id"`
	UserID                string     `json:"user_id"`
	ContentID             string     `json:"content_id"`
	Amount                int64      `json:"amount"`
	Currency              string     `json:"currency"`
	Method                string     `json:"method"`
	Provider              string     `json:"provider"`
	ProviderTransactionID *string    `json:"provider_transaction_id,omitempty"`
	Status                string     `json:"status"`
	AccessGranted         bool       `json:"access_granted"`
	AccessExpiresAt       *time.Time `json:"access_expires_at,omitempty"`
	RefundReason          *string    `json:"refund_reason,omitempty"`
	RefundedAt            *time.Time `json:"refunded_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func toPaymentDTO(p *model.Payment) PaymentDTO {
	return PaymentDTO{
		TransactionID:         p.TransactionID,
		UserID:                p.UserID,
		ContentID:             p.ContentID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		Method:                p.Method,
		Provider:              p.Provider,
		ProviderTransactionID: p.ProviderTransactionID,
		Status:                string(p.Status),
		AccessGranted:         p.AccessGranted,
		AccessExpiresAt:       p.AccessExpiresAt,
		RefundReason:          p.RefundReason,
		RefundedAt:            p.RefundedAt,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

type EntitlementDTO struct {
	HasAccess bool       `json:"has_access"`
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Price     int64      `json:"price,omitempty"`
	Currency  string     `json:"currency,omitempty"`
}

// ===== payments =====

type createPaymentReq struct {
	ContentID string `json:"content_id"`
	Method    string `json:"method"`
	Provider  string `json:"provider"`
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	var req createPaymentReq
	if r.Body == nil || json.NewDecoder(r.Body).Decode(&req) != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Provider == "" {
		req.Provider = s.defaultProvider
	}
	p, err := s.payments.Create(r.Context(), caller.UserID, req.ContentID, req.Method, req.Provider)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

type confirmPaymentReq struct {
	ProviderTransactionID string `json:"provider_transaction_id"`
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	txnID := chi.URLParam(r, "transactionID")
	var req confirmPaymentReq
	if r.Body == nil || json.NewDecoder(r.Body).Decode(&req) != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := s.payments.Confirm(r.Context(), txnID, req.ProviderTransactionID, caller.UserID)
	if err != nil {
		// A retried gateway callback lands here; the payment is already
		// completed, so answer as if this call had done the work.
		if errors.Is(err, domain.ErrAlreadyProcessed) && p != nil {
			writeJSON(w, http.StatusOK, toPaymentDTO(p))
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	txnID := chi.URLParam(r, "transactionID")
	p, err := s.payments.Cancel(r.Context(), txnID, caller.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

type refundPaymentReq struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRefundPayment(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	txnID := chi.URLParam(r, "transactionID")
	var req refundPaymentReq
	if r.Body == nil || json.NewDecoder(r.Body).Decode(&req) != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := s.payments.Refund(r.Context(), txnID, req.Reason, caller.IsAdmin)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

// ===== access =====

func (s *Server) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	contentID := chi.URLParam(r, "contentID")
	ent, err := s.access.CheckAccess(r.Context(), caller, contentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// "No access" is a 200 with has_access=false and the price attached.
	writeJSON(w, http.StatusOK, EntitlementDTO{
		HasAccess: ent.HasAccess,
		Reason:    string(ent.Reason),
		ExpiresAt: ent.ExpiresAt,
		Price:     ent.Price,
		Currency:  ent.Currency,
	})
}

func (s *Server) handleOwnedContent(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	owned, err := s.access.OwnedContent(r.Context(), caller)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]map[string]string, 0, len(owned))
	for _, oc := range owned {
		items = append(items, map[string]string{
			"content_id":     oc.ContentID,
			"transaction_id": oc.TransactionID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// ===== listing / stats =====

func listFilterFromQuery(r *http.Request) repository.ListFilter {
	q := r.URL.Query()
	f := repository.ListFilter{
		Status:    model.PaymentStatus(q.Get("status")),
		UserID:    q.Get("user_id"),
		ContentID: q.Get("content_id"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = n
	}
	return f
}

func (s *Server) handleMyPayments(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	f := listFilterFromQuery(r)
	list, err := s.payments.ListByUser(r.Context(), caller.UserID, f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]PaymentDTO, 0, len(list))
	for _, p := range list {
		items = append(items, toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleAdminPayments(w http.ResponseWriter, r *http.Request) {
	f := listFilterFromQuery(r)
	if f.Status != "" && !f.Status.Valid() {
		writeJSONError(w, http.StatusUnprocessableEntity, "unknown status filter")
		return
	}
	list, err := s.payments.ListAll(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]PaymentDTO, 0, len(list))
	for _, p := range list {
		items = append(items, toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Summary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byStatus := make(map[string]int, len(stats.ByStatus))
	for st, n := range stats.ByStatus {
		byStatus[string(st)] = n
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"revenue": map[string]int64{
			"day":   stats.RevenueDay,
			"week":  stats.RevenueWeek,
			"month": stats.RevenueMonth,
		},
		"by_status": byStatus,
	})
}
