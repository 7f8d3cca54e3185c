package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"content-paywall/internal/domain/ports/adapter"
	"content-paywall/internal/usecase"
)

// Server wires the engine's external operations onto chi.
type Server struct {
	payments        usecase.PaymentUseCase
	access          usecase.AccessUseCase
	stats           usecase.StatsUseCase
	verifier        adapter.IdentityVerifier
	defaultProvider string
	requestTimeout  time.Duration
	log             *zerolog.Logger
}

func NewServer(
	payments usecase.PaymentUseCase,
	access usecase.AccessUseCase,
	stats usecase.StatsUseCase,
	verifier adapter.IdentityVerifier,
	requestTimeout time.Duration,
	logger *zerolog.Logger,
) *Server {
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	l := logger.With().Str("component", "api").Logger()
	return &Server{
		payments:        payments,
		access:          access,
		stats:           stats,
		verifier:        verifier,
		defaultProvider: "gateway",
		requestTimeout:  requestTimeout,
		log:             &l,
	}
}

// Router builds the full route tree including middleware.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	wrap := func(h http.HandlerFunc, mws ...Middleware) http.Handler {
		base := []Middleware{TraceID(), Recover(s.log), Timeout(s.requestTimeout), RequestLog(s.log)}
		return Chain(h, append(base, mws...)...)
	}
	authed := func(h http.HandlerFunc, mws ...Middleware) http.Handler {
		return wrap(h, append([]Middleware{BearerAuth(s.verifier)}, mws...)...)
	}

	r.Method(http.MethodGet, "/health", wrap(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/payments", authed(s.handleCreatePayment))
		r.Method(http.MethodPost, "/payments/{transactionID}/confirm", authed(s.handleConfirmPayment))
		r.Method(http.MethodPost, "/payments/{transactionID}/cancel", authed(s.handleCancelPayment))
		r.Method(http.MethodPost, "/payments/{transactionID}/refund", authed(s.handleRefundPayment, AdminOnly()))

		r.Method(http.MethodGet, "/content/{contentID}/access", authed(s.handleCheckAccess))
		r.Method(http.MethodGet, "/me/content", authed(s.handleOwnedContent))
		r.Method(http.MethodGet, "/me/payments", authed(s.handleMyPayments))

		r.Method(http.MethodGet, "/admin/payments", authed(s.handleAdminPayments, AdminOnly()))
		r.Method(http.MethodGet, "/admin/stats", authed(s.handleAdminStats, AdminOnly()))
	})

	return r
}
