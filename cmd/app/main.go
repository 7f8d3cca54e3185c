// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-paywall/internal/config"
	"content-paywall/internal/infra/api"
	"content-paywall/internal/infra/catalog"
	pg "content-paywall/internal/infra/db/postgres"
	"content-paywall/internal/infra/identity"
	"content-paywall/internal/infra/logging"
	"content-paywall/internal/infra/metrics"
	red "content-paywall/internal/infra/redis"
	"content-paywall/internal/infra/sched"
	"content-paywall/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	ledgerRepo := pg.NewLedgerRepo(pool)
	ownedRepo := pg.NewOwnedContentRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- External collaborators ----
	catalogClient := catalog.NewHTTPClient(&cfg.Catalog)
	catalogLookup := catalog.NewCachedLookup(catalogClient, redisClient, cfg.Catalog.CacheTTL.Std())
	verifier := identity.NewJWTVerifier(&cfg.Identity)

	// ---- Use cases ----
	paymentUC := usecase.NewPaymentUseCase(ledgerRepo, ownedRepo, catalogLookup, locker, tm, cfg.Entitlement.Period.Std(), logger)
	entitlementUC := usecase.NewEntitlementUseCase(catalogLookup, ledgerRepo, logger)
	accessUC := usecase.NewAccessUseCase(entitlementUC, ownedRepo, logger)
	statsUC := usecase.NewStatsUseCase(ledgerRepo, logger)

	// ---- HTTP API ----
	srv := api.NewServer(paymentUC, accessUC, statsUC, verifier, cfg.API.RequestTimeout.Std(), logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.API.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Pending sweeper ----
	sweeper := sched.NewPendingSweeper(paymentUC, cfg.Entitlement.SweepInterval.Std(), cfg.Entitlement.PendingTimeout.Std(), logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- DB pool gauge ----
	go func() {
		t := time.NewTicker(15 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
