package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	phasehandler "precato/internal/phase/handler"
	phasemetrics "precato/internal/phase/metrics"
	phaseservice "precato/internal/phase/service"
	phasestore "precato/internal/phase/store"
	"precato/internal/platform/config"
	"precato/internal/platform/httpserver"
	"precato/internal/platform/logger"
	precatoriohandler "precato/internal/precatorio/handler"
	precatoriometrics "precato/internal/precatorio/metrics"
	precatorioservice "precato/internal/precatorio/service"
	precatoriostore "precato/internal/precatorio/store"
	"precato/pkg/platform/tx"
)

// main wires the stores, services and HTTP surface, then runs the server
// until interrupted. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var (
		phases     phaseservice.PhaseStore
		feePhases  phaseservice.FeePhaseStore
		records    precatorioservice.Store
		usage      phaseservice.UsageCounter
		txRunner   tx.Runner
		db         *sql.DB
		storeLabel string
	)

	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		pg := precatoriostore.NewPostgres(db)
		phases = phasestore.NewPostgres(db)
		feePhases = phasestore.NewFeePhasePostgres(db)
		records = pg
		usage = pg
		txRunner = tx.NewSQLRunner(db)
		storeLabel = "postgres"
	} else {
		mem := precatoriostore.NewInMemory()
		phases = phasestore.NewInMemory()
		feePhases = phasestore.NewFeePhaseInMemory()
		records = mem
		usage = mem
		txRunner = tx.NewMemoryRunner()
		storeLabel = "memory"
	}

	phaseSvc := phaseservice.New(phases, feePhases, usage,
		phaseservice.WithLogger(log),
		phaseservice.WithMetrics(phasemetrics.New()),
		phaseservice.WithTxRunner(txRunner),
	)
	precatorioSvc := precatorioservice.New(records, phaseSvc,
		precatorioservice.WithLogger(log),
		precatorioservice.WithMetrics(precatoriometrics.New()),
		precatorioservice.WithTxRunner(txRunner),
	)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	phasehandler.New(phaseSvc, log).Register(router)
	precatoriohandler.New(precatorioSvc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting precato", "addr", cfg.Addr, "store", storeLabel)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if db != nil {
		_ = db.Close()
	}
}
