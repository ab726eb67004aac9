package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seoscope/seo-audit/internal/audit"
	"github.com/seoscope/seo-audit/internal/auditor"
	"github.com/seoscope/seo-audit/internal/platform/config"
	"github.com/seoscope/seo-audit/internal/platform/logger"
	"github.com/seoscope/seo-audit/internal/serp"
	"github.com/seoscope/seo-audit/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	fetcher := audit.NewHTTPClient(cfg.UserAgent)
	prober := audit.NewProber(cfg.ProbeConcurrency, cfg.UserAgent)
	engine := audit.NewEngine(fetcher, prober, cfg.KeywordLimit, log)
	serpResolver := serp.NewResolver(fetcher, log)
	stores := store.NewStores()

	service := auditor.NewService(engine, fetcher, prober, serpResolver, stores, cfg.KeywordLimit, log)
	transport := auditor.NewTransport(service, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           transport.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
