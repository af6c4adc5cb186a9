package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"seace-engine/internal/events"
	"seace-engine/internal/httpapi"
	"seace-engine/internal/logger"
	"seace-engine/internal/metrics"
	"seace-engine/internal/scheduler"
	"seace-engine/internal/scrape"
	"seace-engine/internal/secrets"
	"seace-engine/internal/store"
)

const (
	runRetention    = 30 * 24 * time.Hour
	cleanupInterval = 6 * time.Hour
	shutdownGrace   = 30 * time.Second
)

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), f)
		},
	}
}

func serve(ctx context.Context, f *rootFlags) error {
	cfg, cfgPath, err := f.loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if n, err := store.MarkInterrupted(ctx, db.Pool); err != nil {
		log.Warn("mark interrupted runs", logger.Err(err))
	} else if n > 0 {
		log.Info("marked interrupted runs", logger.Int64("count", n))
	}

	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hub := events.NewHub()
	runner := &scrape.Runner{Scraper: eng.scraper, DB: db.Pool, Hub: hub, Metrics: m, Log: log}

	token, err := secrets.APIToken(secrets.OS, cfg.Auth.KeyringAccount, cfg.Auth.TokenEnv)
	if errors.Is(err, secrets.ErrNoToken) {
		log.Warn("no api token configured; POST /scrape is open")
	} else if err != nil {
		return err
	}

	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	handler := httpapi.NewHandler(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Log:         log,
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		Sessions:    semaphore.NewWeighted(int64(cfg.App.MaxSessions)),
		Metrics:     m,
		Token:       token,
		Crawl:       runner.Run,
		Status:      runner.Status,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("engine listening", logger.String("addr", srv.Addr), logger.String("config", cfgPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		scheduler.Every(gctx, cleanupInterval, "cleanup-runs", log, func(ctx context.Context) error {
			n, err := store.CleanupOldRuns(ctx, db.Pool, runRetention)
			if n > 0 {
				log.Info("pruned old runs", logger.Int64("deleted", n))
			}
			return err
		})
		return nil
	})
	return g.Wait()
}
