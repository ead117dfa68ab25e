// @title Care Monitor API
// @version 1.0
// @description Recordatorios de medicación y respuesta a emergencias.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"care-monitor/internal/adapters/gateways/console"
	"care-monitor/internal/adapters/gateways/hostbridge"
	"care-monitor/internal/adapters/storage/memory"
	pg "care-monitor/internal/adapters/storage/postgres"
	rds "care-monitor/internal/adapters/storage/redis"
	"care-monitor/internal/platform/config"
	"care-monitor/internal/platform/logger"
	"care-monitor/internal/platform/metrics"
	"care-monitor/internal/ports/gateways"
	"care-monitor/internal/ports/store"
	"care-monitor/internal/router"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "care-monitor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore.Close() }()

	gw, err := openGateways(cfg.Host, log)
	if err != nil {
		return err
	}

	app := router.NewRouter(router.Options{
		Store:           kv,
		Gateways:        gw,
		Logger:          log,
		Metrics:         metrics.New(),
		TickInterval:    cfg.Adherence.TickInterval,
		GraceWindow:     cfg.Adherence.GraceWindow,
		Rehearsal:       cfg.Emergency.Rehearsal,
		LocationTimeout: cfg.Emergency.LocationTimeout,
		HoldDuration:    cfg.Emergency.HoldDuration,
		IncidentLimit:   cfg.Emergency.IncidentLimit,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": addr, "storage": cfg.Storage.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return app.Scheduler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", nil)
		app.Orchestrator.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (store.Store, io.Closer, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		log.Info("store: postgres", nil)
		return pg.NewKVStore(db), db, nil

	case "redis":
		s, err := rds.Open(ctx, rds.Config{
			Addr:   cfg.RedisAddr,
			DB:     cfg.RedisDB,
			Prefix: cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		log.Info("store: redis", map[string]any{"addr": cfg.RedisAddr})
		return s, s, nil

	default:
		log.Info("store: memory", map[string]any{"quota_bytes": cfg.QuotaBytes})
		return memory.NewStore(cfg.QuotaBytes), closeFunc(func() error { return nil }), nil
	}
}

// openGateways usa el puente HTTP de la plataforma si está configurado; si no,
// gateways de consola (sólo logs).
func openGateways(cfg config.HostConfig, log logger.Logger) (gateways.Set, error) {
	if cfg.BaseURL == "" {
		log.Warn("host bridge not configured, using console gateways", nil)
		return console.New(log), nil
	}
	b, err := hostbridge.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return gateways.Set{}, fmt.Errorf("host bridge: %w", err)
	}
	log.Info("host bridge", map[string]any{"base_url": cfg.BaseURL})
	return b.Gateways(), nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
