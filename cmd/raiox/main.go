package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"raiox/internal/backend"
	"raiox/internal/config"
	apphttp "raiox/internal/http"
	"raiox/internal/kv"
	"raiox/internal/log"
	"raiox/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The snapshot backend is best-effort: when it cannot be constructed the
	// dashboard still runs on the seeded in-memory list.
	var (
		blob    kv.Store
		cleanup backend.CleanupFunc
	)
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(backend.Config{
		Type:         backend.Type(cfg.SnapshotBackend),
		DataDir:      cfg.DataDir,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Warn("Snapshot backend unavailable, running without persistence",
			log.FieldError, err, "backend", cfg.SnapshotBackend)
	} else {
		blob = result.Store
		cleanup = result.Cleanup
	}

	st := store.New(blob, store.WithKey(cfg.SnapshotKey))
	st.Load(ctx)

	srv := apphttp.NewServer(":"+cfg.Port, st, logger.WithComponent(log.ComponentHTTP))
	srv.ReadTimeout = cfg.ReadTimeout
	srv.WriteTimeout = cfg.WriteTimeout
	srv.IdleTimeout = cfg.IdleTimeout
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting raiox server",
			"port", cfg.Port,
			"backend", cfg.SnapshotBackend,
			log.FieldSnapshot, cfg.SnapshotKey)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	if cleanup != nil {
		if err := cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}
	logger.Info("Server stopped gracefully")
}
