// cmd/vera-api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vera-api/internal/analyzer"
	"vera-api/internal/analyzer/evidence"
	"vera-api/internal/common/cache"
	"vera-api/internal/common/config"
	"vera-api/internal/common/logger"
	"vera-api/internal/common/observability"
	"vera-api/internal/server"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting vera-api...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// switch to the configured level/format once config is available
	log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Optional result cache ---
	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		resultCache, err = cache.New(cfg.Cache)
		if err != nil {
			zapLog.Fatal("cache init failed", zap.Error(err))
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := resultCache.Ping(pingCtx); err != nil {
			// analysis works without the cache, so degrade instead of dying
			zapLog.Warn("result cache unreachable, continuing without it", zap.Error(err))
			resultCache.Close()
			resultCache = nil
		}
		cancel()
		defer func() {
			if resultCache != nil {
				resultCache.Close()
			}
		}()
	}

	// --- Analysis engine ---
	engineOpts := []analyzer.Option{}
	if cfg.Features.ExternalEvidence {
		engineOpts = append(engineOpts, analyzer.WithEvidence(evidence.New(cfg.Evidence, log)))
	}
	engine := analyzer.NewEngine(cfg, engineOpts...)

	srv := server.New(cfg, log, engine, resultCache, obs)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening",
			zap.String("address", cfg.Server.Address),
			zap.String("version", analyzer.APIVersion),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
