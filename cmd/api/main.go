package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/slot-scheduler/internal/db"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
	"github.com/BruksfildServices01/slot-scheduler/internal/routes"
	"github.com/BruksfildServices01/slot-scheduler/internal/telemetry"
	"github.com/BruksfildServices01/slot-scheduler/internal/worker"
)

const serviceName = "slot-scheduler"

func main() {

	cfg := config.Load()

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// TELEMETRY
	// ======================================================
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
	})
	if err != nil {
		logger.Fatal("telemetry setup failed", zap.Error(err))
	}

	// ======================================================
	// DATABASE
	// ======================================================
	if cfg.MigrateOnStart {
		if err := dbpkg.MigrateUp(cfg.DBUrl); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		logger.Info("migrations applied")
	}

	dbs, err := dbpkg.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer dbs.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()

	if err := rdb.Ping(ctx).Err(); err != nil {
		// The config cache falls through to postgres.
		logger.Warn("redis unavailable at startup", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	app := routes.RegisterRoutes(r, routes.Infra{
		Config:   cfg,
		DB:       dbs,
		Redis:    rdb,
		Registry: registry,
		Logger:   logger,
	})
	defer app.Audit.Close()

	// ======================================================
	// WORKER
	// ======================================================
	w := worker.New(worker.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		Cron:          cfg.DailyGenerationCron,
	}, app.Daily, logger)

	if err := w.Start(); err != nil {
		logger.Error("worker failed to start, daily generation disabled", zap.Error(err))
	} else {
		defer w.Shutdown()
	}

	go pruneLimiter(ctx, app)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
}

func pruneLimiter(ctx context.Context, app *routes.App) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			app.RateLimiter.Prune(10 * time.Minute)
		}
	}
}
