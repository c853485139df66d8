package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tessellate-io/slackwise/internal/blobstore"
	gcsblob "github.com/tessellate-io/slackwise/internal/blobstore/gcs"
	memblob "github.com/tessellate-io/slackwise/internal/blobstore/memory"
	"github.com/tessellate-io/slackwise/internal/config"
	"github.com/tessellate-io/slackwise/internal/configure"
	"github.com/tessellate-io/slackwise/internal/events"
	"github.com/tessellate-io/slackwise/internal/i18n"
	installsqlite "github.com/tessellate-io/slackwise/internal/installstore/sqlite"
	"github.com/tessellate-io/slackwise/internal/server"
	"github.com/tessellate-io/slackwise/internal/telemetry"
	"github.com/tessellate-io/slackwise/internal/tenantconfig"
)

func main() {
	// Optional .env for local development; ignore absence.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("SLACKWISE_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer("slackwise", logger)
	if err != nil {
		logger.Error("failed to init telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var blobs blobstore.Store
	if cfg.Storage.Bucket != "" {
		gcsStore, err := gcsblob.New(ctx, cfg.Storage.Bucket)
		if err != nil {
			logger.Error("failed to create GCS store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer gcsStore.Close()
		blobs = gcsStore
	} else {
		logger.Warn("no storage bucket configured, using in-memory store")
		blobs = memblob.New()
	}
	configs := tenantconfig.NewStore(blobs, logger)

	installs, err := installsqlite.New(cfg.InstallStore.Path)
	if err != nil {
		logger.Error("failed to open install store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer installs.Close()

	prober := configure.NewOpenAIProber(cfg.OpenAI.APIBase, cfg.OpenAI.OrgID)
	translator := i18n.NewOpenAITranslator(cfg.OpenAI.APIBase, cfg.OpenAI.OrgID, cfg.OpenAI.Model, logger)
	flow := configure.NewFlow(configs, prober, translator, cfg.OpenAI.BaselineModel, logger)

	eventHandler := events.NewHandler(installs, configs, logger)
	configureHandler := configure.NewHandler(flow, logger)

	srv := server.New(cfg.Server.Port, logger)
	enrich := server.TenantConfigMiddleware(configs, cfg.OpenAI, logger, server.ResolveSlackRequest)
	srv.Router.With(enrich).Post("/slack/events", eventHandler.ServeHTTP)
	srv.Router.With(enrich).Post("/slack/interactions", configureHandler.ServeHTTP)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	// Let already-acknowledged credential submissions finish persisting.
	flow.Drain()

	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
