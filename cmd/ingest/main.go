package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"basegraph.app/siemd/common/id"
	"basegraph.app/siemd/common/logger"
	"basegraph.app/siemd/common/otel"
	"basegraph.app/siemd/core/config"
	"basegraph.app/siemd/core/db"
	"basegraph.app/siemd/internal/ingest"
	"basegraph.app/siemd/internal/lock"
	"basegraph.app/siemd/internal/service"
)

// ingest runs a single scan pass over the log dir and prints the result as
// JSON. It exits non-zero when the pass could not run or a file failed.
func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.ServiceTypeIngest)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		return 1
	}

	telemetry, err := otel.Setup(ctx, cfg, config.ServiceTypeIngest)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}()

	logger.Setup(cfg)

	// Use a different node ID than the server
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		return 1
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		return 1
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to apply migrations", "error", err)
		return 1
	}

	locker, closeLocker, err := lock.Open(ctx, cfg.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up file locks", "error", err)
		return 1
	}
	defer closeLocker()

	root, err := ingest.CanonicalRoot(cfg.Ingest.LogDir)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve log dir", "error", err, "log_dir", cfg.Ingest.LogDir)
		return 1
	}

	normalizer, err := ingest.NewNormalizer(root, cfg.Limits)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create normalizer", "error", err)
		return 1
	}

	ingestService := service.NewIngestService(
		service.NewTxRunner(database),
		normalizer,
		locker,
		nil,
		service.IngestServiceConfig{Extension: cfg.Ingest.Extension},
	)

	slog.InfoContext(ctx, "siemd one-shot ingest starting", "log_dir", root)
	result, err := ingestService.IngestOnce(ctx, root, cfg.Ingest.BatchSize, cfg.Ingest.MaxBatchesPerFile)
	if err != nil {
		slog.ErrorContext(ctx, "scan pass failed", "error", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		slog.ErrorContext(ctx, "failed to write result", "error", err)
		return 1
	}

	if result.FilesFailed > 0 {
		return 1
	}
	return 0
}
