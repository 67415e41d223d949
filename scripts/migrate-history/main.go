// Command migrate-history copies transformation history between backends,
// for example from Redis into DynamoDB when moving a deployment to Lambda.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/apresai/personaswap/internal/config"
	"github.com/apresai/personaswap/internal/history"
)

func main() {
	var (
		from      = flag.String("from", config.BackendRedis, "Source backend: memory, redis, dynamodb")
		to        = flag.String("to", config.BackendDynamoDB, "Destination backend: memory, redis, dynamodb")
		configArg = flag.String("config", "", "YAML config file for addresses, table and capacity")
		limit     = flag.Int("limit", 0, "Records to copy (default: history capacity)")
		dryRun    = flag.Bool("dry-run", false, "Read and count but don't write")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg, err := config.Load(*configArg)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *limit <= 0 {
		*limit = cfg.History.Capacity
	}

	src, err := openBackend(ctx, cfg, *from)
	if err != nil {
		slog.Error("Failed to open source", "backend", *from, "error", err)
		os.Exit(1)
	}
	defer src.Close()

	dst, err := openBackend(ctx, cfg, *to)
	if err != nil {
		slog.Error("Failed to open destination", "backend", *to, "error", err)
		os.Exit(1)
	}
	defer dst.Close()

	if *dryRun {
		slog.Info("DRY RUN MODE - no writes will be performed")
	}
	slog.Info("Starting migration", "from", *from, "to", *to, "limit", *limit)

	n, err := history.Copy(ctx, dst, src, *limit, *dryRun)
	if err != nil {
		slog.Error("Migration failed", "copied", n, "error", err)
		os.Exit(1)
	}
	slog.Info("Migration complete", "records", n, "dry_run", *dryRun)
}

func openBackend(ctx context.Context, cfg config.Config, backend string) (history.Store, error) {
	cfg.History.Backend = backend
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return history.Open(ctx, cfg)
}
