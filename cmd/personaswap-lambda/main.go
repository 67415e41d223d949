//go:build lambda.norpc

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/apresai/personaswap/internal/config"
	"github.com/apresai/personaswap/internal/embellish"
	"github.com/apresai/personaswap/internal/history"
	"github.com/apresai/personaswap/internal/httpapi"
	"github.com/apresai/personaswap/internal/lambdaurl"
	"github.com/apresai/personaswap/internal/mcpserver"
	"github.com/apresai/personaswap/internal/observability"
	"github.com/apresai/personaswap/internal/persona"
	"github.com/apresai/personaswap/internal/transformer"
)

var version = "dev"

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("PERSONASWAP_CONFIG"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.InitLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	var opts []lambdaurl.Option
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing.ServiceName, version, cfg.Server.Env)
		if err != nil {
			logger.Warn("Failed to init tracer, continuing without tracing", "error", err)
		} else {
			opts = append(opts, lambdaurl.AfterEach(func(ctx context.Context) {
				if err := tp.ForceFlush(ctx); err != nil {
					logger.Warn("Failed to flush spans", "error", err)
				}
			}))
			go shutdownOnSignal(tp.Shutdown, logger)
		}
	}

	// A memory store only lives as long as one warm container.
	store, err := history.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open history store", "backend", cfg.History.Backend, "error", err)
		os.Exit(1)
	}

	sel := embellish.Global()
	if cfg.Engine.Seed != 0 {
		sel = embellish.NewSeeded(cfg.Engine.Seed)
	}
	svc := transformer.New(persona.Default(sel), store, logger)

	srv := httpapi.New(httpapi.Options{
		Service: svc,
		Config:  cfg,
		Logger:  logger,
		MCP:     mcpserver.New(svc, version, logger).HTTPHandler(),
	})

	logger.Info("PersonaSwap Lambda ready", "backend", cfg.History.Backend, "env", cfg.Server.Env)
	lambda.Start(lambdaurl.Wrap(srv, opts...))
}

// shutdownOnSignal runs shutdown when Lambda sends SIGTERM ahead of
// recycling the execution environment.
func shutdownOnSignal(shutdown func(context.Context) error, logger *slog.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM)
	<-sigs

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("Tracer shutdown error", "error", err)
	}
	os.Exit(0)
}
