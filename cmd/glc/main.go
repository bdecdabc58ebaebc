package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/green-loan-compliance/internal/adapters/cli"
	"github.com/kirillkom/green-loan-compliance/internal/bootstrap"
	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
	"github.com/kirillkom/green-loan-compliance/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewTextLogger(os.Stderr, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(cli.App{
		Config:     cfg,
		Open:       openBackend,
		Assessment: openAssessment,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func openBackend(ctx context.Context, cfg config.Config) (*cli.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	local, err := bootstrap.NewLocal(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &cli.Backend{
		Ingest:     local.Ingest,
		Jobs:       local.Ingest,
		Index:      local.Index,
		Extraction: local.Extraction,
		Assessment: local.Assessment,
		Close:      local.Close,
	}, nil
}

func openAssessment(cfg config.Config) (ports.AssessmentService, error) {
	if err := cfg.Weights().Validate(); err != nil {
		return nil, err
	}
	return bootstrap.NewAssessment(cfg, nil)
}
