package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/green-loan-compliance/internal/adapters/http"
	"github.com/kirillkom/green-loan-compliance/internal/bootstrap"
	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/observability/logging"
	"github.com/kirillkom/green-loan-compliance/internal/observability/metrics"
)

const serviceName = "api"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		slog.Error("config_invalid", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := httpadapter.LoadOpenAPI(ctx); err != nil {
		slog.Error("openapi_invalid", "error", err.Error())
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, metrics.NewResilienceMetrics(serviceName, httpMetrics.Registerer()))
	if err != nil {
		slog.Error("bootstrap_failed", "error", err.Error())
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Ingest:     app.Ingest,
		Jobs:       app.Ingest,
		Index:      app.Index,
		Extraction: app.Extraction,
		Assessment: app.Assessment,
	}, httpMetrics)
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.APIRequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "model_provider", cfg.ModelProvider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err.Error())
	}
}
