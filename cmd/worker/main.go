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

	"github.com/kirillkom/green-loan-compliance/internal/bootstrap"
	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/observability/logging"
	"github.com/kirillkom/green-loan-compliance/internal/observability/metrics"
)

const (
	serviceName    = "worker"
	processTimeout = 10 * time.Minute
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		slog.Error("config_invalid", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, metrics.NewResilienceMetrics(serviceName, workerMetrics.Registerer()))
	if err != nil {
		slog.Error("bootstrap_failed", "error", err.Error())
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err.Error())
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Queue.SubscribeJobSubmitted(ctx, func(handlerCtx context.Context, event domain.JobEvent) error {
		if !event.SubmittedAt.IsZero() {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(event.SubmittedAt))
		}
		processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
		defer cancel()

		workerMetrics.StartJob()
		started := time.Now()
		err := app.Process.ProcessJob(processCtx, event)
		workerMetrics.FinishJob(serviceName, time.Since(started), err)
		if err != nil {
			return err
		}
		slog.Info("job_processed", "job_id", event.JobID, "loan_id", event.LoanID, "duration_ms", time.Since(started).Milliseconds())
		return nil
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err.Error())
		os.Exit(1)
	}
}
