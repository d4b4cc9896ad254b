package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stablepay/gateway/cmd/stablepayd/routing"
	"github.com/stablepay/gateway/pkg/app/jobs"
	"github.com/stablepay/gateway/pkg/app/monitor"
	common "github.com/stablepay/gateway/pkg/domain"
	ofacServices "github.com/stablepay/gateway/pkg/domain/ofac/services"
	ioc "github.com/stablepay/gateway/pkg/infra/ioc"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	builder := ioc.NewContainerBuilder()
	c := builder.
		WithEnvFile().
		WithStorage().
		WithCrypto().
		WithOfac().
		WithWebhooks().
		WithSubscriptions().
		WithChainAdapters().
		WithPaymentsAndMonitor().
		WithJobs().
		Build()

	var cfg common.Config
	if err := c.Resolve(&cfg); err != nil {
		slog.ErrorContext(ctx, "failed to resolve config", "error", err)
		panic(err)
	}

	var paymentMonitor *monitor.Monitor
	if err := c.Resolve(&paymentMonitor); err != nil {
		slog.ErrorContext(ctx, "failed to resolve Monitor", "error", err)
		panic(err)
	}
	paymentMonitor.StartMonitoring(ctx)
	slog.InfoContext(ctx, "payment monitor started")

	var ofacService *ofacServices.Service
	if err := c.Resolve(&ofacService); err != nil {
		slog.ErrorContext(ctx, "failed to resolve ofac Service", "error", err)
		panic(err)
	}
	if err := ofacService.StartupRefreshIfEmpty(ctx); err != nil {
		slog.WarnContext(ctx, "ofac startup refresh failed, will retry on the daily schedule", "error", err)
	}

	var expirePayments *jobs.ExpirePaymentsJob
	if err := c.Resolve(&expirePayments); err != nil {
		slog.ErrorContext(ctx, "failed to resolve ExpirePaymentsJob", "error", err)
		panic(err)
	}
	expirePayments.Start(ctx)

	var expireSubscriptions *jobs.ExpireSubscriptionsJob
	if err := c.Resolve(&expireSubscriptions); err != nil {
		slog.ErrorContext(ctx, "failed to resolve ExpireSubscriptionsJob", "error", err)
		panic(err)
	}
	expireSubscriptions.Start(ctx)

	var webhookRetry *jobs.WebhookRetryJob
	if err := c.Resolve(&webhookRetry); err != nil {
		slog.ErrorContext(ctx, "failed to resolve WebhookRetryJob", "error", err)
		panic(err)
	}
	webhookRetry.Start(ctx)

	var ofacRefresh *jobs.OfacRefreshJob
	if err := c.Resolve(&ofacRefresh); err != nil {
		slog.ErrorContext(ctx, "failed to resolve OfacRefreshJob", "error", err)
		panic(err)
	}
	ofacRefresh.Start(ctx)

	slog.InfoContext(ctx, "background jobs started")

	router := routing.NewRouter(ctx, c)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-shutdownChan
		slog.InfoContext(ctx, "received shutdown signal", "signal", sig.String())

		time.Sleep(5 * time.Second)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		paymentMonitor.StopMonitoring()
		expirePayments.Stop()
		expireSubscriptions.Stop()
		webhookRetry.Stop()
		ofacRefresh.Stop()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "server shutdown error", "error", err)
		}

		cancel()
		slog.InfoContext(ctx, "shutdown complete")
	}()

	slog.InfoContext(ctx, "starting stablepayd", "port", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.ErrorContext(ctx, "server error", "error", err)
		os.Exit(1)
	}
}
