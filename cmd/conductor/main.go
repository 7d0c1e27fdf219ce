// Package main runs the conductor HTTP API.
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

	"github.com/nucleus/cdc-conductor/internal/config"
	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/gateway"
	"github.com/nucleus/cdc-conductor/internal/metrics"
	"github.com/nucleus/cdc-conductor/internal/operator"
	"github.com/nucleus/cdc-conductor/internal/operator/kube"
	"github.com/nucleus/cdc-conductor/internal/operator/proxy"
	"github.com/nucleus/cdc-conductor/internal/storage"

	// Import connection package to register all validators
	_ "github.com/nucleus/cdc-conductor/pkg/connection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cfg.Preflight.Enabled {
		go runPreflight(cfg)
	}

	target, err := kube.NewFromConfig(cfg.Kubernetes.Kubeconfig, cfg.Kubernetes.Namespace)
	if err != nil {
		log.Fatalf("kubernetes client: %v", err)
	}
	signals := proxy.New(proxy.Config{
		URLTemplate: cfg.Signals.URLTemplate,
		Namespace:   cfg.Kubernetes.Namespace,
		Timeout:     cfg.SignalTimeout(),
		RateLimit:   cfg.Signals.RateLimit,
		RateBurst:   cfg.Signals.RateBurst,
	})

	recorder := metrics.New()
	controller := operator.NewController(
		operator.NewCompiler(cfg.Storage.Offset, cfg.Storage.SchemaHistory),
		target,
		signals,
		operator.WithMetrics(recorder),
	)
	svc := gateway.NewService(controller, connection.DefaultRegistry(), cfg.DestinationTimeout, recorder)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[conductor] listening on %s (namespace %s)", cfg.Addr(), target.Namespace())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[conductor] shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[conductor] forced shutdown: %v", err)
	}
}

// runPreflight checks the global storage backends once. Failures are only
// logged.
func runPreflight(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.PreflightTimeout())
	defer cancel()

	_, err := storage.Preflight(ctx, cfg.PreflightTimeout(),
		storage.NewOffsetResolver(cfg.Storage.Offset),
		storage.NewSchemaHistoryResolver(cfg.Storage.SchemaHistory),
	)
	if err != nil {
		log.Printf("[conductor] storage preflight failed: %v", err)
	}
}
