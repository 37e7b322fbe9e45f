package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/KimMachineGun/automemlimit"
	_ "go.uber.org/automaxprocs"

	"github.com/go-redis/redis/v8"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/queuescale/queuescale-agent/internal/autoscaler"
	"github.com/queuescale/queuescale-agent/internal/config"
	"github.com/queuescale/queuescale-agent/internal/errors"
	"github.com/queuescale/queuescale-agent/internal/health"
	"github.com/queuescale/queuescale-agent/internal/observability"
	"github.com/queuescale/queuescale-agent/internal/orchestrator"
	"github.com/queuescale/queuescale-agent/internal/queue"
	"github.com/queuescale/queuescale-agent/internal/reconciler"
	"github.com/queuescale/queuescale-agent/internal/scaling"
	"github.com/queuescale/queuescale-agent/internal/store"
)

func main() {
	// 1. Load and validate config.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// 2. Parse scaling groups. A bad resource kind is a configuration-class
	// error and must stop the process before any reconciliation runs.
	groups, err := scaling.ParseGroups(cfg.ScalingGroups, cfg.RecordDelim, cfg.FieldDelim)
	if err != nil {
		slog.Error("invalid scaling group configuration", "error", err)
		os.Exit(1)
	}
	if len(groups) == 0 {
		slog.Error("no usable scaling groups configured", "raw", cfg.ScalingGroups)
		os.Exit(1)
	}

	// 3. Create context with signal handling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		slog.Info("shutdown signal received", "signal", sig)
		cancel()
	}()

	slog.Info("queuescale-agent starting",
		"instance_id", cfg.InstanceID,
		"redis_addr", cfg.RedisAddr,
		"groups", len(groups),
		"poll_interval", cfg.PollInterval,
	)

	// 4. Create shared infrastructure.
	metrics := observability.NewMetrics()
	errCollector := errors.NewErrorCollector(errors.RealClock{})
	sm := autoscaler.NewStateMachine(errors.RealClock{})

	// 5. Build the resilient store client.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Startup continues; the retry wrapper and pass-level backoff
		// handle a store that comes up later.
		slog.Warn("redis not reachable at startup", "addr", cfg.RedisAddr, "error", err)
	}
	storeClient := store.NewClient(rdb, store.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.RetryBackoff,
	}, metrics)

	// 6. Build the Kubernetes client and reconciler.
	kubeClient := kubernetes.NewForConfigOrDie(buildKubeConfig())
	orchClient := orchestrator.NewClient(kubeClient)

	tallier := queue.NewTallier(storeClient, cfg.ActionableStatus, cfg.QueueMatch, metrics)
	rec := reconciler.New(orchClient, orchClient, groups, metrics, errCollector)
	scaler := autoscaler.New(&cfg, tallier, rec, sm, errCollector, metrics)

	// 7. Start health server.
	healthSrv := health.NewServer(cfg.HealthPort, metrics, scaler, scaler, errCollector, cfg.DebugEndpoints)
	if err := healthSrv.Start(); err != nil {
		slog.Error("failed to start health server", "error", err)
		os.Exit(1)
	}

	// 8. Run the poll loop (blocks until the context is canceled).
	if err := scaler.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("autoscaler exited with error", "error", err)
	}

	// 9. Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Stop(shutdownCtx); err != nil {
		slog.Error("health server shutdown error", "error", err)
	}
	if err := rdb.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}

	slog.Info("queuescale-agent stopped")
}

// buildKubeConfig creates a Kubernetes REST config.
// It tries in-cluster config first, then falls back to kubeconfig file
// (from $KUBECONFIG or the default ~/.kube/config).
func buildKubeConfig() *rest.Config {
	cfg, err := rest.InClusterConfig()
	if err == nil {
		slog.Info("using in-cluster kubernetes config")
		return cfg
	}

	kubeconfig := os.Getenv("KUBECONFIG")
	if kubeconfig == "" {
		kubeconfig = clientcmd.RecommendedHomeFile
	}

	cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		slog.Error("failed to build kubernetes config", "error", err)
		os.Exit(1)
	}
	slog.Info("using kubeconfig file", "path", kubeconfig)
	return cfg
}
