package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	appfulfillment "github.com/storefront/backend/internal/application/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/bootstrap"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/notification"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// The standalone worker consumes the shared Redis queue and publishes order
// events through the Redis relay, so API processes can push them to their
// own event stream clients.
func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	// A separate process can only share a Redis queue
	cfg.Queue.Driver = queue.DriverRedis
	cfg.Queue.Fallback = false

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Init(ctx, cfg, bootstrap.Options{Component: "worker"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close(ctx)
	log := rt.Logger

	if err := run(ctx, rt); err != nil {
		log.Error("Worker exited with error", zap.Error(err))
		rt.Close(ctx)
		os.Exit(1)
	}
	log.Info("Worker exited gracefully")
}

func run(ctx context.Context, rt *bootstrap.Runtime) error {
	cfg, log := rt.Config, rt.Logger

	jobQueue, _, err := queue.New(ctx, cfg.Queue, rt.Redis, log)
	if err != nil {
		return fmt.Errorf("open job queue: %w", err)
	}
	defer jobQueue.Close()

	idempotency, err := cache.NewIdempotencyStore(ctx, rt.Redis, false, log)
	if err != nil {
		return fmt.Errorf("idempotency store: %w", err)
	}
	defer idempotency.Close()

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewOrderAuditHandler(log))
	if orderMetrics, err := telemetry.NewOrderMetrics(rt.Meter(), log); err != nil {
		log.Warn("Failed to create order metrics", zap.Error(err))
	} else {
		eventBus.Subscribe(orderMetrics)
	}

	rt.RegisterGauges(jobQueue.Len, nil)

	worker := appfulfillment.NewWorker(appfulfillment.WorkerConfig{
		Queue:       jobQueue,
		Orders:      rt.Orders,
		Products:    rt.Products,
		Fulfiller:   appfulfillment.NewDelayFulfiller(cfg.Worker.DelayBase, cfg.Worker.DelayJitter),
		Broadcaster: notification.NewRedisRelay(rt.Redis, cfg.Notification.Channel, log),
		Logger:      log,
		Idempotency: idempotency,
		IdempotencyConfig: shared.IdempotencyConfig{
			Enabled: true,
			TTL:     cfg.Worker.IdempotencyTTL,
		},
	})
	worker.SetEventPublisher(eventBus)

	if err := worker.Start(ctx); err != nil {
		return err
	}
	log.Info("Worker consuming", zap.String("queue", cfg.Queue.Name))

	<-ctx.Done()
	log.Info("Shutting down worker...")

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.StopTimeout)
	defer cancel()
	return worker.Stop(stopCtx)
}
