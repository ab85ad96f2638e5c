package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	appfulfillment "github.com/storefront/backend/internal/application/fulfillment"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/bootstrap"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/notification"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/storefront/backend/docs"
)

//	@title			Storefront Backend API
//	@version		1.0
//	@description	Product catalog, order submission with background fulfillment, and real-time order events

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath	/api

func main() {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	rt, err := bootstrap.Init(rootCtx, cfg, bootstrap.Options{Component: "server"})
	if err != nil {
		panic("Failed to initialize: " + err.Error())
	}
	defer rt.Close(rootCtx)
	log := rt.Logger

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	jobQueue, driver, err := queue.New(rootCtx, cfg.Queue, rt.Redis, log)
	if err != nil {
		log.Fatal("Failed to open job queue", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			log.Error("Error closing job queue", zap.Error(err))
		}
	}()
	log.Info("Job queue ready", zap.String("driver", driver), zap.String("name", cfg.Queue.Name))

	// Real-time notifications
	hub := notification.NewHub(
		notification.WithHeartbeat(cfg.HTTP.SSEHeartbeat),
		notification.WithMaxClients(cfg.HTTP.SSEMaxClients),
		notification.WithLogger(log),
	)
	hub.Start(rootCtx)
	defer hub.Stop()

	var broadcaster fulfillment.Broadcaster = hub
	if cfg.Notification.Relay == config.RelayRedis {
		if rt.RedisUp {
			relay := notification.NewRedisRelay(rt.Redis, cfg.Notification.Channel, log)
			broadcaster = relay
			go func() {
				if err := relay.Run(rootCtx, hub); err != nil {
					log.Error("Notification relay stopped", zap.Error(err))
				}
			}()
		} else {
			log.Warn("Redis unavailable, order events reach only clients of this process")
		}
	}

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewOrderAuditHandler(log))
	if orderMetrics, err := telemetry.NewOrderMetrics(rt.Meter(), log); err != nil {
		log.Warn("Failed to create order metrics", zap.Error(err))
	} else {
		eventBus.Subscribe(orderMetrics)
	}
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	rt.RegisterGauges(jobQueue.Len, func(context.Context) (int64, error) {
		return int64(hub.ClientCount()), nil
	})

	// Application services
	productService := appcatalog.NewProductService(rt.Products)
	orderService := apptrade.NewOrderService(rt.Products, rt.Orders, jobQueue, log)
	orderService.SetEventPublisher(eventBus)

	// A memory queue is only visible to this process
	embedded := cfg.Worker.Embedded
	if !embedded && driver == queue.DriverMemory {
		log.Warn("In-memory job queue in use, running the fulfillment worker in-process")
		embedded = true
	}

	var worker *appfulfillment.Worker
	if embedded {
		idempotency, err := cache.NewIdempotencyStore(rootCtx, rt.Redis, cfg.Queue.Fallback, log)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer idempotency.Close()

		worker = appfulfillment.NewWorker(appfulfillment.WorkerConfig{
			Queue:       jobQueue,
			Orders:      rt.Orders,
			Products:    rt.Products,
			Fulfiller:   appfulfillment.NewDelayFulfiller(cfg.Worker.DelayBase, cfg.Worker.DelayJitter),
			Broadcaster: broadcaster,
			Logger:      log,
			Idempotency: idempotency,
			IdempotencyConfig: shared.IdempotencyConfig{
				Enabled: true,
				TTL:     cfg.Worker.IdempotencyTTL,
			},
		})
		worker.SetEventPublisher(eventBus)
		if err := worker.Start(rootCtx); err != nil {
			log.Fatal("Failed to start fulfillment worker", zap.Error(err))
		}
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(scheduler.DefaultConfig(), log)
		monitor := appfulfillment.NewStaleOrderMonitor(rt.Orders, cfg.Scheduler.StaleOrderAfter, log)
		if err := sched.Register("stale-orders", cfg.Scheduler.StaleOrderCron, func(ctx context.Context) error {
			_, err := monitor.Check(ctx)
			return err
		}); err != nil {
			log.Fatal("Failed to register stale order check", zap.Error(err))
		}
		if err := sched.Start(rootCtx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	health := handler.HealthConfig{
		Database:    rt.DB.Ping,
		Queue:       jobQueue,
		QueueDriver: driver,
		Stream:      hub,
	}
	if driver == queue.DriverRedis || cfg.Notification.Relay == config.RelayRedis {
		health.Redis = rt.RedisPing
	}

	engine, err := router.NewEngine(router.EngineConfig{
		HTTP:             cfg.HTTP,
		Swagger:          cfg.Swagger,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: cfg.Telemetry.ProfilingEnabled,
		Meter:            rt.Telemetry.Meter,
		Logger:           log,
	}, router.Handlers{
		Products: handler.NewProductHandler(productService),
		Orders:   handler.NewOrderHandler(orderService),
		Events:   handler.NewEventsHandler(hub, log),
		Health:   handler.NewHealthHandler(health),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	// Event streams never go idle on their own
	srv.RegisterOnShutdown(hub.Stop)

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			log.Warn("Scheduler stop", zap.Error(err))
		}
	}

	if worker != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Worker.StopTimeout)
		if err := worker.Stop(stopCtx); err != nil {
			log.Warn("Fulfillment worker stop", zap.Error(err))
		}
		stopCancel()
	}

	if err := eventBus.Stop(ctx); err != nil {
		log.Warn("Event bus stop", zap.Error(err))
	}

	cancelRoot()
	log.Info("Server exited gracefully")
}
