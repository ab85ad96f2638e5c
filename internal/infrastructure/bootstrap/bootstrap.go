// Package bootstrap builds the infrastructure shared by the server, the
// standalone worker and the seed command.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Runtime holds the process-wide infrastructure
type Runtime struct {
	Config    *config.Config
	Logger    *zap.Logger
	Telemetry *telemetry.Providers
	DB        *persistence.Database
	Products  *persistence.GormProductRepository
	Orders    *persistence.GormOrderRepository

	// Redis is always set; RedisUp reports whether it answered at startup
	Redis   *redis.Client
	RedisUp bool

	registrations []metric.Registration
}

// Options tunes Init for a given command
type Options struct {
	// Component names the process in logs (server, worker, seed)
	Component string
	// SkipTelemetry builds no-op providers regardless of configuration
	SkipTelemetry bool
}

// Init connects telemetry, logging, the database and Redis. On error every
// resource opened so far is released.
func Init(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	bootLog := logger.New(logCfg)

	telemetryCfg := cfg.Telemetry
	if opts.SkipTelemetry {
		telemetryCfg = config.TelemetryConfig{ServiceName: cfg.Telemetry.ServiceName}
	}
	providers, err := telemetry.Setup(ctx, telemetryCfg, bootLog)
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}

	log := logger.New(logCfg, providers.Logs.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if opts.Component != "" {
		log = log.With(zap.String("component", opts.Component))
	}

	rt := &Runtime{
		Config:    cfg,
		Logger:    log,
		Telemetry: providers,
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	rt.DB, err = persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	if err := providers.DB.Register(rt.DB.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := rt.DB.Migrate(ctx); err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
		log.Info("Database schema migrated")
	}

	rt.Products = persistence.NewGormProductRepository(rt.DB.DB)
	rt.Orders = persistence.NewGormOrderRepository(rt.DB.DB)

	rt.Redis, err = cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unreachable at startup", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
	} else {
		rt.RedisUp = true
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	return rt, nil
}

// Meter returns the application meter
func (rt *Runtime) Meter() metric.Meter {
	return rt.Telemetry.Meter.Meter(rt.Config.Telemetry.ServiceName)
}

// RegisterGauges reports pool statistics plus the given queue depth and
// stream client gauges. Registrations are released by Close.
func (rt *Runtime) RegisterGauges(queueDepth, streamClients telemetry.GaugeFunc) {
	meter := rt.Meter()

	if sqlDB, err := rt.DB.DB.DB(); err == nil {
		reg, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB)
		if err != nil {
			rt.Logger.Warn("Failed to register database pool metrics", zap.Error(err))
		} else {
			rt.registrations = append(rt.registrations, reg)
		}
	}

	reg, err := telemetry.RegisterGauges(meter, queueDepth, streamClients, rt.Logger)
	if err != nil {
		rt.Logger.Warn("Failed to register gauges", zap.Error(err))
		return
	}
	rt.registrations = append(rt.registrations, reg)
}

// RedisPing checks Redis for the readiness endpoint
func (rt *Runtime) RedisPing(ctx context.Context) error {
	return rt.Redis.Ping(ctx).Err()
}

// Close releases everything Init opened, telemetry last so shutdown logs
// are still exported.
func (rt *Runtime) Close(ctx context.Context) {
	var errs []error
	for _, reg := range rt.registrations {
		errs = append(errs, reg.Unregister())
	}
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	if rt.DB != nil {
		errs = append(errs, rt.DB.Close())
	}
	if err := errors.Join(errs...); err != nil {
		rt.logger().Error("Error releasing resources", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := rt.Telemetry.Shutdown(flushCtx); err != nil {
		rt.logger().Error("Error shutting down telemetry", zap.Error(err))
	}
	_ = logger.Sync(rt.logger())
}

func (rt *Runtime) logger() *zap.Logger {
	if rt.Logger == nil {
		return zap.NewNop()
	}
	return rt.Logger
}
