package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// EngineConfig holds what the HTTP engine needs besides its handlers
type EngineConfig struct {
	HTTP             config.HTTPConfig
	Swagger          config.SwaggerConfig
	ServiceName      string
	TracingEnabled   bool
	ProfilingEnabled bool
	Meter            *telemetry.MeterProvider // nil disables HTTP metrics
	Logger           *zap.Logger
}

// Handlers are the route handlers mounted by NewEngine
type Handlers struct {
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Events   *handler.EventsHandler
	Health   *handler.HealthHandler
}

// NewEngine builds the gin engine with the middleware chain and every route.
//
// Middleware order:
//  1. RequestID - generate/propagate request ID
//  2. Recovery - catch panics
//  3. Logger - log requests
//  4. Tracing - server span, request attributes, error status
//  5. Metrics and profiling labels
//  6. Security headers
//  7. CORS
//  8. BodyLimit
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := middleware.SetupValidator(); err != nil {
		return nil, fmt.Errorf("setup validator: %w", err)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.Enabled = cfg.TracingEnabled
	if cfg.ServiceName != "" {
		tracingCfg.ServiceName = cfg.ServiceName
	}

	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = cfg.ProfilingEnabled

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.AllowedOrigins

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(tracingCfg))
	if cfg.TracingEnabled {
		engine.Use(middleware.TracingAttributeInjector(), middleware.SpanErrorMarker())
	}
	engine.Use(middleware.HTTPMetrics(cfg.Meter, log))
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsCfg))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	// Health endpoints stay outside the API prefix
	if h.Health != nil {
		engine.GET("/health", h.Health.Live)
		engine.GET("/health/ready", h.Health.Ready)
	}

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIPrefix(DefaultAPIPrefix))

	if h.Products != nil {
		r.Register(NewDomainGroup("catalog", "/products").
			GET("", h.Products.List).
			GET("/:id", h.Products.GetByID))
	}
	if h.Orders != nil {
		r.Register(NewDomainGroup("trade", "/orders").
			POST("", h.Orders.Submit).
			GET("/:id", h.Orders.GetByID))
	}
	if h.Events != nil {
		r.Register(NewDomainGroup("events", "/events").
			GET("", h.Events.Stream))
	}

	r.Setup()

	return engine, nil
}
