package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// PingFunc checks one dependency
type PingFunc func(ctx context.Context) error

// QueueDepth reports how many jobs wait for the worker
type QueueDepth interface {
	Len(ctx context.Context) (int64, error)
}

// ClientCounter reports connected event stream clients
type ClientCounter interface {
	ClientCount() int
}

// InFlightCounter is implemented by queues that can count delivered but
// unsettled jobs without a round trip
type InFlightCounter interface {
	InFlight() int
}

// DropCounter is implemented by streams that drop messages for slow clients
type DropCounter interface {
	Dropped() uint64
}

// HealthConfig lists what readiness checks. Nil members are skipped.
type HealthConfig struct {
	Database    PingFunc
	Redis       PingFunc
	Queue       QueueDepth
	QueueDriver string
	Stream      ClientCounter
	Timeout     time.Duration
}

// HealthHandler serves the liveness and readiness endpoints
type HealthHandler struct {
	BaseHandler
	cfg HealthConfig
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &HealthHandler{cfg: cfg}
}

// Live godoc
// @ID           health
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// Ready godoc
// @ID           ready
// @Summary      Readiness check
// @Description  Pings the database and Redis, and reports queue depth, in-flight jobs, event stream clients and dropped stream messages
// @Tags         health
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.Timeout)
	defer cancel()

	checks := make(map[string]dto.HealthCheck)
	healthy := true

	ping := func(name string, fn PingFunc) {
		if fn == nil {
			return
		}
		if err := fn(ctx); err != nil {
			healthy = false
			checks[name] = dto.HealthCheck{Status: "down", Message: err.Error()}
			return
		}
		checks[name] = dto.HealthCheck{Status: "ok"}
	}
	ping("database", h.cfg.Database)
	ping("redis", h.cfg.Redis)

	if h.cfg.Queue != nil {
		depth, err := h.cfg.Queue.Len(ctx)
		if err != nil {
			healthy = false
			checks["queue"] = dto.HealthCheck{Status: "down", Message: err.Error()}
		} else {
			checks["queue"] = dto.HealthCheck{Status: "ok", Message: h.cfg.QueueDriver, Value: depth}
		}
		if counter, ok := h.cfg.Queue.(InFlightCounter); ok {
			checks["queueInFlight"] = dto.HealthCheck{Status: "ok", Value: counter.InFlight()}
		}
	}
	if h.cfg.Stream != nil {
		checks["eventStream"] = dto.HealthCheck{Status: "ok", Value: h.cfg.Stream.ClientCount()}
		if counter, ok := h.cfg.Stream.(DropCounter); ok {
			checks["eventStreamDropped"] = dto.HealthCheck{Status: "ok", Value: counter.Dropped()}
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Checks: checks})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Checks: checks})
}
