package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/infrastructure/notification"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueueDepth struct {
	depth int64
	err   error
}

func (f fakeQueueDepth) Len(context.Context) (int64, error) { return f.depth, f.err }

type fakeCounter int

func (f fakeCounter) ClientCount() int { return int(f) }

type fakeInFlightQueue struct {
	fakeQueueDepth
	inFlight int
}

func (f fakeInFlightQueue) InFlight() int { return f.inFlight }

type fakeDroppingStream struct {
	fakeCounter
	dropped uint64
}

func (f fakeDroppingStream) Dropped() uint64 { return f.dropped }

func okPing(context.Context) error { return nil }

func serveHealth(cfg HealthConfig, path string) (*httptest.ResponseRecorder, dto.HealthResponse) {
	h := NewHealthHandler(cfg)
	r := gin.New()
	r.GET("/health", h.Live)
	r.GET("/health/ready", h.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp dto.HealthResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHealthHandler_Live(t *testing.T) {
	w, resp := serveHealth(HealthConfig{}, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		w, resp := serveHealth(HealthConfig{
			Database:    okPing,
			Redis:       okPing,
			Queue:       fakeQueueDepth{depth: 4},
			QueueDriver: "redis",
			Stream:      fakeCounter(2),
		}, "/health/ready")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"].Status)
		assert.Equal(t, "ok", resp.Checks["redis"].Status)
		assert.Equal(t, 4.0, resp.Checks["queue"].Value)
		assert.Equal(t, "redis", resp.Checks["queue"].Message)
		assert.Equal(t, 2.0, resp.Checks["eventStream"].Value)
	})

	t.Run("redis is optional", func(t *testing.T) {
		w, resp := serveHealth(HealthConfig{Database: okPing}, "/health/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		_, hasRedis := resp.Checks["redis"]
		assert.False(t, hasRedis)
	})

	t.Run("database down", func(t *testing.T) {
		w, resp := serveHealth(HealthConfig{
			Database: func(context.Context) error { return errors.New("connection refused") },
			Stream:   fakeCounter(0),
		}, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, "down", resp.Checks["database"].Status)
		assert.Equal(t, "connection refused", resp.Checks["database"].Message)
	})

	t.Run("queue unreadable", func(t *testing.T) {
		w, resp := serveHealth(HealthConfig{
			Database: okPing,
			Queue:    fakeQueueDepth{err: errors.New("LLEN failed")},
		}, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "down", resp.Checks["queue"].Status)
	})

	t.Run("reports in-flight jobs and dropped stream messages", func(t *testing.T) {
		w, resp := serveHealth(HealthConfig{
			Database:    okPing,
			Queue:       fakeInFlightQueue{fakeQueueDepth: fakeQueueDepth{depth: 2}, inFlight: 1},
			QueueDriver: "memory",
			Stream:      fakeDroppingStream{fakeCounter: fakeCounter(3), dropped: 7},
		}, "/health/ready")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2.0, resp.Checks["queue"].Value)
		assert.Equal(t, 1.0, resp.Checks["queueInFlight"].Value)
		assert.Equal(t, 3.0, resp.Checks["eventStream"].Value)
		assert.Equal(t, 7.0, resp.Checks["eventStreamDropped"].Value)
	})

	t.Run("zero counts are still reported", func(t *testing.T) {
		w, resp := serveHealth(HealthConfig{
			Queue:  fakeInFlightQueue{},
			Stream: fakeDroppingStream{},
		}, "/health/ready")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0.0, resp.Checks["queueInFlight"].Value)
		assert.Equal(t, 0.0, resp.Checks["eventStreamDropped"].Value)
	})

	t.Run("counts are omitted when unsupported", func(t *testing.T) {
		_, resp := serveHealth(HealthConfig{
			Queue:  fakeQueueDepth{},
			Stream: fakeCounter(0),
		}, "/health/ready")

		assert.NotContains(t, resp.Checks, "queueInFlight")
		assert.NotContains(t, resp.Checks, "eventStreamDropped")
	})

	t.Run("memory queue and hub expose their counters", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewMemoryQueue(0)
		_, err := q.Enqueue(ctx, fulfillment.NewJob(uuid.New(), uuid.New(), 1))
		require.NoError(t, err)
		deliveries, err := q.Consume(ctx)
		require.NoError(t, err)
		<-deliveries

		hub := notification.NewHub(notification.WithHeartbeat(0))
		defer hub.Stop()

		_, resp := serveHealth(HealthConfig{Queue: q, QueueDriver: "memory", Stream: hub}, "/health/ready")

		assert.Equal(t, 0.0, resp.Checks["queue"].Value)
		assert.Equal(t, 1.0, resp.Checks["queueInFlight"].Value)
		assert.Equal(t, 0.0, resp.Checks["eventStreamDropped"].Value)
	})
}
