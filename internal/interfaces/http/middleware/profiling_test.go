package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := middleware.DefaultProfilingConfig()

	assert.True(t, cfg.Enabled)
	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPaths, "/api/events")
	assert.Contains(t, cfg.SkipPathPrefixes, "/swagger")
}

func TestProfilingMiddleware_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{Enabled: false}))

	var route string
	var found bool
	r.GET("/api/products", func(c *gin.Context) {
		route, found = pprof.Label(c.Request.Context(), telemetry.ProfilingLabelRoute)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, found)
	assert.Empty(t, route)
}

func TestProfilingMiddleware_LabelsRoute(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Profiling())

	labels := map[string]string{}
	r.GET("/api/products/:id", func(c *gin.Context) {
		ctx := c.Request.Context()
		for _, key := range []string{telemetry.ProfilingLabelRoute, telemetry.ProfilingLabelMethod} {
			if v, ok := pprof.Label(ctx, key); ok {
				labels[key] = v
			}
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/products/:id", labels[telemetry.ProfilingLabelRoute])
	assert.Equal(t, http.MethodGet, labels[telemetry.ProfilingLabelMethod])
}

func TestProfilingMiddleware_SkipsPaths(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Profiling())

	tests := []string{"/health", "/api/events", "/swagger/index.html"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			var found bool
			r.GET(path, func(c *gin.Context) {
				_, found = pprof.Label(c.Request.Context(), telemetry.ProfilingLabelRoute)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.False(t, found)
		})
	}
}
