package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	log := New(Config{Level: "error", Format: "json", Output: "stderr"}, core)

	log.Info("order submitted")

	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "order submitted", recorded.All()[0].Message)
}

func TestFor(t *testing.T) {
	t.Run("adds request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-1")

		For(ctx, zap.New(core)).Info("hello")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
	})

	t.Run("adds trace identifiers for a valid span", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID{1},
			SpanID:     trace.SpanID{2},
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

		For(ctx, zap.New(core)).Info("hello")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, spanCtx.TraceID().String(), fields["trace_id"])
		assert.Equal(t, spanCtx.SpanID().String(), fields["span_id"])
	})

	t.Run("falls back to the context logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := WithContext(context.Background(), zap.New(core))

		For(ctx, nil).Info("from context")

		assert.Len(t, recorded.All(), 1)
	})

	t.Run("no-op without any logger", func(t *testing.T) {
		assert.NotPanics(t, func() { For(context.Background(), nil).Info("dropped") })
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(log *zap.Logger) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set(GinRequestIDKey, "req-42"); c.Next() })
		r.Use(GinMiddleware(log), Recovery(log))
		r.GET("/api/products", func(c *gin.Context) {
			assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
			GetGinLogger(c).Info("inside handler")
			c.Status(http.StatusOK)
		})
		r.GET("/api/orders/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
		r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
		return r
	}

	t.Run("logs successful request at info", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		r := newRouter(zap.New(core))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?page=2", nil))

		entries := recorded.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "page=2", fields["query"])
		assert.Equal(t, int64(200), fields["status"])
		assert.Len(t, recorded.FilterMessage("inside handler").All(), 1)
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		r := newRouter(zap.New(core))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/missing", nil))

		entries := recorded.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("recovers panics with the error envelope", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		r := newRouter(zap.New(core))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_INTERNAL","message":"Internal server error"}}`, w.Body.String())
		assert.Len(t, recorded.FilterMessage("Panic recovered").All(), 1)
	})
}

func TestGetGinLogger_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}

func TestGormLogger(t *testing.T) {
	t.Run("LogMode returns a copy", func(t *testing.T) {
		gl := NewGormLogger(zap.NewNop(), gormlogger.Info, 0)
		clone := gl.LogMode(gormlogger.Silent).(*GormLogger)

		assert.Equal(t, gormlogger.Info, gl.level)
		assert.Equal(t, gormlogger.Silent, clone.level)
	})

	t.Run("record not found is not logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info, 0)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT * FROM orders WHERE id = 'x'", 0
		}, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("errors are logged with the statement", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "UPDATE products SET stock = stock - 1", 0
		}, assert.AnError)

		entries := recorded.FilterMessage("SQL Error").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "UPDATE products SET stock = stock - 1", entries[0].ContextMap()["sql"])
	})

	t.Run("slow queries warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)

		gl.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
			return "SELECT count(*) FROM products", 1
		}, nil)

		assert.Len(t, recorded.FilterMessage("Slow SQL").All(), 1)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Silent, 0)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, assert.AnError)
		gl.Error(context.Background(), "boom")

		assert.Empty(t, recorded.All())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("whatever"))
}
