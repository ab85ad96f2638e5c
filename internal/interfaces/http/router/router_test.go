package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "/api", r.Prefix())
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/v2", "/api/v2"},
		{"api", "/api"},
		{"/shop/", "/shop"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r := NewRouter(gin.New(), WithAPIPrefix(tt.in))
			assert.Equal(t, tt.want, r.Prefix())
		})
	}
}

func TestRouterRegister(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("test", "/test"))

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.Register(group)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	engine.GET("/outside", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("marked"))
	})

	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Set("marked", "yes")
	})
	r.Register(NewDomainGroup("test", "/test").GET("", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("marked"))
	}))
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/test", nil))
	assert.Equal(t, "yes", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/outside", nil))
	assert.Empty(t, w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("catalog", "/products")
		assert.Equal(t, "catalog", g.Name())
		assert.Equal(t, "/products", g.Prefix())
	})

	t.Run("registers GET and POST routes", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("trade", "/orders")
		g.GET("/:id", func(c *gin.Context) {
			c.String(http.StatusOK, "get "+c.Param("id"))
		})
		g.POST("", func(c *gin.Context) {
			c.String(http.StatusCreated, "created")
		})
		g.RegisterRoutes(engine.Group("/api"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/42", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "get 42", w.Body.String())

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/orders", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.Use(func(c *gin.Context) {
			c.Header("X-Group", "test")
			c.Next()
		})
		g.GET("", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		g.RegisterRoutes(engine.Group("/api"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/test", nil))
		assert.Equal(t, "test", w.Header().Get("X-Group"))
	})

	t.Run("registers subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("parent", "/parent")
		g.Group("child", "/child").GET("/leaf", func(c *gin.Context) {
			c.String(http.StatusOK, "leaf")
		})
		g.RegisterRoutes(engine.Group("/api"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/parent/child/leaf", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "leaf", w.Body.String())
	})
}

type stubProducts struct{}

func (stubProducts) GetByID(_ context.Context, _ uuid.UUID) (*appcatalog.ProductResponse, error) {
	return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
}

func (stubProducts) List(_ context.Context, _ appcatalog.ProductListFilter) (*appcatalog.ProductListResponse, error) {
	return &appcatalog.ProductListResponse{Products: []appcatalog.ProductResponse{}}, nil
}

type stubOrders struct{}

func (stubOrders) SubmitOrder(_ context.Context, _ apptrade.SubmitOrderRequest) (*apptrade.OrderResponse, error) {
	return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock")
}

func (stubOrders) GetByID(_ context.Context, _ uuid.UUID) (*apptrade.OrderResponse, error) {
	return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
}

func newTestEngine(t *testing.T, swagger config.SwaggerConfig) *gin.Engine {
	t.Helper()
	engine, err := NewEngine(EngineConfig{
		HTTP: config.HTTPConfig{
			MaxBodySize:    1 << 10,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Swagger: swagger,
	}, Handlers{
		Products: handler.NewProductHandler(stubProducts{}),
		Orders:   handler.NewOrderHandler(stubOrders{}),
		Health:   handler.NewHealthHandler(handler.HealthConfig{}),
	})
	require.NoError(t, err)
	return engine
}

func TestNewEngine_Routes(t *testing.T) {
	engine := newTestEngine(t, config.SwaggerConfig{Enabled: false})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"list products", http.MethodGet, "/api/products", "", http.StatusOK},
		{"product not found", http.MethodGet, "/api/products/" + uuid.NewString(), "", http.StatusNotFound},
		{"malformed product id", http.MethodGet, "/api/products/abc", "", http.StatusBadRequest},
		{"submit order maps domain error", http.MethodPost, "/api/orders",
			`{"productId":"` + uuid.NewString() + `","quantity":1,"customerName":"Ann","customerEmail":"ann@example.com"}`,
			http.StatusBadRequest},
		{"order not found", http.MethodGet, "/api/orders/" + uuid.NewString(), "", http.StatusNotFound},
		{"liveness", http.MethodGet, "/health", "", http.StatusOK},
		{"swagger disabled", http.MethodGet, "/swagger/index.html", "", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestNewEngine_Middleware(t *testing.T) {
	engine := newTestEngine(t, config.SwaggerConfig{Enabled: true})

	t.Run("echoes request id and sets security headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("X-Request-ID", "req-123")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("allows configured origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		body := `{"customerName":"` + strings.Repeat("x", 2048) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_BODY_TOO_LARGE")
	})

	t.Run("swagger enabled passes protection", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
