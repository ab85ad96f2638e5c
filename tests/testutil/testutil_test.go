package testutil

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-123")
	assert.Equal(t, "req-123", tc.Context.GetString(logger.GinRequestIDKey))

	tc.SetHeader("Accept", "text/event-stream")
	assert.Equal(t, "text/event-stream", tc.Context.Request.Header.Get("Accept"))

	tc.Recorder.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, tc.ResponseCode())
}

func TestFixtures(t *testing.T) {
	product := NewProduct(t, "Wireless Mouse", "19.99", 5)
	assert.Equal(t, "19.99", product.Price.StringFixed(2))
	assert.Equal(t, 5, product.Stock)

	order := NewOrder(t, product, 3)
	assert.Equal(t, trade.OrderStatusPending, order.Status)
	assert.Equal(t, "59.97", order.TotalPrice.StringFixed(2))
}

func TestRequireEventually(t *testing.T) {
	calls := 0
	RequireEventually(t, func() bool {
		calls++
		return calls >= 3
	}, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond)
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "ERR_INVALID_JSON"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": body["name"]})
	}

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{
			Name:           "valid body",
			Method:         http.MethodPost,
			Body:           map[string]string{"name": "mouse"},
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   map[string]interface{}{"name": "mouse"},
		},
		{
			Name:           "malformed body",
			Method:         http.MethodPost,
			Body:           "{",
			ExpectedStatus: http.StatusBadRequest,
			Validate: func(t *testing.T, tc *TestContext) {
				AssertErrorResponse(t, tc.ResponseBody(), "ERR_INVALID_JSON")
			},
		},
	})
}

func TestDoAndDecodeJSON(t *testing.T) {
	engine := gin.New()
	engine.GET("/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": 2})
	})

	w := Do(t, engine, http.MethodGet, "/items", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := DecodeJSON[map[string]int](t, w)
	assert.Equal(t, 2, body["count"])
}

func TestReadSSE(t *testing.T) {
	stream := "event: connected\ndata: {\"clientId\":\"a\"}\n\n" +
		": comment\n\n" +
		"event: orderCompleted\nid: 1\ndata: {\"id\":\"o1\"}\n\n"

	var events []SSEEvent
	for e := range ReadSSE(strings.NewReader(stream)) {
		events = append(events, e)
	}

	require.Len(t, events, 2)
	assert.Equal(t, "connected", events[0].Event)
	assert.Equal(t, `{"clientId":"a"}`, events[0].Data)
	assert.Equal(t, SSEEvent{Event: "orderCompleted", ID: "1", Data: `{"id":"o1"}`}, events[1])
}
