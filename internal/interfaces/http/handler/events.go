package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/notification"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// EventStream is the subscription side of the notification hub
type EventStream interface {
	Subscribe() (*notification.Client, error)
	Unsubscribe(c *notification.Client)
}

// EventsHandler streams order events to browsers over Server-Sent Events
type EventsHandler struct {
	BaseHandler
	stream EventStream
	logger *zap.Logger
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(stream EventStream, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{
		stream: stream,
		logger: logger.Named("events"),
	}
}

// Stream godoc
// @ID           streamEvents
// @Summary      Subscribe to order events
// @Description  Server-Sent Events stream. Sends "connected" once, "heartbeat" periodically, and "orderCompleted" / "orderFailed" with the full order as data. Delivery is best-effort with no replay.
// @Tags         events
// @Produce      text/event-stream
// @Success      200 {string} string "event stream"
// @Failure      503 {object} ErrorResponse
// @Router       /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	client, err := h.stream.Subscribe()
	if err != nil {
		message := "Event stream is unavailable"
		if errors.Is(err, notification.ErrTooManyClients) {
			message = "Maximum number of event stream connections reached"
		}
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeStreamUnavailable, message)
		return
	}
	defer h.stream.Unsubscribe(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Status(http.StatusOK)

	h.logger.Info("Event stream client connected",
		zap.String("client_id", client.ID),
		zap.String("request_id", getRequestID(c)))

	writeEvent(c.Writer, notification.Message{
		Event: notification.EventConnected,
		Data:  fmt.Sprintf(`{"clientId":%q,"timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	messages := client.Messages()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("Event stream client disconnected", zap.String("client_id", client.ID))
			return
		case msg, ok := <-messages:
			if !ok {
				// Hub stopped
				return
			}
			if err := writeEvent(c.Writer, msg); err != nil {
				h.logger.Debug("Event stream write failed", zap.String("client_id", client.ID), zap.Error(err))
				return
			}
			c.Writer.Flush()
		}
	}
}

// writeEvent writes one SSE frame
func writeEvent(w io.Writer, msg notification.Message) error {
	if msg.Event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", msg.Event); err != nil {
			return err
		}
	}
	if msg.ID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", msg.ID); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "data: %s\n\n", msg.Data)
	return err
}
