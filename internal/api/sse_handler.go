package api

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"jobhunter/internal/api/middleware"
	"jobhunter/internal/notify"
)

// SSEHandler streams live resume status events to the authenticated user.
type SSEHandler struct {
	hub    *notify.Hub
	logger *slog.Logger
}

// NewSSEHandler constructs the SSE subscription handler.
func NewSSEHandler(hub *notify.Hub, logger *slog.Logger) *SSEHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEHandler{hub: hub, logger: logger}
}

const keepaliveInterval = 30 * time.Second

// Subscribe opens a long-lived event stream. The hub emits a ping event
// immediately on subscribe; afterwards the stream carries zero or more
// resumeStatus events until the client disconnects. The connection itself
// never expires, keepalive pings only stop intermediaries from reclaiming it.
func (h *SSEHandler) Subscribe(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(actor.UserID)
	defer h.hub.Deregister(actor.UserID, sub)

	log := h.logger.With(slog.Uint64("user_id", uint64(actor.UserID)))
	log.Info("sse subscription opened")
	defer log.Info("sse subscription closed")

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			return
		case ev := <-sub.Events():
			if err := sse.Encode(c.Writer, sse.Event{Event: ev.Name, Data: ev.Data}); err != nil {
				return
			}
			c.Writer.Flush()
		case <-keepalive.C:
			if err := sse.Encode(c.Writer, sse.Event{Event: notify.EventPing, Data: "ok"}); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
