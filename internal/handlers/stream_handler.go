package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/queuelinehq/queueline/internal/broadcast"
	"github.com/queuelinehq/queueline/internal/middleware"
)

// StreamHandler exposes the live queue board as server-sent events. Each
// connection registers an observer on the hub for the caller's business and
// streams full snapshots until the client goes away.
type StreamHandler struct {
	hub *broadcast.Hub
	bc  *broadcast.Broadcaster
}

func NewStreamHandler(hub *broadcast.Hub, bc *broadcast.Broadcaster) *StreamHandler {
	return &StreamHandler{hub: hub, bc: bc}
}

func (h *StreamHandler) Stream(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	id, ch := h.hub.Subscribe(businessID)
	defer h.hub.Unsubscribe(businessID, id)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Catch-up frame so the board paints before the first mutation.
	if cached, ok := h.hub.Cached(c.Request.Context(), businessID); ok {
		c.SSEvent("snapshot", cached)
		c.Writer.Flush()
	} else {
		// No cached state yet; build one for everybody.
		h.bc.Refresh(c.Request.Context(), businessID)
	}

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case snapshot, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("snapshot", snapshot)
			return true
		}
	})
}
