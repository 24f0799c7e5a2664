package server

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tkerr/ab3gy-wsjtx/internal/wsjtx"
)

const (
	// feedWriteTimeout bounds a single WebSocket write.
	feedWriteTimeout = 10 * time.Second

	// feedPingInterval keeps idle connections alive through proxies.
	feedPingInterval = 30 * time.Second
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The feed is read-only telemetry on a local monitoring port.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedEnvelope is one frame on the WebSocket feed: the message kind
// name plus the decoded message itself.
type feedEnvelope struct {
	Type    string        `json:"type"`
	Message wsjtx.Message `json:"message"`
}

// feedClients counts currently connected feed clients.
var feedClients atomic.Int64

// handleFeed implements the /feed WebSocket endpoint. Each client gets
// its own subscription to the monitor; a client that cannot keep up
// loses messages rather than stalling the monitor.
func (h *HTTPServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	msgs, cancel := h.monitor.Subscribe()
	defer cancel()

	count := feedClients.Add(1)
	if h.metrics != nil {
		h.metrics.SetFeedClients(int(count))
	}
	defer func() {
		count := feedClients.Add(-1)
		if h.metrics != nil {
			h.metrics.SetFeedClients(int(count))
		}
	}()

	h.logger.Info("Feed client connected", slog.String("remote_addr", r.RemoteAddr))

	// Drain the client side so close frames are processed; the feed
	// carries no inbound data.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingInterval)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				// Monitor shut down.
				deadline := time.Now().Add(feedWriteTimeout)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "monitor stopped"), deadline)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteJSON(feedEnvelope{Type: msg.Type().String(), Message: msg}); err != nil {
				h.logger.Debug("Feed write failed",
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("error", err.Error()),
				)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			h.logger.Info("Feed client disconnected", slog.String("remote_addr", r.RemoteAddr))
			return
		}
	}
}
