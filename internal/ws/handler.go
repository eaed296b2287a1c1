// Package ws provides the realtime connection endpoint. The channel carries
// no application data: connections are accepted, logged, and drained until
// the peer goes away.
package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/parley-ai/chat-broker/pkg/logger"
	"github.com/parley-ai/chat-broker/pkg/metrics"
)

// Handler handles websocket connections.
type Handler struct {
	logger *logger.Logger
}

// NewHandler creates a new websocket handler.
func NewHandler(log *logger.Logger) *Handler {
	return &Handler{logger: log}
}

// Serve handles GET /ws.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The original deployment accepted any browser origin.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	h.logger.Info("client connected", zap.String("remote_addr", r.RemoteAddr))
	metrics.IncrementWSConnections()
	defer metrics.DecrementWSConnections()

	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	h.logger.Info("client disconnected", zap.String("remote_addr", r.RemoteAddr))
}
