package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"dm-lab/contract"
	"dm-lab/observability"
	"dm-lab/services"
)

// Handler upgrades HTTP requests into live connections.
// The user is associated at handshake time through the userId query
// parameter; there is no separate login frame on the channel.
type Handler struct {
	log             *slog.Logger
	registry        contract.IRegistry
	chat            services.IChatService
	monitor         *observability.Monitor
	bufferSize      int
	deliveryTimeout time.Duration
	upgrader        websocket.Upgrader
}

func NewHandler(log *slog.Logger, registry contract.IRegistry, chat services.IChatService,
	monitor *observability.Monitor, bufferSize int, deliveryTimeout time.Duration) *Handler {
	return &Handler{
		log:             log,
		registry:        registry,
		chat:            chat,
		monitor:         monitor,
		bufferSize:      bufferSize,
		deliveryTimeout: deliveryTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Origins are enforced by the gateway in front
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Upgrade failed", "user_id", userID, "error", err)
		return
	}

	sink := NewSink(h.log, h.bufferSize, h.deliveryTimeout)
	conn := newConn(userID, socket, sink, h.chat, h.log, func() {
		// Runs synchronously with the read pump's exit: after this call the
		// registry no longer routes to the sink and a presence rebroadcast
		// is already scheduled.
		h.registry.Unregister(userID, sink)
		h.monitor.IncrDisconnects()
		h.log.Info("User disconnected", "user_id", userID)
	})

	h.registry.Register(userID, sink)
	h.monitor.IncrConnects()
	h.log.Info("User connected", "user_id", userID)

	// The request context dies when ServeHTTP returns, which is immediately
	// after the hijack; the connection outlives it on the base context.
	ctx := context.Background()
	go conn.writePump(ctx)
	go conn.readPump(ctx)
}
