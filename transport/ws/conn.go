package ws

import (
	"context"
	"encoding/json"
	errs "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dm-lab/domain"
	"dm-lab/domain/event"
	"dm-lab/errors"
	"dm-lab/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Envelope is the JSON frame exchanged on the channel, both directions.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// receiptRequest is the client half of the receipt protocol.
// Only "delivered" and "seen" travel on this channel; "received" is
// reachable through the REST endpoint alone.
type receiptRequest struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

// Conn binds one user's websocket to its sink.
type Conn struct {
	userID string
	ws     *websocket.Conn
	sink   *Sink
	chat   services.IChatService
	log    *slog.Logger
	done   func()
}

func newConn(userID string, socket *websocket.Conn, sink *Sink,
	chat services.IChatService, log *slog.Logger, done func()) *Conn {
	return &Conn{userID: userID, ws: socket, sink: sink, chat: chat, log: log, done: done}
}

// readPump drains client frames until the socket dies. Its exit is the
// disconnect signal: the done callback unregisters the sink synchronously,
// so no delivery is attempted on a closed connection afterwards.
func (c *Conn) readPump(ctx context.Context) {
	defer func() {
		c.done()
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("Read error on channel", "user_id", c.userID, "error", err)
			}
			return
		}
		c.handle(ctx, data)
	}
}

// handle dispatches one client frame. Protocol violations are logged and
// dropped, never surfaced back on the channel.
func (c *Conn) handle(ctx context.Context, data []byte) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.log.Debug("Dropped malformed frame", "user_id", c.userID, "error", err)
		return
	}

	switch envelope.Event {
	case event.NameUpdateReceipt:
		c.handleReceipt(ctx, envelope.Payload)
	default:
		c.log.Debug("Dropped unknown event", "user_id", c.userID, "event", envelope.Event)
	}
}

func (c *Conn) handleReceipt(ctx context.Context, payload json.RawMessage) {
	var req receiptRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.log.Debug("Dropped malformed receipt", "user_id", c.userID, "error", err)
		return
	}

	status := domain.ReceiptStatus(req.Status)
	if status != domain.StatusDelivered && status != domain.StatusSeen {
		c.log.Debug("Dropped receipt with invalid status", "user_id", c.userID, "status", req.Status)
		return
	}

	messageID, err := uuid.Parse(req.MessageID)
	if err != nil {
		c.log.Debug("Dropped receipt with invalid message id", "user_id", c.userID, "error", err)
		return
	}

	if _, err := c.chat.UpdateReceipt(ctx, messageID, status); err != nil {
		if errs.Is(err, errors.ErrMessageNotFound) {
			c.log.Debug("Receipt for unknown message", "user_id", c.userID, "message_id", messageID)
			return
		}
		c.log.Error("Receipt update failed", "user_id", c.userID, "message_id", messageID, "error", err)
	}
}

// writePump serializes the sink's events onto the socket and keeps the
// connection alive with pings.
func (c *Conn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case e := <-c.sink.Events:
			data, err := Encode(e)
			if err != nil {
				c.log.Error("Failed to encode event", "user_id", c.userID, "error", err)
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Encode turns a domain event into its wire envelope.
func Encode(e event.DomainEvent) ([]byte, error) {
	var payload any
	switch evt := e.(type) {
	case event.PresenceChanged:
		payload = evt.Online
	case event.MessageCreated:
		payload = evt.Message
	case event.ReceiptUpdated:
		payload = evt.Message
	default:
		payload = nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.EventName(), Payload: raw})
}
