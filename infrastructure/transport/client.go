package transport

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/services"
	"chat-relay/sink"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// client owns one WebSocket connection: the read pump feeds commands to
// the chat service, the write pump drains the session sink. Either pump
// exiting tears the whole connection down.
type client struct {
	log      *slog.Logger
	conn     *websocket.Conn
	chat     services.IChatService
	sink     *sink.SessionSink
	session  domain.SessionID
	validate *validator.Validate
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.chat.Disconnect(c.session)
		c.sink.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("Unexpected close", "session", string(c.session), "error", err)
			}
			return
		}
		c.handleFrame(raw)
	}
}

// handleFrame parses and validates one inbound frame. A malformed frame
// earns the sender an error event, never a disconnect.
func (c *client) handleFrame(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug("Malformed frame", "session", string(c.session), "error", err)
		c.sendError("malformed frame")
		return
	}

	switch env.Event {
	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.sendError("invalid send_message payload")
			return
		}
		if err := c.validate.Struct(payload); err != nil {
			c.sendError("invalid send_message payload")
			return
		}
		c.chat.PostMessage(c.session, payload.User, payload.Message)
	case EventUserTyping:
		var payload TypingPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.sendError("invalid user_typing payload")
			return
		}
		if err := c.validate.Struct(payload); err != nil {
			c.sendError("invalid user_typing payload")
			return
		}
		c.chat.Typing(c.session, payload.User)
	default:
		c.log.Debug("Unknown event", "session", string(c.session), "event", env.Event)
		c.sendError("unknown event")
	}
}

// sendError queues an error event for this session. It goes through the
// session sink so the write pump stays the only writer on the
// connection; gorilla supports a single concurrent writer.
func (c *client) sendError(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := c.sink.Consume(ctx, event.SendRejected{Origin: c.session, Reason: reason}); err != nil {
		c.log.Debug("Error event not queued", "session", string(c.session), "error", err)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.sink.Events():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frame, err := EncodeEvent(evt)
			if err != nil {
				c.log.Error("Event encoding failed", "session", string(c.session), "error", err)
				continue
			}
			if frame == nil {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
