package transport

import (
	"chat-relay/services"
	"chat-relay/sink"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests to WebSocket sessions and hands each
// connection its pumps.
type Handler struct {
	log        *slog.Logger
	chat       services.IChatService
	upgrader   websocket.Upgrader
	validate   *validator.Validate
	bufferSize int
}

func NewHandler(log *slog.Logger, chat services.IChatService, bufferSize int) *Handler {
	return &Handler{
		log:  log,
		chat: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Anonymous public endpoint, same trust model as the rest
			// of the API surface.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		validate:   validator.New(),
		bufferSize: bufferSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sessionSink := sink.NewSessionSink(h.bufferSize)
	session := h.chat.Connect(sessionSink)
	h.log.Debug("WebSocket session opened", "session", string(session), "remote", r.RemoteAddr)

	c := &client{
		log:      h.log,
		conn:     conn,
		chat:     h.chat,
		sink:     sessionSink,
		session:  session,
		validate: h.validate,
	}
	c.run()
}
