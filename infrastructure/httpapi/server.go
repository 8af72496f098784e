// Package httpapi serves the REST surface: recent history, full-text
// search and the health probe. Live traffic goes through the WebSocket
// endpoint mounted on the same mux.
package httpapi

import (
	"chat-relay/domain"
	"chat-relay/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultHistorySize = 5
	maxSearchResults   = 20
)

type Server struct {
	log  *slog.Logger
	chat services.IChatService
}

func NewServer(log *slog.Logger, chat services.IChatService) *Server {
	return &Server{log: log, chat: chat}
}

// Mux wires every route, including the WebSocket handler provided by
// the transport layer.
func (s *Server) Mux(ws http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", ws)
	mux.HandleFunc("GET /api/messages", s.handleMessages)
	mux.HandleFunc("GET /api/messages/search", s.handleSearch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// handleMessages returns the most recent messages, oldest first, the
// same view a new WebSocket session receives as its snapshot.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	n := defaultHistorySize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		n = parsed
	}

	messages, err := s.chat.Recent(n)
	if err != nil {
		s.log.Error("Recent messages lookup failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not read messages")
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	s.writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	messages, err := s.chat.Search(r.Context(), query, maxSearchResults)
	if err != nil {
		s.log.Error("Search failed", "query", query, "error", err)
		s.writeError(w, http.StatusInternalServerError, "search unavailable")
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	s.writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, reason string) {
	s.writeJSON(w, status, map[string]string{"error": reason})
}
