package httpapi

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	recent    []domain.Message
	recentErr error
	found     []domain.Message
	searchErr error
	lastQuery string
	lastLimit int
}

func (s *stubChatService) Connect(sink contract.EventSink) domain.SessionID { return "stub" }
func (s *stubChatService) Disconnect(id domain.SessionID)                   {}
func (s *stubChatService) PostMessage(origin domain.SessionID, user, content string) {
}
func (s *stubChatService) Typing(origin domain.SessionID, user string) {}

func (s *stubChatService) Recent(n int) ([]domain.Message, error) {
	s.lastLimit = n
	return s.recent, s.recentErr
}

func (s *stubChatService) Search(ctx context.Context, query string, limit int) ([]domain.Message, error) {
	s.lastQuery = query
	return s.found, s.searchErr
}

func newTestServer(chat *stubChatService) *httptest.Server {
	log := logs.GetLoggerFromLevel(slog.LevelError)
	api := NewServer(log, chat)
	return httptest.NewServer(api.Mux(http.NotFoundHandler()))
}

func TestServer_RecentMessages(t *testing.T) {
	req := require.New(t)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chat := &stubChatService{recent: []domain.Message{
		{ID: 1, User: "alice", Content: "first", CreatedAt: at},
		{ID: 2, User: "bob", Content: "second", CreatedAt: at},
	}}
	srv := newTestServer(chat)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/messages")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("application/json", resp.Header.Get("Content-Type"))
	req.Equal(5, chat.lastLimit)

	var messages []domain.Message
	req.NoError(json.NewDecoder(resp.Body).Decode(&messages))
	req.Len(messages, 2)
	req.Equal(int64(1), messages[0].ID)
}

func TestServer_RecentMessages_EmptyLogIsAnEmptyArray(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(&stubChatService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/messages")
	req.NoError(err)
	defer resp.Body.Close()

	var messages []domain.Message
	req.NoError(json.NewDecoder(resp.Body).Decode(&messages))
	req.NotNil(messages)
	req.Empty(messages)
}

func TestServer_RecentMessages_InvalidLimit(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(&stubChatService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/messages?limit=-1")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestServer_RecentMessages_StorageFailure(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(&stubChatService{recentErr: errors.ErrStorage})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/messages")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusInternalServerError, resp.StatusCode)

	var payload map[string]string
	req.NoError(json.NewDecoder(resp.Body).Decode(&payload))
	req.NotEmpty(payload["error"])
}

func TestServer_Search(t *testing.T) {
	req := require.New(t)
	chat := &stubChatService{found: []domain.Message{{ID: 3, User: "alice", Content: "badger stew"}}}
	srv := newTestServer(chat)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/messages/search?q=stew")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("stew", chat.lastQuery)

	var messages []domain.Message
	req.NoError(json.NewDecoder(resp.Body).Decode(&messages))
	req.Len(messages, 1)
}

func TestServer_Search_RequiresQuery(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(&stubChatService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/messages/search")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(&stubChatService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)
}
