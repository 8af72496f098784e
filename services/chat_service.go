package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/sink"
	"context"
)

type IChatService interface {
	Connect(s contract.EventSink) domain.SessionID
	Disconnect(id domain.SessionID)
	PostMessage(origin domain.SessionID, user, content string)
	Typing(origin domain.SessionID, user string)
	Recent(n int) ([]domain.Message, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Message, error)
}

// ChatService is the single entry point the transports talk to. It
// forwards live traffic to the hub and serves reads straight from the
// store and the search index.
type ChatService struct {
	hub    contract.IHub
	store  contract.IMessageStore
	search *sink.SearchIndex
}

func NewChatService(hub contract.IHub, store contract.IMessageStore, search *sink.SearchIndex) *ChatService {
	return &ChatService{hub: hub, store: store, search: search}
}

func (s *ChatService) Connect(sk contract.EventSink) domain.SessionID {
	return s.hub.Connect(sk)
}

func (s *ChatService) Disconnect(id domain.SessionID) {
	s.hub.Disconnect(id)
}

func (s *ChatService) PostMessage(origin domain.SessionID, user, content string) {
	s.hub.Dispatch(domain.SendMessageCommand{Origin: origin, User: user, Content: content})
}

func (s *ChatService) Typing(origin domain.SessionID, user string) {
	s.hub.Dispatch(domain.TypingCommand{Origin: origin, User: user})
}

func (s *ChatService) Recent(n int) ([]domain.Message, error) {
	return s.store.Recent(n)
}

func (s *ChatService) Search(ctx context.Context, query string, limit int) ([]domain.Message, error) {
	return s.search.Search(ctx, query, limit)
}
