package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"sync"
)

// Registry tracks the sink of every live session. It is the broadcast
// target set: membership changes on connect and disconnect only.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.SessionID]contract.EventSink)}
}

// Sinks returns a snapshot of the current broadcast set. Events are
// delivered to this snapshot; sessions registering mid-broadcast are not
// guaranteed to receive the in-flight event.
func (r *Registry) Sinks() map[domain.SessionID]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[domain.SessionID]contract.EventSink, len(r.sessions))
	for id, sink := range r.sessions {
		out[id] = sink
	}
	return out
}

func (r *Registry) Get(id domain.SessionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[id]
	return sink, ok
}

func (r *Registry) Subscribe(id domain.SessionID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = sink
}

func (r *Registry) Unsubscribe(id domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the current number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
