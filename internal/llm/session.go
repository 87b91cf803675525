package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Chatter abstracts the completion transport so sessions can be tested
// without a live model.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Session is one long-lived conversation. Each Ask appends to the message
// history so later questions see earlier answers as context.
type Session struct {
	ID string

	mu       sync.Mutex
	client   Chatter
	messages []Message
}

// NewSession starts a conversation with the given system prompt.
func NewSession(client Chatter, systemPrompt string) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		client: client,
	}
	if systemPrompt != "" {
		s.messages = append(s.messages, Message{Role: "system", Content: systemPrompt})
	}
	return s
}

// Ask sends prompt with the accumulated conversation context and records
// both the question and the reply.
func (s *Session) Ask(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := append(append([]Message{}, s.messages...), Message{Role: "user", Content: prompt})
	reply, err := s.client.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	s.messages = append(s.messages, Message{Role: "user", Content: prompt}, Message{Role: "assistant", Content: reply})
	return reply, nil
}

// Len returns the number of recorded messages.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Registry owns every conversational session for a server process. It is
// constructed explicitly and injected rather than living as an ambient
// singleton, so its lifecycle follows the process that owns it.
type Registry struct {
	mu       sync.RWMutex
	client   Chatter
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry backed by client.
func NewRegistry(client Chatter) *Registry {
	return &Registry{
		client:   client,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session and returns its id.
func (r *Registry) Create(systemPrompt string) *Session {
	s := NewSession(r.client, systemPrompt)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return s, nil
}

// Drop removes a session.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
