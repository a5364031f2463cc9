// Package chat implements the conversational assistant session: an
// append-only message log in front of a stateless question/answer endpoint.
// It is independent of the intake state machine but shares the
// authenticated identity.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/majkahealth/majka-server/internal/domain"
)

// Errors surfaced inline to the chat panel.
var (
	ErrEmptyMessage = errors.New("type a message first")
	ErrSendPending  = errors.New("a message is already being sent")
)

// Greeting seeds the panel on first open.
const Greeting = "Hi mama, I'm Majka. I'm not a doctor, but I'm here for you — ask me anything about your recovery."

// Assistant is the stateless question/answer endpoint behind the panel.
type Assistant interface {
	Ask(ctx context.Context, question string, motherID int64, motherName string) (string, error)
}

// Session holds one mother's chat history. Sends are guarded by their own
// gate, independent of answer submission and plan fetches.
type Session struct {
	mu         sync.Mutex
	assistant  Assistant
	motherID   int64
	motherName string

	messages []domain.ChatMessage
	state    domain.RequestState
	errMsg   string
}

// NewSession creates a chat session for an authenticated mother.
func NewSession(assistant Assistant, motherID int64, motherName string) *Session {
	return &Session{
		assistant:  assistant,
		motherID:   motherID,
		motherName: motherName,
		state:      domain.StateIdle,
	}
}

// Open seeds the greeting message. Opening again with non-empty history is
// a no-op.
func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) > 0 {
		return
	}
	s.messages = append(s.messages, domain.ChatMessage{Role: domain.RoleAssistant, Text: Greeting})
}

// Send appends the user message immediately, issues one request, and on
// success appends exactly one assistant message. On failure the inline error
// is set and the history is otherwise left alone; the user must resend.
// A send while one is pending is rejected.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" {
		s.mu.Unlock()
		return ErrEmptyMessage
	}
	if s.state.InFlight() {
		s.mu.Unlock()
		return ErrSendPending
	}
	s.messages = append(s.messages, domain.ChatMessage{Role: domain.RoleUser, Text: text})
	s.state = domain.StatePending
	s.errMsg = ""
	motherID, motherName := s.motherID, s.motherName
	s.mu.Unlock()

	answer, err := s.assistant.Ask(ctx, text, motherID, motherName)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = domain.StateFailed
		s.errMsg = err.Error()
		return err
	}
	s.messages = append(s.messages, domain.ChatMessage{Role: domain.RoleAssistant, Text: answer})
	s.state = domain.StateSucceeded
	return nil
}

// Messages returns a copy of the history.
func (s *Session) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// State returns the send gate state.
func (s *Session) State() domain.RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the inline error of the last failed send.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}
