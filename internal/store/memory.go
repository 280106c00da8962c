package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evolution-todo/chat-platform/internal/model"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu            sync.RWMutex
	nextConvID    int64
	nextMsgID     int64
	conversations map[int64]*model.Conversation
	messages      map[int64][]model.Message
}

// NewMemoryStore creates an empty in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextConvID:    1,
		nextMsgID:     1,
		conversations: make(map[int64]*model.Conversation),
		messages:      make(map[int64][]model.Message),
	}
}

func (s *MemoryStore) CreateConversation(ctx context.Context, userID string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv := &model.Conversation{
		ID:        s.nextConvID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextConvID++
	s.conversations[conv.ID] = conv

	c := *conv
	return &c, nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, userID string, id int64) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok || conv.UserID != userID {
		return nil, ErrConversationNotFound
	}
	c := *conv
	return &c, nil
}

func (s *MemoryStore) ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ConversationSummary
	for _, conv := range s.conversations {
		if conv.UserID != userID {
			continue
		}
		out = append(out, model.ConversationSummary{
			ID:        conv.ID,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	return out, nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, conversationID int64, userID string, role model.Role, content string, toolCalls []model.ToolCall) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return nil, ErrConversationNotFound
	}

	msg := model.Message{
		ID:             s.nextMsgID,
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		ToolCalls:      cloneToolCalls(toolCalls),
		CreatedAt:      time.Now(),
	}
	s.nextMsgID++
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	conv.UpdatedAt = msg.CreatedAt

	m := msg
	return &m, nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, conversationID int64, userID string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return nil, nil
	}

	msgs := s.messages[conversationID]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) DeleteConversation(ctx context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok || conv.UserID != userID {
		return ErrConversationNotFound
	}
	delete(s.conversations, id)
	delete(s.messages, id)
	return nil
}

func cloneToolCalls(calls []model.ToolCall) []model.ToolCall {
	if calls == nil {
		return nil
	}
	out := make([]model.ToolCall, len(calls))
	for i, c := range calls {
		args := make(map[string]any, len(c.Args))
		for k, v := range c.Args {
			args[k] = v
		}
		out[i] = model.ToolCall{Tool: c.Tool, Args: args}
	}
	return out
}
