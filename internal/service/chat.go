// Package service provides business logic for the chat platform.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evolution-todo/chat-platform/internal/agent"
	"github.com/evolution-todo/chat-platform/internal/events"
	"github.com/evolution-todo/chat-platform/internal/model"
	"github.com/evolution-todo/chat-platform/internal/store"
	"github.com/evolution-todo/chat-platform/pkg/logger"
	"github.com/evolution-todo/chat-platform/pkg/metrics"
)

// ChatService runs chat turns: it owns persistence ordering around the
// orchestrator and keeps every turn durable regardless of outcome.
type ChatService struct {
	store     store.Store
	agent     *agent.Orchestrator
	publisher *events.Publisher
	logger    *logger.Logger
}

// NewChatService creates a chat service. publisher may be nil when event
// publishing is disabled.
func NewChatService(st store.Store, orchestrator *agent.Orchestrator, publisher *events.Publisher, log *logger.Logger) *ChatService {
	return &ChatService{
		store:     st,
		agent:     orchestrator,
		publisher: publisher,
		logger:    log,
	}
}

// HandleTurn processes one chat turn for the user. The user's message is
// persisted before orchestration starts, so a crash mid-turn never loses what
// the user said. When orchestration fails, an assistant error message is
// persisted in its place and the error is returned to the caller.
func (s *ChatService) HandleTurn(ctx context.Context, userID string, req *model.ChatRequest) (*model.ChatResponse, error) {
	start := time.Now()

	conv, history, err := s.loadConversation(ctx, userID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AppendMessage(ctx, conv.ID, userID, model.RoleUser, req.Message, nil); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}
	metrics.MessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()

	result, err := s.agent.RunTurn(ctx, userID, history, req.Message)
	if err != nil {
		s.logger.Error("chat turn failed",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int64("conversation_id", conv.ID),
		)

		// Persist an assistant-visible record of the failure so the log
		// reflects the turn even though no reply was produced.
		errorContent := fmt.Sprintf("Error processing message: %v", err)
		if _, perr := s.store.AppendMessage(ctx, conv.ID, userID, model.RoleAssistant, errorContent, nil); perr != nil {
			s.logger.Error("failed to persist error message", zap.Error(perr))
		} else {
			metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()
		}

		metrics.RecordTurn("failed", time.Since(start).Seconds())
		s.publishEvent(ctx, model.EventTypeTurnFailed, userID, conv.ID, "", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	if _, err := s.store.AppendMessage(ctx, conv.ID, userID, model.RoleAssistant, result.Reply, result.ToolCalls); err != nil {
		metrics.RecordTurn("failed", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}
	metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()

	metrics.RecordTurn("completed", time.Since(start).Seconds())

	for _, call := range result.ToolCalls {
		s.publishEvent(ctx, model.EventTypeToolExecuted, userID, conv.ID, call.Tool, nil)
	}
	s.publishEvent(ctx, model.EventTypeTurnCompleted, userID, conv.ID, "", map[string]any{
		"tool_calls": len(result.ToolCalls),
	})

	return &model.ChatResponse{
		ConversationID: conv.ID,
		Response:       result.Reply,
		ToolCalls:      result.ToolCalls,
	}, nil
}

// loadConversation resolves the target thread. A zero conversation ID opens a
// new one; an existing ID must belong to the user. History is loaded before
// the new user message is appended, so the prompt never duplicates it.
func (s *ChatService) loadConversation(ctx context.Context, userID string, conversationID int64) (*model.Conversation, []model.Message, error) {
	if conversationID == 0 {
		conv, err := s.store.CreateConversation(ctx, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		metrics.ConversationsTotal.Inc()
		return conv, nil, nil
	}

	conv, err := s.store.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.store.ListMessages(ctx, conv.ID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}
	return conv, history, nil
}

// ListConversations returns the user's threads.
func (s *ChatService) ListConversations(ctx context.Context, userID string) (*model.ListConversationsResponse, error) {
	convs, err := s.store.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []model.ConversationSummary{}
	}
	return &model.ListConversationsResponse{
		Conversations: convs,
		Total:         len(convs),
	}, nil
}

// GetConversation returns one conversation if the user owns it.
func (s *ChatService) GetConversation(ctx context.Context, userID string, id int64) (*model.Conversation, error) {
	return s.store.GetConversation(ctx, userID, id)
}

// ListMessages returns a conversation's log in chronological order.
func (s *ChatService) ListMessages(ctx context.Context, userID string, conversationID int64) (*model.ListMessagesResponse, error) {
	if _, err := s.store.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return &model.ListMessagesResponse{
		Messages: msgs,
		Total:    len(msgs),
	}, nil
}

// DeleteConversation removes a thread and its messages.
func (s *ChatService) DeleteConversation(ctx context.Context, userID string, id int64) error {
	return s.store.DeleteConversation(ctx, userID, id)
}

func (s *ChatService) publishEvent(ctx context.Context, eventType model.EventType, userID string, conversationID int64, tool string, metadata map[string]any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, &model.Event{
		ID:             uuid.Must(uuid.NewV7()).String(),
		Type:           eventType,
		UserID:         userID,
		ConversationID: conversationID,
		Tool:           tool,
		Metadata:       metadata,
		CreatedAt:      time.Now(),
	})
}
