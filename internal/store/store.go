// Package store persists conversations and their message logs so that the
// orchestrator holds no state between requests.
package store

import (
	"context"
	"errors"

	"github.com/evolution-todo/chat-platform/internal/model"
)

// ErrConversationNotFound is returned when a conversation does not exist or
// belongs to a different user.
var ErrConversationNotFound = errors.New("conversation not found")

// Store is the conversation/message persistence boundary. Every operation is
// scoped by user ID as a defense-in-depth isolation check, independent of any
// upstream authorization.
type Store interface {
	// CreateConversation opens a new thread for the user.
	CreateConversation(ctx context.Context, userID string) (*model.Conversation, error)

	// GetConversation returns the conversation only if it belongs to userID.
	GetConversation(ctx context.Context, userID string, id int64) (*model.Conversation, error)

	// ListConversations returns the user's threads, most recently updated first.
	ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error)

	// AppendMessage adds an immutable entry to the conversation log and bumps
	// the conversation's updated_at.
	AppendMessage(ctx context.Context, conversationID int64, userID string, role model.Role, content string, toolCalls []model.ToolCall) (*model.Message, error)

	// ListMessages returns the conversation's messages in created_at order.
	// A lookup scoped to the wrong user returns empty, never another user's
	// messages.
	ListMessages(ctx context.Context, conversationID int64, userID string) ([]model.Message, error)

	// DeleteConversation removes the thread and cascades to its messages.
	DeleteConversation(ctx context.Context, userID string, id int64) error
}
