package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evolution-todo/chat-platform/internal/model"
)

// PostgresStore is a Store backed by Postgres via pgxpool.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the chat tables exist.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreWithPool wraps an existing pool, for sharing one pool
// across stores.
func NewPostgresStoreWithPool(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Pool returns the underlying connection pool.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.db
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS conversations (
        id BIGSERIAL PRIMARY KEY,
        user_id TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations (user_id, updated_at);
CREATE TABLE IF NOT EXISTS messages (
        id BIGSERIAL PRIMARY KEY,
        conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
        user_id TEXT NOT NULL,
        role TEXT NOT NULL,
        content TEXT NOT NULL,
        tool_calls JSONB,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (conversation_id, created_at);`
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to init chat schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, userID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.QueryRow(ctx, `
        INSERT INTO conversations (user_id) VALUES ($1)
        RETURNING id, user_id, created_at, updated_at`, userID).
		Scan(&conv.ID, &conv.UserID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *PostgresStore) GetConversation(ctx context.Context, userID string, id int64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.QueryRow(ctx, `
        SELECT id, user_id, created_at, updated_at FROM conversations
        WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&conv.ID, &conv.UserID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (s *PostgresStore) ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, created_at, updated_at FROM conversations
        WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ConversationSummary
	for rows.Next() {
		var c model.ConversationSummary
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AppendMessage(ctx context.Context, conversationID int64, userID string, role model.Role, content string, toolCalls []model.ToolCall) (*model.Message, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Ownership check inside the transaction keeps the append and the
	// updated_at bump consistent.
	var owner string
	err = tx.QueryRow(ctx, `SELECT user_id FROM conversations WHERE id = $1`, conversationID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if owner != userID {
		return nil, ErrConversationNotFound
	}

	var toolCallsJSON []byte
	if toolCalls != nil {
		toolCallsJSON, err = json.Marshal(toolCalls)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tool calls: %w", err)
		}
	}

	msg := model.Message{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		ToolCalls:      toolCalls,
	}
	err = tx.QueryRow(ctx, `
        INSERT INTO messages (conversation_id, user_id, role, content, tool_calls)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		conversationID, userID, string(role), content, toolCallsJSON).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
		msg.CreatedAt, conversationID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, conversationID int64, userID string) ([]model.Message, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, conversation_id, user_id, role, content, tool_calls, created_at
        FROM messages
        WHERE conversation_id = $1 AND user_id = $2
        ORDER BY created_at, id`, conversationID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var (
			msg           model.Message
			role          string
			toolCallsJSON []byte
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.UserID, &role,
			&msg.Content, &toolCallsJSON, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Role = model.Role(role)
		if len(toolCallsJSON) > 0 {
			if err := json.Unmarshal(toolCallsJSON, &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to decode tool calls: %w", err)
			}
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteConversation(ctx context.Context, userID string, id int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM conversations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}
