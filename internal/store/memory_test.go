package store

import (
	"context"
	"errors"
	"testing"

	"github.com/evolution-todo/chat-platform/internal/model"
)

func TestMemoryStoreConversationLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if conv.ID != 1 || conv.UserID != "u1" {
		t.Errorf("conv = %+v", conv)
	}

	got, err := s.GetConversation(ctx, "u1", conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != conv.ID {
		t.Errorf("got ID %d", got.ID)
	}

	if err := s.DeleteConversation(ctx, "u1", conv.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetConversation(ctx, "u1", conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("after delete: err = %v, want ErrConversationNotFound", err)
	}
}

func TestMemoryStoreUserIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendMessage(ctx, conv.ID, "alice", model.RoleUser, "private", nil); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetConversation(ctx, "bob", conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Get as bob: err = %v, want ErrConversationNotFound", err)
	}
	if err := s.DeleteConversation(ctx, "bob", conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Delete as bob: err = %v, want ErrConversationNotFound", err)
	}
	if _, err := s.AppendMessage(ctx, conv.ID, "bob", model.RoleUser, "injected", nil); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Append as bob: err = %v, want ErrConversationNotFound", err)
	}

	// Wrong user reads empty, never another user's messages.
	msgs, err := s.ListMessages(ctx, conv.ID, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("bob sees %d messages", len(msgs))
	}
}

func TestMemoryStoreAppendOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		if _, err := s.AppendMessage(ctx, conv.ID, "u1", model.RoleUser, c, nil); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := s.ListMessages(ctx, conv.ID, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages", len(msgs))
	}
	for i, c := range contents {
		if msgs[i].Content != c {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Content, c)
		}
	}
}

func TestMemoryStoreAppendBumpsUpdatedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	msg, err := s.AppendMessage(ctx, conv.ID, "u1", model.RoleAssistant, "hi", nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetConversation(ctx, "u1", conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.UpdatedAt.Equal(msg.CreatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, msg.CreatedAt)
	}
}

func TestMemoryStoreToolCallsPersisted(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	calls := []model.ToolCall{{
		Tool: "add_task",
		Args: map[string]any{"user_id": "u1", "title": "Buy milk"},
	}}
	if _, err := s.AppendMessage(ctx, conv.ID, "u1", model.RoleAssistant, "done", calls); err != nil {
		t.Fatal(err)
	}

	// The caller's slice must not alias stored state.
	calls[0].Args["title"] = "mutated"

	msgs, err := s.ListMessages(ctx, conv.ID, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || len(msgs[0].ToolCalls) != 1 {
		t.Fatalf("msgs = %+v", msgs)
	}
	if msgs[0].ToolCalls[0].Args["title"] != "Buy milk" {
		t.Errorf("stored tool call mutated: %v", msgs[0].ToolCalls[0].Args)
	}
}

func TestMemoryStoreListConversationsOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.CreateConversation(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.CreateConversation(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	// Touch the older conversation so it becomes most recent.
	if _, err := s.AppendMessage(ctx, first.ID, "u1", model.RoleUser, "bump", nil); err != nil {
		t.Fatal(err)
	}

	convs, err := s.ListConversations(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations", len(convs))
	}
	if convs[0].ID != first.ID || convs[1].ID != second.ID {
		t.Errorf("order = [%d, %d], want [%d, %d]", convs[0].ID, convs[1].ID, first.ID, second.ID)
	}
}
