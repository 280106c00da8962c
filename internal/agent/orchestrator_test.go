package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/evolution-todo/chat-platform/internal/llm"
	"github.com/evolution-todo/chat-platform/internal/model"
	"github.com/evolution-todo/chat-platform/internal/task"
	"github.com/evolution-todo/chat-platform/internal/tool"
	"github.com/evolution-todo/chat-platform/pkg/logger"
)

// fakeLLM returns scripted responses in order and records every request.
type fakeLLM struct {
	responses []*llm.CompletionResponse
	errs      []error
	requests  []*llm.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		return &llm.CompletionResponse{Content: "fallback"}, nil
	}
	return f.responses[i], nil
}

func (f *fakeLLM) Name() string     { return "fake" }
func (f *fakeLLM) Models() []string { return []string{"fake-1"} }

func newTestOrchestrator(client llm.Client, tasks task.Store) *Orchestrator {
	return New(client, tool.NewRegistry(tasks), "fake-1", logger.NewNop())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunTurnDirectReply(t *testing.T) {
	client := &fakeLLM{responses: []*llm.CompletionResponse{
		{Content: "Hello! How can I help with your tasks?"},
	}}
	o := newTestOrchestrator(client, task.NewMemoryStore())

	result, err := o.RunTurn(context.Background(), "u1", nil, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if result.Reply != "Hello! How can I help with your tasks?" {
		t.Errorf("Reply = %q", result.Reply)
	}
	if len(result.ToolCalls) != 0 {
		t.Errorf("ToolCalls = %v, want empty", result.ToolCalls)
	}
	if len(client.requests) != 1 {
		t.Errorf("model called %d times, want 1", len(client.requests))
	}
	if len(client.requests[0].Tools) == 0 {
		t.Error("first call should offer the tool catalogue")
	}
}

func TestRunTurnToolRound(t *testing.T) {
	args := mustJSON(t, map[string]any{"title": "Buy groceries"})
	client := &fakeLLM{responses: []*llm.CompletionResponse{
		{ToolCalls: []llm.ToolCall{{ID: "call-1", Name: tool.NameAddTask, Arguments: args}}},
		{Content: "Done! I added \"Buy groceries\" to your list."},
	}}
	tasks := task.NewMemoryStore()
	o := newTestOrchestrator(client, tasks)

	result, err := o.RunTurn(context.Background(), "u1", nil, "add a task to buy groceries")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(result.Reply, "Buy groceries") {
		t.Errorf("Reply = %q", result.Reply)
	}
	if len(result.ToolCalls) != 1 || result.ToolCalls[0].Tool != tool.NameAddTask {
		t.Fatalf("trail = %+v", result.ToolCalls)
	}

	// The task actually landed in the store, owned by the caller.
	created, err := tasks.Get(context.Background(), "u1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if created.Title != "Buy groceries" {
		t.Errorf("Title = %q", created.Title)
	}

	// Second call is the synthesis call: no tools, tool result replayed.
	if len(client.requests) != 2 {
		t.Fatalf("model called %d times, want 2", len(client.requests))
	}
	second := client.requests[1]
	if len(second.Tools) != 0 {
		t.Error("synthesis call must not offer tools")
	}
	last := second.Messages[len(second.Messages)-1]
	if last.Role != llm.RoleTool || !strings.Contains(last.Content, "Task created") {
		t.Errorf("last prompt message = %+v", last)
	}
}

func TestRunTurnIdentityInjection(t *testing.T) {
	// The model claims to act for another user; the orchestrator overwrites it.
	args := mustJSON(t, map[string]any{"title": "Steal this", "user_id": "victim"})
	client := &fakeLLM{responses: []*llm.CompletionResponse{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: tool.NameAddTask, Arguments: args}}},
		{Content: "ok"},
	}}
	tasks := task.NewMemoryStore()
	o := newTestOrchestrator(client, tasks)

	result, err := o.RunTurn(context.Background(), "attacker", nil, "add task")
	if err != nil {
		t.Fatal(err)
	}

	if result.ToolCalls[0].Args["user_id"] != "attacker" {
		t.Errorf("trail user_id = %v, want attacker", result.ToolCalls[0].Args["user_id"])
	}
	if _, err := tasks.Get(context.Background(), "victim", 1); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("task reachable as victim: %v", err)
	}
	if _, err := tasks.Get(context.Background(), "attacker", 1); err != nil {
		t.Errorf("task not owned by attacker: %v", err)
	}
}

func TestRunTurnSanitizesCreateArgs(t *testing.T) {
	args := mustJSON(t, map[string]any{
		"title":              "Buy groceries",
		"description":        nil,
		"recurrence_pattern": "none",
	})
	client := &fakeLLM{responses: []*llm.CompletionResponse{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: tool.NameAddTask, Arguments: args}}},
		{Content: "ok"},
	}}
	tasks := task.NewMemoryStore()
	o := newTestOrchestrator(client, tasks)

	result, err := o.RunTurn(context.Background(), "u1", nil, "add a task to buy groceries")
	if err != nil {
		t.Fatal(err)
	}

	sanitized := result.ToolCalls[0].Args
	if sanitized["description"] != "Task: Buy groceries" {
		t.Errorf("description = %v", sanitized["description"])
	}
	if _, ok := sanitized["recurrence_pattern"]; ok {
		t.Error("none recurrence should have been dropped")
	}

	created, err := tasks.Get(context.Background(), "u1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if created.Description != "Task: Buy groceries" {
		t.Errorf("stored description = %q", created.Description)
	}
	if created.RecurrencePattern != "" {
		t.Errorf("stored recurrence = %q", created.RecurrencePattern)
	}
}

func TestRunTurnUnsupportedLanguage(t *testing.T) {
	client := &fakeLLM{}
	o := newTestOrchestrator(client, task.NewMemoryStore())

	result, err := o.RunTurn(context.Background(), "u1", nil, "कृपया कार्य जोड़ें")
	if err != nil {
		t.Fatal(err)
	}
	if result.Reply != UnsupportedLanguageReply {
		t.Errorf("Reply = %q", result.Reply)
	}
	if len(result.ToolCalls) != 0 {
		t.Errorf("ToolCalls = %v", result.ToolCalls)
	}
	if len(client.requests) != 0 {
		t.Errorf("model called %d times, want 0", len(client.requests))
	}
}

func TestRunTurnModelErrorFailsTurn(t *testing.T) {
	client := &fakeLLM{errs: []error{llm.ErrInvocation}}
	o := newTestOrchestrator(client, task.NewMemoryStore())

	if _, err := o.RunTurn(context.Background(), "u1", nil, "hello"); !errors.Is(err, llm.ErrInvocation) {
		t.Fatalf("err = %v, want ErrInvocation", err)
	}
}

func TestRunTurnMalformedArgumentsFailsTurn(t *testing.T) {
	client := &fakeLLM{responses: []*llm.CompletionResponse{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: tool.NameAddTask, Arguments: "{not json"}}},
	}}
	tasks := task.NewMemoryStore()
	o := newTestOrchestrator(client, tasks)

	if _, err := o.RunTurn(context.Background(), "u1", nil, "add task"); err == nil {
		t.Fatal("expected error for malformed arguments")
	}
	if len(client.requests) != 1 {
		t.Errorf("synthesis call ran after a failed tool round")
	}
}

func TestRunTurnToolErrorFailsAtomically(t *testing.T) {
	// First call succeeds, second targets a missing task. The turn must fail
	// with no partial reply, even though the first tool executed.
	addArgs := mustJSON(t, map[string]any{"title": "Buy milk"})
	badArgs := mustJSON(t, map[string]any{"task_id": 999})
	client := &fakeLLM{responses: []*llm.CompletionResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: tool.NameAddTask, Arguments: addArgs},
			{ID: "c2", Name: tool.NameDeleteTask, Arguments: badArgs},
		}},
	}}
	tasks := task.NewMemoryStore()
	o := newTestOrchestrator(client, tasks)

	result, err := o.RunTurn(context.Background(), "u1", nil, "add milk and delete 999")
	if err == nil {
		t.Fatalf("expected error, got result %+v", result)
	}
	if !errors.Is(err, task.ErrNotFound) {
		t.Errorf("err = %v, want wrapped ErrNotFound", err)
	}
	if len(client.requests) != 1 {
		t.Errorf("synthesis call ran after a failed tool round")
	}
}

func TestRunTurnUpdateWithoutTaskIDFailsTurn(t *testing.T) {
	args := mustJSON(t, map[string]any{"title": "new title"})
	client := &fakeLLM{responses: []*llm.CompletionResponse{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: tool.NameUpdateTask, Arguments: args}}},
	}}
	o := newTestOrchestrator(client, task.NewMemoryStore())

	if _, err := o.RunTurn(context.Background(), "u1", nil, "rename it"); !errors.Is(err, tool.ErrMissingTaskID) {
		t.Fatalf("err = %v, want ErrMissingTaskID", err)
	}
}

func TestBuildPromptHistoryWindow(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{}, task.NewMemoryStore())

	var history []model.Message
	for i := 0; i < 15; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		history = append(history, model.Message{Role: role, Content: strings.Repeat("x", i+1)})
	}

	messages := o.buildPrompt(history, "latest")

	// system + trailing window + new utterance
	if len(messages) != 1+historyWindow+1 {
		t.Fatalf("got %d messages", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Errorf("first message role = %s", messages[0].Role)
	}
	if messages[1].Content != history[5].Content {
		t.Errorf("window starts at %q, want %q", messages[1].Content, history[5].Content)
	}
	last := messages[len(messages)-1]
	if last.Role != llm.RoleUser || last.Content != "latest" {
		t.Errorf("last = %+v", last)
	}
}
