// Package agent drives the model/tool loop for one chat turn. The
// orchestrator holds no state between turns: everything it needs arrives as
// arguments and everything it produces is returned to the caller.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/evolution-todo/chat-platform/internal/intent"
	"github.com/evolution-todo/chat-platform/internal/llm"
	"github.com/evolution-todo/chat-platform/internal/model"
	"github.com/evolution-todo/chat-platform/internal/tool"
	"github.com/evolution-todo/chat-platform/pkg/logger"
	"github.com/evolution-todo/chat-platform/pkg/metrics"
)

// systemInstruction is the fixed prompt prefix for every turn.
const systemInstruction = `You are Evolution Todo Assistant. Help users manage tasks.

Available tools:
- add_task: Create new tasks
- list_tasks: Show tasks (no parameters needed for all tasks)
- complete_task: Mark task complete
- delete_task: Delete task
- update_task: Update task details
- search_tasks, set_priority, add_tags, schedule_reminder, get_recurring_tasks, analytics_summary

Always respond in the same language as the user (English or Urdu).`

// historyWindow is how many prior messages are replayed into the prompt.
const historyWindow = 10

// turnState is the orchestrator's position in the per-turn machine. A turn
// halts only in stateDone or stateFailed, so a reply can never escape a
// partially executed tool round.
type turnState int

const (
	stateDrafting turnState = iota
	stateAwaitingModel
	stateToolRound
	stateDone
	stateFailed
)

// turn carries the working state of one pass through the machine. Exactly one
// of result or err is set when the machine halts.
type turn struct {
	state    turnState
	messages []llm.ChatMessage
	tools    []llm.Tool // offered to the model; nil on the synthesis call
	pending  []llm.ToolCall
	trail    []model.ToolCall
	result   *Result
	err      error
}

func (t *turn) done(r *Result) {
	t.state = stateDone
	t.result = r
}

func (t *turn) fail(err error) {
	t.state = stateFailed
	t.err = err
}

// Result is a completed turn: the assistant's reply and the audit trail of
// tool calls executed, in order.
type Result struct {
	Reply     string
	ToolCalls []model.ToolCall
}

// Orchestrator runs the two-phase model/tool loop.
type Orchestrator struct {
	llm      llm.Client
	registry *tool.Registry
	model    string
	logger   *logger.Logger
}

// New creates an orchestrator. modelName may be empty to use the provider
// default.
func New(llmClient llm.Client, registry *tool.Registry, modelName string, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		llm:      llmClient,
		registry: registry,
		model:    modelName,
		logger:   log,
	}
}

// RunTurn executes one turn for the given user. History is the conversation's
// persisted log; only roles and content are replayed, never tool-call trails.
// Errors from validation, tool execution or the model fail the whole turn.
func (o *Orchestrator) RunTurn(ctx context.Context, userID string, history []model.Message, userMessage string) (*Result, error) {
	t := &turn{state: stateDrafting, trail: []model.ToolCall{}}

	for {
		switch t.state {
		case stateDrafting:
			o.draft(t, userID, history, userMessage)
		case stateAwaitingModel:
			o.awaitModel(ctx, t)
		case stateToolRound:
			o.runToolRound(ctx, t, userID, userMessage)
		case stateDone:
			return t.result, nil
		case stateFailed:
			return nil, t.err
		}
	}
}

// draft gates the utterance, classifies intent and assembles the prompt. A
// rejected script short-circuits to a fixed apology with an empty trail.
func (o *Orchestrator) draft(t *turn, userID string, history []model.Message, userMessage string) {
	if err := CheckLanguage(userMessage); err != nil {
		o.logger.Info("utterance rejected by language gate",
			zap.String("user_id", userID),
			zap.String("script", string(DetectScript(userMessage))),
		)
		t.done(&Result{Reply: UnsupportedLanguageReply, ToolCalls: []model.ToolCall{}})
		return
	}

	// Intent classification is advisory: logged and counted, never used to
	// constrain the model's own tool selection.
	classified := intent.Classify(userMessage, historyContents(history))
	metrics.IntentsTotal.WithLabelValues(string(classified)).Inc()
	o.logger.Info("intent classified",
		zap.String("user_id", userID),
		zap.String("intent", string(classified)),
		zap.Float64("confidence", intent.Confidence(userMessage, classified)),
	)

	t.messages = o.buildPrompt(history, userMessage)

	catalogue := o.registry.Contracts()
	t.tools = make([]llm.Tool, len(catalogue))
	for i, c := range catalogue {
		t.tools[i] = llm.Tool{
			Name:        c.Name,
			Description: c.Description,
			InputSchema: c.InputSchema,
		}
	}

	t.state = stateAwaitingModel
}

// awaitModel performs one completion. With the catalogue offered the model may
// request a tool round; on the synthesis call no tools are offered, so the
// machine always terminates.
func (o *Orchestrator) awaitModel(ctx context.Context, t *turn) {
	resp, err := o.complete(ctx, t.messages, t.tools)
	if err != nil {
		t.fail(err)
		return
	}

	if len(resp.ToolCalls) == 0 || t.tools == nil {
		t.done(&Result{Reply: resp.Content, ToolCalls: t.trail})
		return
	}

	t.pending = resp.ToolCalls
	t.messages = append(t.messages, llm.ChatMessage{
		Role:      llm.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})
	t.state = stateToolRound
}

// runToolRound executes the pending calls in model order, strictly
// sequentially. Later calls may depend on ids created by earlier ones. Any
// failure fails the turn; results otherwise feed the synthesis call.
func (o *Orchestrator) runToolRound(ctx context.Context, t *turn, userID, userMessage string) {
	for _, call := range t.pending {
		args, err := decodeArguments(call.Arguments)
		if err != nil {
			metrics.RecordToolExecution(call.Name, "validation_error")
			t.fail(fmt.Errorf("tool %s: %w", call.Name, err))
			return
		}

		// The acting user's identity always comes from the authenticated
		// caller, overwriting anything the model supplied.
		args["user_id"] = userID

		switch call.Name {
		case tool.NameAddTask:
			args = tool.SanitizeCreate(args, userMessage)
		case tool.NameUpdateTask:
			args, err = tool.SanitizeUpdate(args)
			if err != nil {
				metrics.RecordToolExecution(call.Name, "validation_error")
				t.fail(err)
				return
			}
		}

		resultText, err := o.registry.Execute(ctx, call.Name, args)
		if err != nil {
			metrics.RecordToolExecution(call.Name, "error")
			t.fail(err)
			return
		}
		metrics.RecordToolExecution(call.Name, "success")

		t.trail = append(t.trail, model.ToolCall{Tool: call.Name, Args: args})
		t.messages = append(t.messages, llm.ChatMessage{
			Role:       llm.RoleTool,
			Content:    resultText,
			ToolCallID: call.ID,
		})
	}

	// Back to the model for synthesis: only it can turn raw tool output into
	// a coherent reply.
	t.pending = nil
	t.tools = nil
	t.state = stateAwaitingModel
}

// buildPrompt assembles the fixed system instruction, the trailing window of
// prior history (roles and content only) and the new utterance.
func (o *Orchestrator) buildPrompt(history []model.Message, userMessage string) []llm.ChatMessage {
	messages := []llm.ChatMessage{{Role: llm.RoleSystem, Content: systemInstruction}}

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, msg := range history[start:] {
		messages = append(messages, llm.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: userMessage})
	return messages
}

func (o *Orchestrator) complete(ctx context.Context, messages []llm.ChatMessage, tools []llm.Tool) (*llm.CompletionResponse, error) {
	resp, err := o.llm.Complete(ctx, &llm.CompletionRequest{
		Model:    o.model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		metrics.RecordLLMCall(o.model, "error", 0, 0, 0)
		return nil, err
	}
	metrics.RecordLLMCall(resp.Model, "success", float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)
	return resp, nil
}

func historyContents(history []model.Message) []string {
	if len(history) == 0 {
		return nil
	}
	contents := make([]string, len(history))
	for i, msg := range history {
		contents[i] = msg.Content
	}
	return contents
}

func decodeArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("malformed tool arguments: %w", err)
	}
	return args, nil
}
