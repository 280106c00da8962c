package model

// ChatRequest is one inbound chat turn. ConversationID is zero when the
// caller wants a new thread.
type ChatRequest struct {
	ConversationID int64  `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// ChatResponse is the result of one chat turn: the assistant's reply plus the
// audit trail of tool calls executed on the user's behalf.
type ChatResponse struct {
	ConversationID int64      `json:"conversation_id"`
	Response       string     `json:"response"`
	ToolCalls      []ToolCall `json:"tool_calls"`
}
