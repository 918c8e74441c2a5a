// Package oracle defines the provider-neutral conversation model shared by
// the chat bridge and the model backends.
package oracle

import (
	"context"
	"encoding/json"

	"github.com/lewisedginton/local_places/internal/tools"
)

// Role identifies who produced a message.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// ToolResult is the outcome of one executed tool call, fed back to the
// model on the next round.
type ToolResult struct {
	CallID  string
	Name    string
	Payload json.RawMessage
}

// Message is one turn of conversation. Assistant messages may carry tool
// calls alongside text; tool messages carry results and nothing else.
type Message struct {
	Role        Role
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// Request is a full generation request: system prompt, history and the
// tool surface the model may call.
type Request struct {
	System   string
	Messages []Message
	Tools    []tools.Declaration
}

// Reply is the model's answer to one request.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

// Oracle is a chat model backend with function calling.
type Oracle interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Reply, error)
}
